// Package activity implements the entry activity hooks of the host
// application: the one-shot permission request at launch and the resume
// hook that silences any ringing alarm.
package activity
