// Package client implements the short-lived commands that talk to a running
// agent: alarm-start, alarm-stop and alarm-resume.
//
// Each command loads the settings, dials the agent control service, performs
// a single action with retries and logs the resulting alarm state.
package client
