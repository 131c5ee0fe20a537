// Package notification models the alarm notification surface: channels,
// notifications with actions, and a Center that keeps the active set and
// displays entries on the desktop through beeep.
//
// beeep toasts show no buttons. Every action therefore names the command
// that fires it, and the alarm binaries are those commands.
package notification
