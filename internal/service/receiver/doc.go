// Package receiver handles inbound push messages and push token refreshes.
//
// A message for a backgrounded application starts the alarm; a foregrounded
// application handles the message in its own UI layer.
package receiver
