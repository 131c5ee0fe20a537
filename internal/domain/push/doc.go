// Package push defines the inbound push message and the rules that turn it
// into an alarm request.
package push
