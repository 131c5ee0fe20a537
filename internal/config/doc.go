// Package config defines the agent settings used by all binaries and provides
// helpers to load, validate and save them in YAML format.
//
// The Config type holds the control (gRPC) and push (HTTP) addresses, the
// application identity, localized strings, the notification channel, the
// sound backend, the launch permissions and the auto-stop delay.
package config
