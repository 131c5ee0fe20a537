// Package alarm implements the gRPC control plane of the agent.
//
// The service exchanges protobuf well-known types (Struct and Empty), so its
// descriptor and client stub are declared here instead of being generated.
// The Server adapts those messages to the alarm controller and the entry
// activity.
package alarm
