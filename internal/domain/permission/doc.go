// Package permission enumerates the runtime permissions the host application
// asks for at launch.
package permission
