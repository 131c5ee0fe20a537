// Package token implements persistence for the device push token.
//
// The FileRepository stores and loads the token as JSON on disk and exposes
// a Repository interface that the push receiver depends on.
package token
