// Package ingress exposes the push receiver over HTTP.
//
// Push messages and token refreshes are delivered by a local relay (or the
// alarm-push tool) as JSON documents. Every response body is JSON.
package ingress
