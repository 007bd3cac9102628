// Package ws streams the live fleet overview to dashboard clients over
// WebSocket on a fixed broadcast interval.
package ws
