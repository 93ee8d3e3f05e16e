package gateway

import "errors"

var (
	// ErrRemoteRejected is returned when the confirming REST call failed and
	// the optimistic local change has been reverted. The caller may retry or
	// surface a message; nothing is left to clean up.
	ErrRemoteRejected = errors.New("server rejected the update; local change reverted")
)
