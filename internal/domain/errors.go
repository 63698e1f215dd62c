package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested item does not exist upstream
	ErrNotFound = errors.New("item not found")

	// ErrServerOffline indicates a backend is unreachable
	ErrServerOffline = errors.New("server is unreachable")

	// ErrAuthFailed indicates the configured credentials were rejected
	ErrAuthFailed = errors.New("credentials are invalid")

	// ErrNotConfigured indicates a backend has no credentials or client.
	// Operations return it immediately without network I/O.
	ErrNotConfigured = errors.New("backend is not configured")

	// ErrNoStream indicates no playable source could be resolved
	ErrNoStream = errors.New("no playable stream found")
)
