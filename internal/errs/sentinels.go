// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across store/service layers. The HTTP layer maps each to a
// status code; nothing below the transport edge knows about HTTP.
var (
	// ErrInvalid indicates malformed input (bad email, bad username, bad document).
	ErrInvalid = errors.New("invalid input")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (email or username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication (bad credentials or bad token).
	ErrUnauthorized = errors.New("unauthorized")
)
