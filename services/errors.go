package services

import "errors"

// Domain failures surfaced to callers. None of these are retried
// internally; each maps directly to a caller-visible outcome.
var (
	// ErrDuplicateUsername rejects registration with a taken username.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidUsername rejects registration with a blank username.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrUnknownUser means no account matches the supplied identity.
	ErrUnknownUser = errors.New("unknown user")
	// ErrUnauthenticated means the operation requires a resolved user.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrPostNotFound means no post matches the supplied id.
	ErrPostNotFound = errors.New("post not found")
	// ErrUnauthorized means the caller is not the owner of the target.
	ErrUnauthorized = errors.New("not authorized")
)
