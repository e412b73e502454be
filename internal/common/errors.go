// Package common defines the sentinel errors shared by projecthub's layers.
// Callers match them with errors.Is; the HTTP layer maps each kind to a status code.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Client-facing error kinds.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorBadRequest   = errors.New("bad request")
	ErrorConflict     = errors.New("conflict")
	ErrRateLimited    = errors.New("rate limit exceeded")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
