package domain

import "errors"

// Authentication outcomes.
var (
	ErrTooManyAttempts   = errors.New("too many failed login attempts")
	ErrBadCredentials    = errors.New("bad credentials")
	ErrPrincipalNotFound = errors.New("principal not found")
)

// Token validation failures. The guard treats all of them as "anonymous"
// but logs them separately.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("expired token")
)

// Route admission failures.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")
)
