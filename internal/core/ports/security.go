package ports

import (
	"time"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

// TokenCodec issues and validates signed, time-bounded bearer tokens.
type TokenCodec interface {
	Issue(p domain.Principal) (token string, expiresAt time.Time, err error)
	// Validate returns domain.ErrMalformedToken, domain.ErrInvalidToken or
	// domain.ErrExpiredToken (possibly wrapped) on failure.
	Validate(token string) (domain.Identity, error)
}

// PasswordVerifier checks a plaintext password against a stored credential hash.
type PasswordVerifier interface {
	Verify(hash, password string) bool
	// Decoy spends the same work as Verify without a stored hash, so a missing
	// account costs as much as a wrong password.
	Decoy(password string)
}

// RateLimiter tracks failed login attempts per key and enforces temporary lockout.
type RateLimiter interface {
	IsBlocked(key string) bool
	RegisterFailedAttempt(key string)
	RegisterSuccessfulLogin(key string)
}
