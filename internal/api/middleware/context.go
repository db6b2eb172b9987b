package middleware

import (
	"context"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/session"
)

type identityContextKey struct{}

// WithIdentity stores the authenticated identity on the context for downstream consumers.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFrom retrieves the authenticated identity from the context.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(domain.Identity)
	return id, ok
}

type sessionContextKey struct{}

// WithSession stores the browser session backing the request identity.
func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFrom retrieves the browser session, if the request carried one.
func SessionFrom(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(session.Session)
	return s, ok
}
