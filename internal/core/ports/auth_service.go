package ports

import (
	"context"
	"time"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

// LoginInput carries one login attempt. Origin is the network address the
// request came from, used verbatim as a rate-limit key.
type LoginInput struct {
	Identifier string
	Password   string
	Origin     string
}

// LoginResult is returned on a successful login. DisplayName and SubjectID are
// presentation data and may be absent.
type LoginResult struct {
	Token       string
	TokenType   string
	ExpiresAt   time.Time
	Role        domain.Role
	LoginID     string
	DisplayName *string
	SubjectID   *int
}

// AuthService is the single entry point for login.
type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
}
