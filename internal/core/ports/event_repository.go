package ports

import (
	"context"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

// LoginEventRepository persists the login audit trail.
type LoginEventRepository interface {
	InsertLoginEvent(ctx context.Context, event *domain.LoginEvent) error
}

// LoginEventPublisher hands login events to the audit trail without blocking
// the caller.
type LoginEventPublisher interface {
	Publish(event domain.LoginEvent)
}
