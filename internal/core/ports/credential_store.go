package ports

import (
	"context"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

// CredentialStore is the read side of the employee and client tables used by
// authentication. Both finders return domain.ErrPrincipalNotFound when no row
// matches; any other error is a store failure.
//
// Returned records must be fully materialized (role name included) so callers
// never depend on a still-open store scope.
type CredentialStore interface {
	FindEmployeeByLoginID(ctx context.Context, loginID string) (*domain.Employee, error)
	FindClientByLoginID(ctx context.Context, loginID string) (*domain.Client, error)
}
