package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
	"github.com/gestion-comercial/backoffice/internal/core/ports"
)

// ResolvePrincipal finds the owner of loginID. The employee table is checked
// first, then the client table; an identifier present in both resolves to the
// employee. Returns domain.ErrPrincipalNotFound when neither table has it.
func ResolvePrincipal(ctx context.Context, store ports.CredentialStore, loginID string) (domain.Principal, error) {
	emp, err := store.FindEmployeeByLoginID(ctx, loginID)
	switch {
	case err == nil:
		return domain.EmployeePrincipal(*emp), nil
	case !errors.Is(err, domain.ErrPrincipalNotFound):
		return domain.Principal{}, fmt.Errorf("resolve principal: employees: %w", err)
	}

	cli, err := store.FindClientByLoginID(ctx, loginID)
	switch {
	case err == nil:
		return domain.ClientPrincipal(*cli), nil
	case errors.Is(err, domain.ErrPrincipalNotFound):
		return domain.Principal{}, domain.ErrPrincipalNotFound
	default:
		return domain.Principal{}, fmt.Errorf("resolve principal: clients: %w", err)
	}
}

// profile is the presentation data returned alongside a token.
type profile struct {
	name string
	id   int
}

// lookupProfile mirrors ResolvePrincipal's precedence to find a display name
// and numeric id for loginID.
func lookupProfile(ctx context.Context, store ports.CredentialStore, loginID string) (*profile, error) {
	emp, err := store.FindEmployeeByLoginID(ctx, loginID)
	if err == nil {
		return &profile{name: emp.Name, id: emp.ID}, nil
	}
	if !errors.Is(err, domain.ErrPrincipalNotFound) {
		return nil, err
	}
	cli, err := store.FindClientByLoginID(ctx, loginID)
	if err != nil {
		return nil, err
	}
	return &profile{name: cli.Name, id: cli.ID}, nil
}
