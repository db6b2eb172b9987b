package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

func TestResolvePrincipal(t *testing.T) {
	store := newStubStore()
	store.employees["ana@empresa.com"] = &domain.Employee{ID: 1, Name: "Ana", Email: "ana@empresa.com", RoleName: "admin"}
	store.employees["luis@empresa.com"] = &domain.Employee{ID: 2, Name: "Luis", Email: "luis@empresa.com", RoleName: "VENTAS"}
	store.employees["sinrol@empresa.com"] = &domain.Employee{ID: 3, Name: "Sin Rol", Email: "sinrol@empresa.com"}
	store.clients["cli@correo.com"] = &domain.Client{ID: 7, Name: "Cliente", Email: "cli@correo.com"}

	cases := []struct {
		loginID string
		role    domain.Role
		kind    domain.AccountKind
		id      int
	}{
		{"ana@empresa.com", domain.RoleAdmin, domain.AccountAdmin, 1},
		{"luis@empresa.com", domain.RoleEmployee, domain.AccountEmployee, 2},
		{"sinrol@empresa.com", domain.RoleEmployee, domain.AccountEmployee, 3},
		{"cli@correo.com", domain.RoleClient, domain.AccountClient, 7},
	}
	for _, tc := range cases {
		t.Run(tc.loginID, func(t *testing.T) {
			p, err := ResolvePrincipal(context.Background(), store, tc.loginID)
			if err != nil {
				t.Fatalf("ResolvePrincipal: %v", err)
			}
			if p.Role() != tc.role {
				t.Fatalf("expected role %s, got %s", tc.role, p.Role())
			}
			if p.AccountKind() != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, p.AccountKind())
			}
			if p.SubjectID() != tc.id {
				t.Fatalf("expected id %d, got %d", tc.id, p.SubjectID())
			}
			if p.LoginID() != tc.loginID {
				t.Fatalf("expected login %s, got %s", tc.loginID, p.LoginID())
			}
		})
	}
}

func TestResolvePrincipal_EmployeeWinsOverClient(t *testing.T) {
	store := newStubStore()
	store.employees["dual@x.com"] = &domain.Employee{ID: 1, Email: "dual@x.com", RoleName: "VENTAS"}
	store.clients["dual@x.com"] = &domain.Client{ID: 9, Email: "dual@x.com"}

	p, err := ResolvePrincipal(context.Background(), store, "dual@x.com")
	if err != nil {
		t.Fatalf("ResolvePrincipal: %v", err)
	}
	if _, ok := p.Employee(); !ok {
		t.Fatalf("expected employee principal")
	}
	if store.clientCalls != 0 {
		t.Fatalf("client table should not be consulted, got %d calls", store.clientCalls)
	}
}

func TestResolvePrincipal_NotFound(t *testing.T) {
	store := newStubStore()
	p, err := ResolvePrincipal(context.Background(), store, "nadie@x.com")
	if !errors.Is(err, domain.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
	if !p.IsZero() {
		t.Fatalf("expected zero principal")
	}
}

func TestResolvePrincipal_StoreError(t *testing.T) {
	boom := errors.New("connection refused")

	store := newStubStore()
	store.employeeErr = boom
	if _, err := ResolvePrincipal(context.Background(), store, "a@x.com"); !errors.Is(err, boom) || errors.Is(err, domain.ErrPrincipalNotFound) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}

	store = newStubStore()
	store.clientErr = boom
	if _, err := ResolvePrincipal(context.Background(), store, "a@x.com"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
