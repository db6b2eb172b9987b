package domain

import "strings"

// Role is the single authority carried by a principal and its tokens.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLEADO"
	RoleClient   Role = "CLIENTE"
)

// Authority returns the role in the "ROLE_" prefixed form exposed to API clients.
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleClient:
		return true
	}
	return false
}

// ParseRole accepts both "ADMIN" and "ROLE_ADMIN" forms, case-insensitively.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ROLE_"))
	return r, r.Valid()
}

// AccountKind tags the table a principal was loaded from.
type AccountKind string

const (
	AccountAdmin    AccountKind = "ADMIN"
	AccountEmployee AccountKind = "EMPLEADO"
	AccountClient   AccountKind = "CLIENTE"
)

// Employee is a row of the employee table as read by the credential store.
// RoleName is already materialized; it is empty when the employee has no role record.
type Employee struct {
	ID           int    `json:"id"`
	Name         string `json:"nombre"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	RoleName     string `json:"rol,omitempty"`
	Status       string `json:"estado,omitempty"`
}

// Client is a row of the client table as read by the credential store.
type Client struct {
	ID           int    `json:"id"`
	Name         string `json:"nombre"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
