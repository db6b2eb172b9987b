package domain

import "strings"

// EmployeeOrigin is a principal resolved from the employee table.
type EmployeeOrigin struct {
	Employee Employee
	Role     Role
}

// ClientOrigin is a principal resolved from the client table.
type ClientOrigin struct {
	Client Client
}

// Principal is the unified identity produced at login time. Exactly one of
// Employee or Client is set; use the constructors to build one.
type Principal struct {
	employee *EmployeeOrigin
	client   *ClientOrigin
}

// EmployeePrincipal builds a principal from an employee row. The role is ADMIN
// when the uppercased role name is exactly "ADMIN", EMPLEADO otherwise.
func EmployeePrincipal(e Employee) Principal {
	role := RoleEmployee
	if strings.ToUpper(e.RoleName) == string(RoleAdmin) {
		role = RoleAdmin
	}
	return Principal{employee: &EmployeeOrigin{Employee: e, Role: role}}
}

// ClientPrincipal builds a principal from a client row. Clients are always CLIENTE.
func ClientPrincipal(c Client) Principal {
	return Principal{client: &ClientOrigin{Client: c}}
}

// Employee returns the employee variant, if that is what p holds.
func (p Principal) Employee() (*EmployeeOrigin, bool) {
	return p.employee, p.employee != nil
}

// Client returns the client variant, if that is what p holds.
func (p Principal) Client() (*ClientOrigin, bool) {
	return p.client, p.client != nil
}

// IsZero reports whether p holds neither variant.
func (p Principal) IsZero() bool {
	return p.employee == nil && p.client == nil
}

func (p Principal) LoginID() string {
	switch {
	case p.employee != nil:
		return p.employee.Employee.Email
	case p.client != nil:
		return p.client.Client.Email
	}
	return ""
}

func (p Principal) CredentialHash() string {
	switch {
	case p.employee != nil:
		return p.employee.Employee.PasswordHash
	case p.client != nil:
		return p.client.Client.PasswordHash
	}
	return ""
}

func (p Principal) Role() Role {
	switch {
	case p.employee != nil:
		return p.employee.Role
	case p.client != nil:
		return RoleClient
	}
	return ""
}

func (p Principal) SubjectID() int {
	switch {
	case p.employee != nil:
		return p.employee.Employee.ID
	case p.client != nil:
		return p.client.Client.ID
	}
	return 0
}

// AccountKind mirrors the role category of the owning table.
func (p Principal) AccountKind() AccountKind {
	switch p.Role() {
	case RoleAdmin:
		return AccountAdmin
	case RoleEmployee:
		return AccountEmployee
	case RoleClient:
		return AccountClient
	}
	return ""
}

// Identity is the authenticated party attached to a request: what a token
// or a web session proves, without any store round-trip.
type Identity struct {
	LoginID string `json:"email"`
	Role    Role   `json:"role"`
}
