package bunstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

// RoleRecord is a named employee role. Only the name matters to
// authentication; anything other than ADMIN maps to EMPLEADO.
type RoleRecord struct {
	bun.BaseModel `bun:"table:roles_empleado,alias:r"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"nombre,notnull,unique"`
}

// EmployeeRecord is a row of the employee table.
type EmployeeRecord struct {
	bun.BaseModel `bun:"table:empleados,alias:e"`

	ID           int64       `bun:"id,pk,autoincrement"`
	Name         string      `bun:"nombre,notnull"`
	Email        string      `bun:"email,notnull,unique"`
	PasswordHash string      `bun:"password,notnull"`
	RoleID       *int64      `bun:"rol_id"`
	Role         *RoleRecord `bun:"rel:belongs-to,join:rol_id=id"`
	Status       string      `bun:"estado,notnull,default:'ACTIVO'"`
	CreatedAt    time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *EmployeeRecord) toDomain() *domain.Employee {
	e := &domain.Employee{
		ID:           int(r.ID),
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Status:       r.Status,
	}
	if r.Role != nil {
		e.RoleName = r.Role.Name
	}
	return e
}

// ClientRecord is a row of the client table.
type ClientRecord struct {
	bun.BaseModel `bun:"table:clientes,alias:c"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Name         string    `bun:"nombre,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *ClientRecord) toDomain() *domain.Client {
	return &domain.Client{
		ID:           int(r.ID),
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
	}
}

// LoginEventRecord is one row of the login audit trail.
type LoginEventRecord struct {
	bun.BaseModel `bun:"table:login_events,alias:le"`

	ID         int64     `bun:"id,pk,autoincrement"`
	LoginID    string    `bun:"login_id,notnull"`
	Origin     string    `bun:"origin,notnull"`
	Outcome    string    `bun:"outcome,notnull"`
	Role       string    `bun:"role"`
	OccurredAt time.Time `bun:"occurred_at,notnull"`
}
