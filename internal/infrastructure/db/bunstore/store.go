package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

// Store implements ports.CredentialStore and ports.LoginEventRepository on a
// relational database through Bun.
type Store struct {
	db *bun.DB
}

// NewStore creates a new Bun-based store.
func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// FindEmployeeByLoginID loads the employee with the given email together with
// its role name in a single query.
func (s *Store) FindEmployeeByLoginID(ctx context.Context, loginID string) (*domain.Employee, error) {
	rec := new(EmployeeRecord)
	err := s.db.NewSelect().
		Model(rec).
		Relation("Role").
		Where("e.email = ?", loginID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find employee by email: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *Store) FindClientByLoginID(ctx context.Context, loginID string) (*domain.Client, error) {
	rec := new(ClientRecord)
	err := s.db.NewSelect().
		Model(rec).
		Where("c.email = ?", loginID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find client by email: %w", err)
	}
	return rec.toDomain(), nil
}

// InsertLoginEvent appends one record to the audit trail.
func (s *Store) InsertLoginEvent(ctx context.Context, event *domain.LoginEvent) error {
	rec := &LoginEventRecord{
		LoginID:    event.LoginID,
		Origin:     event.Origin,
		Outcome:    string(event.Outcome),
		Role:       string(event.Role),
		OccurredAt: event.OccurredAt.UTC(),
	}
	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return fmt.Errorf("insert login event: %w", err)
	}
	return nil
}

// CreateEmployee inserts an employee with the named role. An empty roleName
// leaves the employee without a role record.
func (s *Store) CreateEmployee(ctx context.Context, name, email, passwordHash, roleName string) (*domain.Employee, error) {
	rec := &EmployeeRecord{Name: name, Email: email, PasswordHash: passwordHash, Status: "ACTIVO"}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if roleName != "" {
			role := new(RoleRecord)
			if err := tx.NewSelect().Model(role).Where("r.nombre = ?", roleName).Scan(ctx); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("role %q does not exist", roleName)
				}
				return fmt.Errorf("find role: %w", err)
			}
			rec.RoleID = &role.ID
			rec.Role = role
		}
		if _, err := tx.NewInsert().Model(rec).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("insert employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (s *Store) CreateClient(ctx context.Context, name, email, passwordHash string) (*domain.Client, error) {
	rec := &ClientRecord{Name: name, Email: email, PasswordHash: passwordHash}
	if _, err := s.db.NewInsert().Model(rec).Returning("id").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return rec.toDomain(), nil
}

// CountLoginEvents returns the number of audit records stored for loginID.
func (s *Store) CountLoginEvents(ctx context.Context, loginID string) (int, error) {
	n, err := s.db.NewSelect().
		Model((*LoginEventRecord)(nil)).
		Where("le.login_id = ?", loginID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count login events: %w", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
