package bunstore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(upAuthTables, downAuthTables)
}

func upAuthTables(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*RoleRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create roles_empleado table: %w", err)
	}

	_, err = db.NewCreateTable().
		Model((*EmployeeRecord)(nil)).
		IfNotExists().
		ForeignKey(`("rol_id") REFERENCES "roles_empleado" ("id") ON DELETE SET NULL`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create empleados table: %w", err)
	}

	_, err = db.NewCreateTable().
		Model((*ClientRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create clientes table: %w", err)
	}

	_, err = db.NewCreateTable().
		Model((*LoginEventRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create login_events table: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_login_events_login_id ON login_events(login_id)`)
	if err != nil {
		return fmt.Errorf("failed to create login_events index: %w", err)
	}
	return nil
}

func downAuthTables(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{
		(*LoginEventRecord)(nil),
		(*ClientRecord)(nil),
		(*EmployeeRecord)(nil),
		(*RoleRecord)(nil),
	} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}
