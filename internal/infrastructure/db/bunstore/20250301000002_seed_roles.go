package bunstore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(upSeedRoles, downSeedRoles)
}

// DefaultRoles are the role names seeded on first migration.
var DefaultRoles = []string{"ADMIN", "EMPLEADO"}

func upSeedRoles(ctx context.Context, db *bun.DB) error {
	for _, name := range DefaultRoles {
		_, err := db.NewInsert().
			Model(&RoleRecord{Name: name}).
			On("CONFLICT (nombre) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}
	}
	return nil
}

func downSeedRoles(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDelete().
		Model((*RoleRecord)(nil)).
		Where("nombre IN (?)", bun.In(DefaultRoles)).
		Exec(ctx)
	return err
}
