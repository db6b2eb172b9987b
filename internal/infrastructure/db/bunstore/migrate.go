package bunstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations holds the schema migrations for the relational store. Each
// migration registers itself from a file named <timestamp>_<comment>.go.
var Migrations = migrate.NewMigrations()

// Migrate applies every pending migration under the migration lock.
func Migrate(ctx context.Context, db *bun.DB, log zerolog.Logger) error {
	migrator := migrate.NewMigrator(db, Migrations)

	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		if err := migrator.Unlock(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to release migration lock")
		}
	}()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if group.IsZero() {
		log.Info().Msg("no new migrations to apply")
	} else {
		log.Info().Int64("group", group.ID).Str("migrations", group.String()).Msg("applied migrations")
	}
	return nil
}
