package cmd

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/spf13/cobra"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/db/bunstore"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/db/mongo"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/security"
)

var (
	seedAdminEmail    string
	seedAdminPassword string
	seedAdminName     string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Prepare the credential store schema",
	Long: `Applies pending SQL migrations (or creates the Mongo indexes) and
optionally seeds an ADMIN employee.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedAdminEmail != "" {
			if _, err := mail.ParseAddress(seedAdminEmail); err != nil {
				return fmt.Errorf("invalid --seed-admin email: %w", err)
			}
			if seedAdminPassword == "" {
				return fmt.Errorf("--password is required with --seed-admin")
			}
		}

		ctx := cmd.Context()
		b, err := openBackends(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = b.close(context.Background()) }()

		if err := b.prepare(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info().Str("driver", cfg.Store.Driver).Msg("schema ready")

		if seedAdminEmail == "" {
			return nil
		}
		return seedAdmin(ctx, b)
	},
}

func seedAdmin(ctx context.Context, b *backends) error {
	hash, err := security.HashPassword(seedAdminPassword, 0)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if b.sqlDB != nil {
		e, err := bunstore.NewStore(b.sqlDB).CreateEmployee(ctx, seedAdminName, seedAdminEmail, hash, string(domain.RoleAdmin))
		if err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
		log.Info().Int("id", e.ID).Str("email", e.Email).Msg("admin employee created")
		return nil
	}

	err = mongo.NewCredentialRepository(b.mongoDB).CreateEmployee(ctx, &domain.Employee{
		ID:           1,
		Name:         seedAdminName,
		Email:        seedAdminEmail,
		PasswordHash: hash,
		RoleName:     string(domain.RoleAdmin),
		Status:       "ACTIVO",
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	log.Info().Str("email", seedAdminEmail).Msg("admin employee created")
	return nil
}

func init() {
	migrateCmd.Flags().StringVar(&seedAdminEmail, "seed-admin", "", "Email of an ADMIN employee to create after migrating")
	migrateCmd.Flags().StringVar(&seedAdminPassword, "password", "", "Password for the seeded admin")
	migrateCmd.Flags().StringVar(&seedAdminName, "name", "Administrador", "Display name for the seeded admin")
	rootCmd.AddCommand(migrateCmd)
}
