package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gestion-comercial/backoffice/internal/pkg/config"
	"github.com/gestion-comercial/backoffice/pkg/logger"
)

var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Backoffice authentication and route admission server",
	Long: `backoffice serves the login endpoints and the route admission layer in
front of the employee, client, product and query modules.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log = logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  !cfg.IsProduction(),
			Service: "backoffice",
		})
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
