package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/gestion-comercial/backoffice/internal/infrastructure/security"
)

var hashCost int

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <plain>",
	Short: "Print the bcrypt hash of a password",
	Long:  `Prints a bcrypt hash suitable for the password column of the employee and client tables.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := security.HashPassword(args[0], hashCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	rootCmd.AddCommand(hashPasswordCmd)
}
