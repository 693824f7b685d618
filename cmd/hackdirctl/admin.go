package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hackdir/internal/repository"
	"hackdir/internal/seed"
)

func newCreateAdminCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the organizer account",
		Long: `Create the organizer account.

Credentials come from --email/--password or, when omitted, from
HACKDIR_ADMIN_EMAIL and HACKDIR_ADMIN_PASSWORD.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				email = os.Getenv("HACKDIR_ADMIN_EMAIL")
			}
			if password == "" {
				password = os.Getenv("HACKDIR_ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return fmt.Errorf("admin email and password are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.pool.Close()

			seeder := seed.NewSeeder(repository.NewParticipantRepository(e.pool), e.log)
			admin, err := seeder.CreateAdmin(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin created: %s (%s)\n", admin.Email, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	return cmd
}
