package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hackdir/internal/config"
	"hackdir/internal/database"
	"hackdir/internal/log"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hackdirctl",
		Short:         "Operator tasks for the hackathon directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newCreateAdminCmd(),
		newSeedCmd(),
	)
	return root
}

type env struct {
	cfg  *config.AppConfig
	log  zerolog.Logger
	pool *pgxpool.Pool
}

func connect(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.New(cfg.Environment, cfg.Log.Level)

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &env{cfg: cfg, log: logger, pool: pool}, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.pool.Close()

			if err := database.Migrate(cmd.Context(), e.pool); err != nil {
				return err
			}
			e.log.Info().Msg("migrations applied")
			return nil
		},
	}
}
