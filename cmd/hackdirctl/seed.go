package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"hackdir/internal/repository"
	"hackdir/internal/seed"
	"hackdir/internal/storage"
)

type seedOptions struct {
	csvPath        string
	object         string
	credentialsOut string
}

func newSeedCmd() *cobra.Command {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import participants from a registration export",
		Long: `Import participants from a registration export.

Each participant gets a random password. The generated email,password pairs
are written to --credentials-out, locally for --csv and to the imports bucket
for --object.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "path to a local CSV export")
	cmd.Flags().StringVar(&opts.object, "object", "", "object key of the CSV export in the imports bucket")
	cmd.Flags().StringVar(&opts.credentialsOut, "credentials-out", "credentials.csv", "where to write generated credentials")
	cmd.MarkFlagsMutuallyExclusive("csv", "object")
	cmd.MarkFlagsOneRequired("csv", "object")
	return cmd
}

func runSeed(cmd *cobra.Command, opts seedOptions) error {
	ctx := cmd.Context()

	e, err := connect(ctx)
	if err != nil {
		return err
	}
	defer e.pool.Close()

	var store *storage.ObjectStore
	if opts.object != "" {
		store, err = storage.NewObjectStore(e.cfg.Storage)
		if err != nil {
			return err
		}
	}

	records, err := readRecords(ctx, opts, store)
	if err != nil {
		return err
	}
	e.log.Info().Int("count", len(records)).Msg("participants found in export")

	seeder := seed.NewSeeder(repository.NewParticipantRepository(e.pool), e.log)
	creds, err := seeder.Seed(ctx, records)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := seed.WriteCredentials(&buf, creds); err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if store != nil {
		if err := store.EnsureBucket(ctx); err != nil {
			return err
		}
		if err := store.Put(ctx, opts.credentialsOut, buf.Bytes(), "text/csv"); err != nil {
			return err
		}
	} else if err := os.WriteFile(opts.credentialsOut, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d participants, credentials in %s\n", len(creds), opts.credentialsOut)
	return nil
}

func readRecords(ctx context.Context, opts seedOptions, store *storage.ObjectStore) ([]seed.Record, error) {
	var r io.ReadCloser
	if store != nil {
		obj, err := store.Open(ctx, opts.object)
		if err != nil {
			return nil, err
		}
		r = obj
	} else {
		f, err := os.Open(opts.csvPath)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		r = f
	}
	defer r.Close()

	return seed.ParseCSV(r)
}
