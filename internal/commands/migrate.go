package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/echeque-service/internal/config"
	"github.com/sheikh-saqib/echeque-service/internal/storage/postgres"
)

func newMigrateCommand(opts *serveOptions) *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the postgres schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				cfg, err := config.Load(opts.envFile)
				if err != nil {
					return err
				}
				dsn = cfg.DatabaseURL
			}
			if dsn == "" {
				return errors.New("no database: set ECHEQUE_DATABASE_URL or pass --database-url")
			}

			ctx := cmd.Context()
			db, err := postgres.Open(ctx, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := postgres.Migrate(ctx, db)
			if err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "database-url", "", "postgres connection string, overrides ECHEQUE_DATABASE_URL")
	return cmd
}
