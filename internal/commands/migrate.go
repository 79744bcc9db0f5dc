package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SscSPs/mbg_dapur_ledger/internal/platform/config"
	"github.com/SscSPs/mbg_dapur_ledger/pkg/database"
)

func newMigrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply all pending migrations, or roll back the latest one",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(database.MigrateUp), string(database.MigrateDown)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if cfg.StorageDriver != config.StoragePostgres {
				return fmt.Errorf("migrations need the postgres storage driver, got %q", cfg.StorageDriver)
			}

			changed, err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, database.MigrationDirection(args[0]), a.logger)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: applied\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: no change\n", args[0])
			}
			return nil
		},
	}
	return cmd
}
