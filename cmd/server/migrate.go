package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phrazzld/wordeck-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <" + strings.Join(postgres.MigrationCommands, "|") + ">",
		Short:     "Run database migrations against the configured postgres database",
		Args:      cobra.ExactArgs(1),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]
			if !slices.Contains(postgres.MigrationCommands, command) {
				return fmt.Errorf("unknown migration command %q (expected one of %s)",
					command, strings.Join(postgres.MigrationCommands, ", "))
			}

			cfg, logger, err := loadAppConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != "postgres" {
				return fmt.Errorf("migrations require the postgres driver, got %q", cfg.Database.Driver)
			}

			db, err := setupAppDatabase(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, command, logger)
		},
	}
}
