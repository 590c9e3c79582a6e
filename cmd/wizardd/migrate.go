package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pgrepo "github.com/ctateo21/homelead/internal/infrastructure/persistence/postgres"
	pgpkg "github.com/ctateo21/homelead/pkg/postgres"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the PostgreSQL step store schema",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(pgpkg.Up), string(pgpkg.Down)},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := pgpkg.Up
		if len(args) == 1 {
			direction = pgpkg.Direction(args[0])
		}
		if direction != pgpkg.Up && direction != pgpkg.Down {
			return fmt.Errorf("migrate: unknown direction %q", direction)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := pgpkg.RunMigrations(cfg.Postgres().DSN(), pgrepo.Migrations, pgrepo.MigrationsDir, direction); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", direction)
		return nil
	},
}
