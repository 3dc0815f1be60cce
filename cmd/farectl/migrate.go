package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/smallbiznis/skyfare/internal/migration"
	"github.com/smallbiznis/skyfare/pkg/db"
	"github.com/spf13/cobra"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the fare database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isPostgres() {
			return withDeps(cmd.Context(), func(ctx context.Context, d deps) error {
				if err := migration.AutoMigrate(d.DB); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema auto-migrated")
				return nil
			})
		}
		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (one step unless --steps is given)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isPostgres() {
			return fmt.Errorf("down migrations need postgres, configured type is %q", cfg.DBType)
		}
		if migrateSteps < 1 {
			return fmt.Errorf("--steps must be at least 1")
		}
		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Steps(-migrateSteps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isPostgres() {
			return fmt.Errorf("schema versions are tracked for postgres only, configured type is %q", cfg.DBType)
		}
		return withMigrator(func(m *migrate.Migrate) error {
			return printVersion(cmd, m)
		})
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "Number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}

func isPostgres() bool {
	return strings.EqualFold(strings.TrimSpace(cfg.DBType), "postgres")
}

func withMigrator(fn func(m *migrate.Migrate) error) error {
	m, err := migration.NewMigrator(db.MigrateURL(db.ProvideConfig(cfg)))
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func printVersion(cmd *cobra.Command, m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", version, dirty)
	return nil
}
