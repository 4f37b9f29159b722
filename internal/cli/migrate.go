package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/bewear-pt/storefront/internal/pkg/database"
)

// Migrator is the subset of *migrate.Migrate the commands use.
type Migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Version() (uint, bool, error)
	Close() (error, error)
}

// openMigrator is replaced in tests.
var openMigrator = func(opts *RootOptions) (Migrator, error) {
	cfg := database.LoadConfig()
	source := opts.Migrations
	if source == "" {
		source = cfg.MigrationsSource()
	}
	m, err := migrate.New(source, cfg.MigrateURL())
	if err != nil {
		return nil, fmt.Errorf("init migrations (%s on %s@%s:%s/%s): %w", source, cfg.User, cfg.Host, cfg.Port, cfg.Name, err)
	}
	return m, nil
}

// NewMigrateCommand creates the migrate command with up, down, goto and status.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rootOpts, func(m Migrator) error {
				err := m.Up()
				if errors.Is(err, migrate.ErrNoChange) {
					fmt.Fprintln(cmd.OutOrStdout(), "No change: database is up to date")
					return nil
				}
				if err != nil {
					return fmt.Errorf("apply migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rootOpts, func(m Migrator) error {
				if err := m.Steps(-1); err != nil {
					return fmt.Errorf("roll back last migration: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Last migration rolled back")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "goto <version>",
		Short: "Migrate up or down to a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return withMigrator(rootOpts, func(m Migrator) error {
				err := m.Migrate(uint(version))
				if errors.Is(err, migrate.ErrNoChange) {
					fmt.Fprintf(cmd.OutOrStdout(), "No change: database is already at version %d\n", version)
					return nil
				}
				if err != nil {
					return fmt.Errorf("migrate to version %d: %w", version, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Migrated to version %d\n", version)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rootOpts, func(m Migrator) error {
				version, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					fmt.Fprintln(cmd.OutOrStdout(), "No migrations applied yet")
					return nil
				}
				if err != nil {
					return fmt.Errorf("read migration version: %w", err)
				}
				suffix := ""
				if dirty {
					suffix = " (dirty)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d%s\n", version, suffix)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(opts *RootOptions, fn func(Migrator) error) error {
	m, err := openMigrator(opts)
	if err != nil {
		return err
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Warnf("[Migrate] Failed to close migrations: %v, %v", sourceErr, dbErr)
		}
	}()
	return fn(m)
}
