package cli

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/erp/shopify-sync/internal/infrastructure/logger"
	"github.com/erp/shopify-sync/internal/infrastructure/migration"
	"github.com/erp/shopify-sync/migrations"
	_ "github.com/lib/pq" // postgres driver for database/sql
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand(opts *options) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the sync database schema",
		Long: `Apply or roll back the SQL migrations of the sync tables. Migrations are
embedded in the binary; --path reads them from a directory instead.`,
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "read migrations from this directory")

	withMigrator := func(cmd *cobra.Command, fn func(m *migration.Migrator) error) error {
		log, err := logger.New(logConfig(opts.cfg))
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		db, err := sql.Open("postgres", opts.cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		var m *migration.Migrator
		if path != "" {
			m, err = migration.NewFromPath(db, path, log)
		} else {
			m, err = migration.New(db, log)
		}
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				log.Warn("Failed to close migrator", zap.Error(err))
			}
		}()
		return fn(m)
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *migration.Migrator) error { return m.Up() })
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *migration.Migrator) error { return m.Down() })
		},
	}

	steps := &cobra.Command{
		Use:   "steps N",
		Short: "Apply N migrations (negative N rolls back)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return withMigrator(cmd, func(m *migration.Migrator) error { return m.Steps(n) })
		},
	}

	force := &cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withMigrator(cmd, func(m *migration.Migrator) error { return m.Force(v) })
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *migration.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the embedded migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := migration.List(migrations.FS)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.AddCommand(up, down, steps, force, version, list)
	return cmd
}
