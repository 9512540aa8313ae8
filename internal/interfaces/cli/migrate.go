package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/InsureDoc-Intelligence/internal/config"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
)

// SchemaMigrator is the subset of postgres.Migrator the migrate command uses.
type SchemaMigrator interface {
	Up() error
	Down(steps int) error
	Status() (version uint, dirty bool, err error)
}

// MigratorFactory builds a migrator for the configured database.
type MigratorFactory func(cfg config.DatabaseConfig, log logging.Logger) SchemaMigrator

func postgresMigrator(cfg config.DatabaseConfig, log logging.Logger) SchemaMigrator {
	return postgres.NewMigrator(cfg, log)
}

// MigrationStatus is the output of migrate status.
type MigrationStatus struct {
	Version    uint     `json:"version"`
	Dirty      bool     `json:"dirty"`
	Migrations []string `json:"migrations"`
}

func (s MigrationStatus) String() string {
	state := "clean"
	if s.Dirty {
		state = "dirty"
	}
	return fmt.Sprintf("schema version %d (%s), %d migrations embedded", s.Version, state, len(s.Migrations))
}

// NewMigrateCmd manages the Postgres schema.
func NewMigrateCmd() *cobra.Command {
	return newMigrateCmd(postgresMigrator)
}

func newMigrateCmd(factory MigratorFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	open := func(cmd *cobra.Command) (SchemaMigrator, error) {
		cliCtx, err := GetCLIContext(cmd)
		if err != nil {
			return nil, err
		}
		return factory(cliCtx.Config.Database, cliCtx.Logger), nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cmd)
			if err != nil {
				return err
			}
			if err := m.Up(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK: migrations applied")
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down [STEPS]",
		Short: "Roll back migrations (default one step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				steps = n
			}
			m, err := open(cmd)
			if err != nil {
				return err
			}
			if err := m.Down(steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: rolled back %d migration(s)\n", steps)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cmd)
			if err != nil {
				return err
			}
			version, dirty, err := m.Status()
			if err != nil {
				return err
			}
			names, err := postgres.EmbeddedMigrations()
			if err != nil {
				return err
			}
			return PrintResult(cmd, MigrationStatus{Version: version, Dirty: dirty, Migrations: names})
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}
