package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Pricing/internal/config"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// Migrator is the schema management surface behind the migrate commands.
type Migrator interface {
	Up(dbURL, path string) error
	Down(dbURL, path string, steps int) error
	Status(dbURL, path string) (uint, bool, error)
	Force(dbURL, path string, version int) error
}

type golangMigrator struct{}

func (golangMigrator) Up(dbURL, path string) error { return postgres.RunMigrations(dbURL, path) }
func (golangMigrator) Down(dbURL, path string, steps int) error {
	return postgres.RollbackMigration(dbURL, path, steps)
}
func (golangMigrator) Status(dbURL, path string) (uint, bool, error) {
	return postgres.MigrationStatus(dbURL, path)
}
func (golangMigrator) Force(dbURL, path string, version int) error {
	return postgres.ForceMigrationVersion(dbURL, path, version)
}

// DefaultMigrator drives golang-migrate.  Tests swap it out.
var DefaultMigrator Migrator = golangMigrator{}

type migrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s migrationStatus) String() string {
	if s.Dirty {
		return fmt.Sprintf("version %d (dirty; fix the schema and run migrate force)", s.Version)
	}
	return fmt.Sprintf("version %d", s.Version)
}

func (s migrationStatus) TableHeaders() []string { return []string{"VERSION", "DIRTY"} }
func (s migrationStatus) TableRows() [][]string {
	return [][]string{{strconv.FormatUint(uint64(s.Version), 10), strconv.FormatBool(s.Dirty)}}
}

// NewMigrateCmd manages the rule store schema.
func NewMigrateCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the pricing rule store schema",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "migrations directory (default: database.migration_path)")

	target := func(cmd *cobra.Command) (string, string, logging.Logger, error) {
		cliCtx, err := GetCLIContext(cmd)
		if err != nil {
			return "", "", nil, err
		}
		dir := path
		if dir == "" {
			dir = cliCtx.Config.Database.MigrationPath
		}
		if dir == "" {
			dir = config.DefaultMigrationPath
		}
		return postgres.MigrationURL(cliCtx.Config.Database), dir, cliCtx.Logger, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, dir, log, err := target(cmd)
			if err != nil {
				return err
			}
			log.Info("applying migrations", logging.String("path", dir))
			if err := DefaultMigrator.Up(dbURL, dir); err != nil {
				return err
			}
			PrintSuccess(cmd, "schema is up to date")
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, dir, _, err := target(cmd)
			if err != nil {
				return err
			}
			if err := DefaultMigrator.Down(dbURL, dir, steps); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("rolled back %d migration(s)", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, dir, _, err := target(cmd)
			if err != nil {
				return err
			}
			v, dirty, err := DefaultMigrator.Status(dbURL, dir)
			if err != nil {
				return err
			}
			return PrintResult(cmd, migrationStatus{Version: v, Dirty: dirty})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied without running it (-1 clears the version)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil || version < -1 {
				return errors.InvalidParam("version must be an integer >= -1").WithDetail(args[0])
			}
			dbURL, dir, _, err := target(cmd)
			if err != nil {
				return err
			}
			if err := DefaultMigrator.Force(dbURL, dir, version); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("forced version %d", version))
			return nil
		},
	})
	return cmd
}

//Personal.AI order the ending
