// Package postgres holds the PostgreSQL rule store plumbing: the connection
// pool and golang-migrate based schema management.  The pricectl migrate
// commands drive the functions in this file; the API server applies pending
// migrations at startup when database.auto_migrate is set.
package postgres

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/turtacn/KeyIP-Pricing/internal/config"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
)

// MigrationURL renders cfg in the URL form golang-migrate expects.
func MigrationURL(cfg config.DatabaseConfig) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     cfg.DBName,
		RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
	}
	return u.String()
}

func sourceURL(dir string) string {
	if u, err := url.Parse(dir); err == nil && u.Scheme != "" {
		return dir
	}
	return "file://" + dir
}

// RunMigrations applies pending migrations over the already open pool.
func (c *Connection) RunMigrations(dir string) error {
	driver, err := postgres.WithInstance(c.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(sourceURL(dir), "postgres", driver)
	if err != nil {
		return fmt.Errorf("open migrations at %s: %w", dir, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		c.log.Warn("schema version unreadable", logging.Err(err))
	}
	c.log.Info("schema migrated", logging.Int64("version", int64(version)), logging.Bool("dirty", dirty))
	return nil
}

// withMigrator opens a standalone migrate instance for one command and
// closes it afterwards.  dir may be a bare directory or a source URL.
func withMigrator(dbURL, dir string, fn func(*migrate.Migrate) error) error {
	m, err := migrate.New(sourceURL(dir), dbURL)
	if err != nil {
		return fmt.Errorf("open migrations at %s: %w", dir, err)
	}
	defer m.Close()
	return fn(m)
}

// RunMigrations brings the rule store schema to the newest version.
// Nothing pending is success.
func RunMigrations(dbURL, dir string) error {
	return withMigrator(dbURL, dir, func(m *migrate.Migrate) error {
		err := m.Up()
		if err == nil || errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	})
}

// RollbackMigration undoes the last steps migrations.
func RollbackMigration(dbURL, dir string, steps int) error {
	if steps < 1 {
		return fmt.Errorf("rollback needs at least one step, got %d", steps)
	}
	return withMigrator(dbURL, dir, func(m *migrate.Migrate) error {
		switch err := m.Steps(-steps); {
		case err == nil:
			return nil
		case errors.Is(err, migrate.ErrNoChange):
			return fmt.Errorf("schema has no applied migrations")
		default:
			return fmt.Errorf("roll back %d step(s): %w", steps, err)
		}
	})
}

// MigrationStatus reports the applied version (0 on an empty database) and
// the dirty flag left by a failed run.
func MigrationStatus(dbURL, dir string) (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)
	err := withMigrator(dbURL, dir, func(m *migrate.Migrate) error {
		v, d, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			return nil
		case err != nil:
			return fmt.Errorf("read schema version: %w", err)
		}
		version, dirty = v, d
		return nil
	})
	return version, dirty, err
}

// ForceMigrationVersion marks version as applied and clears the dirty flag
// without running any migration.  -1 resets to an empty schema history.
func ForceMigrationVersion(dbURL, dir string, version int) error {
	return withMigrator(dbURL, dir, func(m *migrate.Migrate) error {
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force schema version %d: %w", version, err)
		}
		return nil
	})
}

//Personal.AI order the ending
