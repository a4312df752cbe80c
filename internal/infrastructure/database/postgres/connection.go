package postgres

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/turtacn/KeyIP-Pricing/internal/config"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// sqlOpen is swapped by tests.
var sqlOpen = sql.Open

const (
	pingTimeout = 5 * time.Second
	// poolHotRatio is the in-use share above which HealthCheck warns.
	poolHotRatio = 0.8
)

// Connection owns the lib/pq pool behind the rule store.
type Connection struct {
	db        *sql.DB
	log       logging.Logger
	closeOnce sync.Once
	closeErr  error
}

func orDefault[T int | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

// NewConnection opens the pool, sizes it from cfg and pings the server.
func NewConnection(cfg config.DatabaseConfig, log logging.Logger) (*Connection, error) {
	db, err := sqlOpen("postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to open database connection")
	}

	db.SetMaxOpenConns(orDefault(cfg.MaxConns, config.DefaultDBMaxConns))
	db.SetMaxIdleConns(orDefault(cfg.MaxIdleConns, 10))
	db.SetConnMaxLifetime(orDefault(cfg.ConnMaxLifetime, 30*time.Minute))
	db.SetConnMaxIdleTime(orDefault(cfg.ConnMaxIdleTime, 5*time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed")
	}

	c := NewConnectionWithDB(db, log)
	c.log.Info("postgres connected",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName))
	return c, nil
}

// NewConnectionWithDB wraps an already open pool, typically a sqlmock one.
func NewConnectionWithDB(db *sql.DB, log logging.Logger) *Connection {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Connection{db: db, log: log}
}

func (c *Connection) DB() *sql.DB { return c.db }

func (c *Connection) Stats() sql.DBStats { return c.db.Stats() }

// WithTx commits when fn succeeds and rolls back otherwise, returning fn's
// error untouched.
func (c *Connection) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.log.Error("transaction rollback failed", logging.Err(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit transaction")
	}
	return nil
}

// HealthCheck pings the server. A pool running hot is logged, not failed.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "database health check failed")
	}
	if s := c.db.Stats(); s.OpenConnections > 0 {
		if ratio := float64(s.InUse) / float64(s.OpenConnections); ratio > poolHotRatio {
			c.log.Warn("postgres pool running hot",
				logging.Int("in_use", s.InUse),
				logging.Int("open", s.OpenConnections),
				logging.Float64("ratio", ratio))
		}
	}
	return nil
}

// Close is safe to call more than once.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		if c.closeErr = c.db.Close(); c.closeErr != nil {
			c.log.Error("postgres close failed", logging.Err(c.closeErr))
			return
		}
		c.log.Info("postgres connection closed")
	})
	return c.closeErr
}

//Personal.AI order the ending
