package redis

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/KeyIP-Pricing/internal/config"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

var (
	ErrClientClosed     = errors.New(errors.ErrCodeInternal, "redis client is closed")
	ErrConnectionFailed = errors.New(errors.ErrCodeDatabaseError, "redis connection failed")
)

// Client is the go-redis handle shared by the preview cache and the rule set
// lock. Commands issued after Close fail with ErrClientClosed.
type Client struct {
	rdb    redis.UniversalClient
	prefix string
	log    logging.Logger
	closed atomic.Bool
}

func redisOptions(cfg config.RedisConfig) *redis.Options {
	opts := &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   3,
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = 2
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 3 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = opts.ReadTimeout
	}
	return opts
}

// NewClient dials the standalone server in cfg and pings it once.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	opts := redisOptions(cfg)
	c := NewClientWithRDB(redis.NewClient(opts), cfg.KeyPrefix, log)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.rdb.Close()
		return nil, ErrConnectionFailed.WithCause(err)
	}

	c.log.Info("redis connected", logging.String("addr", opts.Addr), logging.Int("db", opts.DB))
	return c, nil
}

// NewClientWithRDB wraps an existing client such as a redismock one.
func NewClientWithRDB(rdb redis.UniversalClient, prefix string, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{rdb: rdb, prefix: prefix, log: log}
}

// Prefix namespaces every key this service writes.
func (c *Client) Prefix() string { return c.prefix }

// Universal exposes the raw client for script runs.
func (c *Client) Universal() redis.UniversalClient { return c.rdb }

func (c *Client) PoolStats() *redis.PoolStats { return c.rdb.PoolStats() }

func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		c.log.Error("redis close failed", logging.Err(err))
		return err
	}
	c.log.Info("redis connection closed")
	return nil
}

// failed marks a command built locally as failing with ErrClientClosed.
func failed[C interface{ SetErr(error) }](cmd C) C {
	cmd.SetErr(ErrClientClosed)
	return cmd
}

func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	if c.closed.Load() {
		return failed(redis.NewStringCmd(ctx))
	}
	return c.rdb.Get(ctx, key)
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	if c.closed.Load() {
		return failed(redis.NewStatusCmd(ctx))
	}
	return c.rdb.Set(ctx, key, value, ttl)
}

func (c *Client) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	if c.closed.Load() {
		return failed(redis.NewBoolCmd(ctx))
	}
	return c.rdb.SetNX(ctx, key, value, ttl)
}

func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if c.closed.Load() {
		return failed(redis.NewIntCmd(ctx))
	}
	return c.rdb.Del(ctx, keys...)
}

func (c *Client) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if c.closed.Load() {
		return failed(redis.NewIntCmd(ctx))
	}
	return c.rdb.Exists(ctx, keys...)
}

func (c *Client) PTTL(ctx context.Context, key string) *redis.DurationCmd {
	if c.closed.Load() {
		return failed(redis.NewDurationCmd(ctx, time.Millisecond))
	}
	return c.rdb.PTTL(ctx, key)
}

func (c *Client) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	if c.closed.Load() {
		return failed(redis.NewScanCmd(ctx, nil))
	}
	return c.rdb.Scan(ctx, cursor, match, count)
}

//Personal.AI order the ending
