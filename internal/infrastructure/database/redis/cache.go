package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "cached value could not be encoded")
)

const scanBatch = 100

// Cache stores JSON values under the client's key prefix.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// GetOrSet fills dest from the cache or from load, storing what load
	// returns.  Concurrent misses on one key run load once.
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func(ctx context.Context) (interface{}, error)) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
	Ping(ctx context.Context) error
}

type CacheOption func(*redisCache)

// WithDefaultTTL applies when Set or GetOrSet is given a zero TTL.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

// WithoutJitter stores entries with their exact TTL.
func WithoutJitter() CacheOption {
	return func(c *redisCache) { c.jitter = func(d time.Duration) time.Duration { return d } }
}

type redisCache struct {
	client     *Client
	logger     logging.Logger
	defaultTTL time.Duration
	jitter     func(time.Duration) time.Duration
	loads      singleflight.Group
}

func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &redisCache{client: client, logger: log, defaultTTL: 15 * time.Minute, jitter: jitterTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) key(k string) string { return c.client.Prefix() + k }

// jitterTTL moves expiry by up to 10% either way so rule sets cached in the
// same burst do not all expire together.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	spread := int64(ttl / 10)
	if spread == 0 {
		return ttl
	}
	return ttl - time.Duration(spread) + time.Duration(rand.Int63n(2*spread+1))
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	switch {
	case stderrors.Is(err, redis.Nil):
		return ErrCacheMiss
	case err != nil:
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache read").WithDetail(key)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return ErrSerializationFailed.WithCause(err).WithDetail(key)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err).WithDetail(key)
	}
	return c.setRaw(ctx, key, raw, ttl)
}

func (c *redisCache) setRaw(ctx context.Context, key string, raw []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.key(key), raw, c.jitter(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache write").WithDetail(key)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache delete")
	}
	return nil
}

// GetOrSet treats a failing Redis like a miss: the value is loaded from the
// source and the failed write is only logged.
func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func(ctx context.Context) (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if err != ErrCacheMiss {
		c.logger.Warn("cache read failed, loading from source", logging.String("key", key), logging.Err(err))
	}

	shared, err, _ := c.loads.Do(key, func() (interface{}, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, ErrSerializationFailed.WithCause(err).WithDetail(key)
		}
		if err := c.setRaw(ctx, key, raw, ttl); err != nil {
			c.logger.Warn("cache fill failed", logging.String("key", key), logging.Err(err))
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	// each waiter decodes its own copy
	return json.Unmarshal(shared.([]byte), dest)
}

// DeleteByPrefix removes every key under prefix.  Keys are collected with
// SCAN first so the keyspace is never blocked by KEYS.
func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var keys []string
	it := c.client.Scan(ctx, 0, c.key(prefix)+"*", scanBatch).Iterator()
	for it.Next(ctx) {
		keys = append(keys, it.Val())
	}
	if err := it.Err(); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeCacheError, "cache scan").WithDetail(prefix)
	}

	var deleted int64
	for start := 0; start < len(keys); start += scanBatch {
		end := start + scanBatch
		if end > len(keys) {
			end = len(keys)
		}
		n, err := c.client.Del(ctx, keys[start:end]...).Result()
		deleted += n
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "cache delete").WithDetail(prefix)
		}
	}
	return deleted, nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

//Personal.AI order the ending
