package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "rule set is being replaced by another writer")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

// DistributedLock serialises writers across replicas.  A lock value is owned
// by the instance that created it; release and extension check ownership
// atomically.
type DistributedLock interface {
	Lock(ctx context.Context) error
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
	Extend(ctx context.Context, ttl time.Duration) (bool, error)
	TTL(ctx context.Context) (time.Duration, error)
}

type LockFactory interface {
	NewMutex(name string, opts ...LockOption) DistributedLock
}

type LockOption func(*lockSettings)

// WithLockTTL bounds how long a crashed holder can block other writers.
func WithLockTTL(ttl time.Duration) LockOption {
	return func(s *lockSettings) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLockRetry makes Lock try attempts times, pausing delay between tries.
func WithLockRetry(attempts int, delay time.Duration) LockOption {
	return func(s *lockSettings) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if delay > 0 {
			s.delay = delay
		}
	}
}

type lockSettings struct {
	ttl      time.Duration
	attempts int
	delay    time.Duration
}

// Rule replacement is a single transaction, so a short TTL with a few
// seconds of waiting covers it.
var defaultLockSettings = lockSettings{ttl: 15 * time.Second, attempts: 50, delay: 100 * time.Millisecond}

type lockFactory struct {
	client *Client
	log    logging.Logger
}

func NewLockFactory(client *Client, log logging.Logger) LockFactory {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &lockFactory{client: client, log: log}
}

// NewMutex returns a lock on <prefix>lock:<name> with a fresh owner token.
func (f *lockFactory) NewMutex(name string, opts ...LockOption) DistributedLock {
	s := defaultLockSettings
	for _, o := range opts {
		o(&s)
	}
	return &mutex{
		rdb:      f.client,
		key:      f.client.Prefix() + "lock:" + name,
		token:    uuid.NewString(),
		settings: s,
		log:      f.log,
	}
}

type mutex struct {
	rdb      *Client
	key      string
	token    string
	settings lockSettings
	log      logging.Logger
}

// Both scripts return 0 when the key is missing or owned by someone else.
var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then return 0 end
return redis.call("DEL", KEYS[1])`)

	extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then return 0 end
return redis.call("PEXPIRE", KEYS[1], ARGV[2])`)
)

func (m *mutex) Lock(ctx context.Context) error {
	for try := 1; ; try++ {
		ok, err := m.TryLock(ctx)
		switch {
		case err != nil:
			return err
		case ok:
			return nil
		case try >= m.settings.attempts:
			m.log.Warn("lock wait exhausted", logging.String("key", m.key), logging.Int("attempts", try))
			return ErrLockNotAcquired
		}

		if err := sleepCtx(ctx, m.settings.delay); err != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *mutex) TryLock(ctx context.Context) (bool, error) {
	ok, err := m.rdb.SetNX(ctx, m.key, m.token, m.settings.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "acquire lock").WithDetail(m.key)
	}
	return ok, nil
}

func (m *mutex) Unlock(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, m.rdb.Universal(), []string{m.key}, m.token).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "release lock").WithDetail(m.key)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Extend resets the TTL if this owner still holds the lock.
func (m *mutex) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	n, err := extendScript.Run(ctx, m.rdb.Universal(), []string{m.key}, m.token, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "extend lock").WithDetail(m.key)
	}
	return n == 1, nil
}

func (m *mutex) TTL(ctx context.Context) (time.Duration, error) {
	return m.rdb.PTTL(ctx, m.key).Result()
}

//Personal.AI order the ending
