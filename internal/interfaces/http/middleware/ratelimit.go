package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/time/rate"

	"github.com/turtacn/KeyIP-Pricing/internal/config"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

const defaultLimiterIdleTTL = 10 * time.Minute

// rateLimitSkipPaths are probe and scrape endpoints.
var rateLimitSkipPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client.  A client is its API key
// when one is presented, otherwise its remote address (after RealIP).
type RateLimiter struct {
	rps    rate.Limit
	burst  int
	idle   time.Duration
	logger logging.Logger

	mu       sync.Mutex
	clients  map[string]*clientLimiter
	requests atomic.Int64
	now      func() time.Time
}

// NewRateLimiter returns nil when cfg is disabled; a nil *RateLimiter lets
// every request through.
func NewRateLimiter(cfg config.RateLimitConfig, logger logging.Logger) *RateLimiter {
	if !cfg.Enabled || cfg.RequestsPerSecond <= 0 || cfg.Burst < 1 {
		return nil
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RateLimiter{
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		idle:    defaultLimiterIdleTTL,
		logger:  logger,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

func (l *RateLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// Sweep drops clients idle for longer than the idle TTL.
func (l *RateLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idle)
	n := 0
	for k, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, k)
			n++
		}
	}
	return n
}

// Clients is the number of tracked clients.
func (l *RateLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// clientKey never keeps a raw API key in memory.
func clientKey(r *http.Request) string {
	key := extractBearerToken(r)
	if key == "" {
		key = r.Header.Get("X-API-Key")
	}
	if key != "" {
		return "key:" + strconv.FormatUint(xxhash.Sum64String(key), 16)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// Handler enforces the limit and sets the X-RateLimit headers.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rateLimitSkipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		// amortised cleanup instead of a background goroutine
		if l.requests.Add(1)%1024 == 0 {
			l.Sweep()
		}

		key := clientKey(r)
		lim := l.limiterFor(key)
		now := l.now()
		res := lim.ReserveN(now, 1)
		delay := res.DelayFrom(now)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
		if delay > 0 {
			res.CancelAt(now)
			retry := int(math.Ceil(delay.Seconds()))
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			l.logger.Warn("rate limit exceeded", logging.String("client", key), logging.String("path", r.URL.Path))
			writeTooManyRequests(w)
			return
		}
		remaining := int(lim.TokensAt(now))
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		next.ServeHTTP(w, r)
	})
}

func writeTooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    errors.ErrCodeTooManyRequests.String(),
		"message": "rate limit exceeded, retry later",
	})
}

//Personal.AI order the ending
