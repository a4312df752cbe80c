package handlers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	componentHealthy   = "healthy"
	componentUnhealthy = "unhealthy"
	probeTimeout       = 5 * time.Second
)

// HealthChecker gates readiness on one dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

type namedCheck struct {
	name  string
	check func(ctx context.Context) error
}

func (c namedCheck) Name() string                    { return c.name }
func (c namedCheck) Check(ctx context.Context) error { return c.check(ctx) }

// NewChecker turns a ping method such as (*sql.DB).PingContext into a HealthChecker.
func NewChecker(name string, check func(ctx context.Context) error) HealthChecker {
	return namedCheck{name: name, check: check}
}

// HealthObserver is told the outcome of every component check.
type HealthObserver func(component string, up bool)

type HealthHandler struct {
	checkers []HealthChecker
	version  string
	started  time.Time
	observe  HealthObserver
}

func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers, version: version, started: time.Now()}
}

func (h *HealthHandler) WithObserver(o HealthObserver) *HealthHandler {
	h.observe = o
	return h
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

type ReadinessResponse struct {
	Status     string                    `json:"status"`
	Components map[string]ComponentCheck `json:"components,omitempty"`
}

type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness handles GET /healthz without touching any dependency.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.started).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz and answers 503 when any component is down.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	resp := ReadinessResponse{Status: "ready"}
	code := http.StatusOK
	if len(h.checkers) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()
		resp.Components = h.probe(ctx)
		for _, c := range resp.Components {
			if c.Status != componentHealthy {
				resp.Status, code = "not_ready", http.StatusServiceUnavailable
				break
			}
		}
	}
	writeJSON(w, code, resp)
}

// probe runs every checker in parallel. Check errors are reported per
// component, never through the group.
func (h *HealthHandler) probe(ctx context.Context) map[string]ComponentCheck {
	checks := make([]ComponentCheck, len(h.checkers))
	var g errgroup.Group
	for i, c := range h.checkers {
		i, c := i, c
		g.Go(func() error {
			start := time.Now()
			err := c.Check(ctx)
			checks[i] = ComponentCheck{
				Status:  componentHealthy,
				Latency: time.Since(start).Truncate(time.Microsecond).String(),
			}
			if err != nil {
				checks[i].Status = componentUnhealthy
				checks[i].Error = err.Error()
			}
			if h.observe != nil {
				h.observe(c.Name(), err == nil)
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]ComponentCheck, len(checks))
	for i, c := range h.checkers {
		out[c.Name()] = checks[i]
	}
	return out
}

//Personal.AI order the ending
