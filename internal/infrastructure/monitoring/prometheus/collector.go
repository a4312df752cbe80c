// Package prometheus exposes the service's metrics through a private
// Prometheus registry.  Components receive narrow vector interfaces so that a
// failed registration degrades to no-op metrics instead of a panic.
package prometheus

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
)

// MetricsCollector registers metric vectors and serves the registry.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Handler() http.Handler
}

type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

type Counter interface {
	Inc()
	Add(delta float64)
}

type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
}

type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

type Histogram interface {
	Observe(value float64)
}

// CollectorConfig names the metric family prefix.  Every metric is
// <namespace>_<subsystem>_<name>; subsystem may be empty.
type CollectorConfig struct {
	Namespace            string
	Subsystem            string
	EnableProcessMetrics bool
	EnableGoMetrics      bool
}

type registry struct {
	reg    *prometheus.Registry
	cfg    CollectorConfig
	logger logging.Logger

	mu   sync.Mutex
	vecs map[string]prometheus.Collector
}

// NewMetricsCollector creates a collector backed by a fresh registry, so
// tests and embedded servers never collide on the global one.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("metrics: namespace is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	reg := prometheus.NewRegistry()
	if cfg.EnableProcessMetrics {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: cfg.Namespace}))
	}
	if cfg.EnableGoMetrics {
		reg.MustRegister(collectors.NewGoCollector())
	}
	return &registry{reg: reg, cfg: cfg, logger: logger, vecs: make(map[string]prometheus.Collector)}, nil
}

func (r *registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// getOrRegister returns the vector already registered under name, or
// registers fresh.  ok is false when registration fails or name is taken by
// another metric type.
func getOrRegister[V prometheus.Collector](r *registry, kind, name string, fresh V) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fq := prometheus.BuildFQName(r.cfg.Namespace, r.cfg.Subsystem, name)
	if existing, found := r.vecs[fq]; found {
		v, ok := existing.(V)
		if !ok {
			r.logger.Warn("metric type mismatch", logging.String("name", fq), logging.String("type", kind))
		}
		return v, ok
	}
	if err := r.reg.Register(fresh); err != nil {
		r.logger.Error("failed to register metric", logging.String("name", fq), logging.String("type", kind), logging.Err(err))
		var zero V
		return zero, false
	}
	r.vecs[fq] = fresh
	return fresh, true
}

func (r *registry) RegisterCounter(name, help string, labels ...string) CounterVec {
	vec, ok := getOrRegister(r, "counter", name, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.cfg.Namespace, Subsystem: r.cfg.Subsystem, Name: name, Help: help,
	}, labels))
	if !ok {
		return noopCounterVec{}
	}
	return counterVec{vec}
}

func (r *registry) RegisterGauge(name, help string, labels ...string) GaugeVec {
	vec, ok := getOrRegister(r, "gauge", name, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.cfg.Namespace, Subsystem: r.cfg.Subsystem, Name: name, Help: help,
	}, labels))
	if !ok {
		return noopGaugeVec{}
	}
	return gaugeVec{vec}
}

// RegisterHistogram uses prometheus.DefBuckets when buckets is nil.
func (r *registry) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	vec, ok := getOrRegister(r, "histogram", name, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.cfg.Namespace, Subsystem: r.cfg.Subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels))
	if !ok {
		return noopHistogramVec{}
	}
	return histogramVec{vec}
}

type counterVec struct{ *prometheus.CounterVec }

func (v counterVec) WithLabelValues(lvs ...string) Counter { return v.CounterVec.WithLabelValues(lvs...) }

type gaugeVec struct{ *prometheus.GaugeVec }

func (v gaugeVec) WithLabelValues(lvs ...string) Gauge { return v.GaugeVec.WithLabelValues(lvs...) }

type histogramVec struct{ *prometheus.HistogramVec }

func (v histogramVec) WithLabelValues(lvs ...string) Histogram {
	return v.HistogramVec.WithLabelValues(lvs...)
}

// Registration failures fall back to these.
type (
	noopCounterVec   struct{}
	noopGaugeVec     struct{}
	noopHistogramVec struct{}
	noopMetric       struct{}
)

func (noopCounterVec) WithLabelValues(...string) Counter     { return noopMetric{} }
func (noopGaugeVec) WithLabelValues(...string) Gauge         { return noopMetric{} }
func (noopHistogramVec) WithLabelValues(...string) Histogram { return noopMetric{} }

func (noopMetric) Inc()            {}
func (noopMetric) Dec()            {}
func (noopMetric) Add(float64)     {}
func (noopMetric) Set(float64)     {}
func (noopMetric) Observe(float64) {}

//Personal.AI order the ending
