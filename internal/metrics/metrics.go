// Package metrics exposes skill tree activity as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/skilltree/pkg/domain"
)

// Namespace prefixes every metric name.
const Namespace = "skilltree"

// Collector holds all Prometheus metrics for the application.
// Each Collector owns its registry, so several can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	Toggles       *prometheus.CounterVec
	Cascaded      prometheus.Counter
	GraphChanges  *prometheus.CounterVec
	StoreWrites   *prometheus.CounterVec
	LoadFallbacks *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates and registers the metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Toggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "toggles_total",
				Help:      "Node clicks by outcome (selected, deselected, ignored)",
			},
			[]string{"result"},
		),
		Cascaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cascaded_deselections_total",
				Help:      "Dependents deselected because a prerequisite was deselected",
			},
		),
		GraphChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "graph_changes_total",
				Help:      "Skills and edges added to trees",
			},
			[]string{"type"},
		),
		StoreWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "store_writes_total",
				Help:      "Writes to the key/value store by key and result",
			},
			[]string{"key", "result"},
		),
		LoadFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "load_fallbacks_total",
				Help:      "Stored values replaced by the default tree on load",
			},
			[]string{"key"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	c.registry.MustRegister(
		c.Toggles, c.Cascaded, c.GraphChanges, c.StoreWrites, c.LoadFallbacks,
		c.HTTPRequests, c.HTTPDuration,
		collectors.NewGoCollector(),
	)
	return c
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Hooks returns lifecycle hooks that record tree activity. next, if non-nil,
// is called after recording so hooks can be chained.
func (c *Collector) Hooks(next domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnToggle: func(ctx context.Context, e *domain.ToggleEvent) {
			result := "ignored"
			if e.Applied {
				result = "deselected"
				if e.Selected {
					result = "selected"
				}
			}
			c.Toggles.WithLabelValues(result).Inc()
			c.Cascaded.Add(float64(len(e.Cascaded)))
			if next.OnToggle != nil {
				next.OnToggle(ctx, e)
			}
		},
		OnGraphChange: func(ctx context.Context, e *domain.GraphEvent) {
			c.GraphChanges.WithLabelValues(string(e.Type)).Inc()
			if next.OnGraphChange != nil {
				next.OnGraphChange(ctx, e)
			}
		},
		OnSave: func(ctx context.Context, e *domain.StoreEvent) {
			result := "ok"
			if e.Error != nil {
				result = "error"
			}
			c.StoreWrites.WithLabelValues(e.Key, result).Inc()
			if next.OnSave != nil {
				next.OnSave(ctx, e)
			}
		},
		OnLoadFallback: func(ctx context.Context, e *domain.StoreEvent) {
			c.LoadFallbacks.WithLabelValues(e.Key).Inc()
			if next.OnLoadFallback != nil {
				next.OnLoadFallback(ctx, e)
			}
		},
	}
}

// Middleware records request counts and durations by chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush keeps server-sent event streams working through the recorder.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
