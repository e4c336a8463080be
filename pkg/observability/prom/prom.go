// Package prom implements the observability hooks with Prometheus collectors.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/timeslice/pkg/observability"
)

const namespace = "timeslice"

// Metrics holds the collectors and implements every hook interface.
type Metrics struct {
	registry *prometheus.Registry

	AggregateDuration *prometheus.HistogramVec
	AggregateDays     *prometheus.CounterVec
	ChartsTotal       *prometheus.CounterVec
	RenderDuration    *prometheus.HistogramVec
	CacheOps          *prometheus.CounterVec
	CacheBytes        *prometheus.CounterVec
	StoreOps          *prometheus.CounterVec
	StoreDuration     *prometheus.HistogramVec
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	InFlight          prometheus.Gauge
}

// New creates the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		AggregateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregate_duration_seconds",
				Help:      "Time spent summing day records for a period",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		AggregateDays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aggregate_days_total",
				Help:      "Days visited while aggregating",
			},
			[]string{"mode"},
		),
		ChartsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "charts_total",
				Help:      "Chart layouts built, by outcome",
			},
			[]string{"outcome"},
		),
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Time spent rendering chart artifacts",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		CacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Cache lookups and writes",
			},
			[]string{"key_type", "result"},
		),
		CacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_written_bytes_total",
				Help:      "Bytes written to the cache",
			},
			[]string{"key_type"},
		),
		StoreOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Storage backend operations",
			},
			[]string{"backend", "op", "status"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Storage backend operation latency",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"backend", "op"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP API requests served",
			},
			[]string{"method", "route", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP API request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "HTTP API requests currently being served",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AggregateDuration,
		m.AggregateDays,
		m.ChartsTotal,
		m.RenderDuration,
		m.CacheOps,
		m.CacheBytes,
		m.StoreOps,
		m.StoreDuration,
		m.RequestsTotal,
		m.RequestDuration,
		m.InFlight,
	)
	return m
}

// Install registers m as the global hook implementation.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetStoreHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnAggregateStart(context.Context, string) {}

func (m *Metrics) OnAggregateComplete(_ context.Context, mode string, days int, d time.Duration, _ error) {
	m.AggregateDuration.WithLabelValues(mode).Observe(d.Seconds())
	m.AggregateDays.WithLabelValues(mode).Add(float64(days))
}

func (m *Metrics) OnLayoutStart(context.Context, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, _ int, _ time.Duration, empty bool) {
	outcome := "built"
	if empty {
		outcome = "empty"
	}
	m.ChartsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.RenderDuration.WithLabelValues(status(err)).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheOps.WithLabelValues(keyType, "set").Inc()
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnStoreOp(_ context.Context, backend, op string, d time.Duration, err error) {
	m.StoreOps.WithLabelValues(backend, op, status(err)).Inc()
	m.StoreDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.InFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.InFlight.Dec()
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.StoreHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
