// Package metrics implements the observability hooks with Prometheus
// collectors on a private registry.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/pkgtrack/pkg/errors"
	"github.com/matzehuels/pkgtrack/pkg/observability"
)

const namespace = "pkgtrack"

// Metrics holds the collectors. It implements observability.FetchHooks,
// observability.CacheHooks and observability.HTTPHooks.
type Metrics struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	coalesced     *prometheus.CounterVec

	cacheLookups *prometheus.CounterVec
	cacheBytes   *prometheus.CounterVec

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Provider dispatches by source and outcome code.",
		}, []string{"source", "code"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Provider dispatch latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		coalesced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_coalesced_total",
			Help:      "Callers that joined an in-flight request.",
		}, []string{"source"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Coordinator cache lookups by result.",
		}, []string{"source", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the backing cache.",
		}, []string{"source"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream HTTP responses by host and status.",
		}, []string{"host", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream HTTP latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Upstream HTTP transport failures.",
		}, []string{"host"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetches, m.fetchDuration, m.coalesced,
		m.cacheLookups, m.cacheBytes,
		m.upstreamRequests, m.upstreamDuration, m.upstreamErrors,
	)
	return m
}

// Register installs m as the process-wide hooks.
func (m *Metrics) Register() {
	observability.SetFetchHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (m *Metrics) OnFetchStart(context.Context, string, string) {}

func (m *Metrics) OnFetchComplete(_ context.Context, source, _ string, d time.Duration, err error) {
	code := "ok"
	if err != nil {
		code = string(errors.GetCode(err))
		if code == "" {
			code = "unknown"
		}
	}
	m.fetches.WithLabelValues(source, code).Inc()
	m.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) OnCoalesced(_ context.Context, source, _ string) {
	m.coalesced.WithLabelValues(source).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, source string) {
	m.cacheLookups.WithLabelValues(source, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, source string) {
	m.cacheLookups.WithLabelValues(source, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, source string, size int) {
	m.cacheBytes.WithLabelValues(source).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.upstreamRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.upstreamDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.upstreamErrors.WithLabelValues(host).Inc()
}

var (
	_ observability.FetchHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)
