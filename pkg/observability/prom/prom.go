// Package prom implements the observability hooks with Prometheus metrics.
//
//	hooks := prom.New(prometheus.DefaultRegisterer)
//	hooks.Install()
//	http.Handle("/metrics", promhttp.Handler())
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/atlas/pkg/observability"
)

const namespace = "atlas"

// Hooks records layout, cache and HTTP events as Prometheus metrics.
type Hooks struct {
	layoutTotal    *prometheus.CounterVec
	layoutDuration *prometheus.HistogramVec
	layoutNodes    *prometheus.HistogramVec
	layoutInFlight prometheus.Gauge

	cacheRequests *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Hooks {
	f := promauto.With(reg)
	return &Hooks{
		layoutTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_total",
			Help:      "Layout runs by algorithm and result",
		}, []string{"algorithm", "result"}),
		layoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Layout duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}, []string{"algorithm"}),
		layoutNodes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_nodes",
			Help:      "Nodes per layout request",
			Buckets:   []float64{10, 100, 1000, 10000, 100000, 1000000},
		}, []string{"algorithm"}),
		layoutInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layout_in_flight",
			Help:      "Layouts currently running",
		}),
		cacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"key_type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Install registers h as the global layout, cache and server hooks.
func (h *Hooks) Install() {
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
	observability.SetServerHooks(h)
}

func (h *Hooks) OnLayoutStart(_ context.Context, algorithm string, nodeCount int) {
	h.layoutInFlight.Inc()
	h.layoutNodes.WithLabelValues(algorithm).Observe(float64(nodeCount))
}

func (h *Hooks) OnLayoutComplete(_ context.Context, algorithm string, _ int, d time.Duration, err error) {
	h.layoutInFlight.Dec()
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.layoutTotal.WithLabelValues(algorithm, result).Inc()
	h.layoutDuration.WithLabelValues(algorithm).Observe(d.Seconds())
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *Hooks) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.LayoutHooks = (*Hooks)(nil)
	_ observability.CacheHooks  = (*Hooks)(nil)
	_ observability.ServerHooks = (*Hooks)(nil)
)
