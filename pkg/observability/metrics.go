package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements every hook interface with Prometheus collectors held
// in a private registry.
type Metrics struct {
	registry *prometheus.Registry

	clusterRuns     *prometheus.CounterVec
	clusterDuration prometheus.Histogram
	clusterItems    prometheus.Counter
	clusterMerges   prometheus.Counter
	clusterProgress prometheus.Gauge

	reads          *prometheus.CounterVec
	readEdges      prometheus.Counter
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
	httpErrors   *prometheus.CounterVec
}

// NewMetrics creates the collectors under namespace, plus the Go runtime and
// process collectors.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		clusterRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_runs_total",
			Help:      "Clustering runs by outcome.",
		}, []string{"status"}),
		clusterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_duration_seconds",
			Help:      "Duration of clustering runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		clusterItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_edges_total",
			Help:      "Edges clustered.",
		}),
		clusterMerges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_merges_total",
			Help:      "Merges produced by clustering.",
		}),
		clusterProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cluster_progress_ratio",
			Help:      "Fraction of the latest clustering run already done.",
		}),

		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reads_total",
			Help:      "Edge lists read by outcome.",
		}, []string{"status"}),
		readEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_edges_total",
			Help:      "Edges read from edge lists.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Artifacts rendered by format and outcome.",
		}, []string{"format", "status"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of artifact rendering.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),

		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests being served.",
		}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Failed HTTP requests by route.",
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.clusterRuns, m.clusterDuration, m.clusterItems, m.clusterMerges, m.clusterProgress,
		m.reads, m.readEdges, m.renders, m.renderDuration,
		m.cacheOps, m.cacheBytes,
		m.httpRequests, m.httpDuration, m.httpInFlight, m.httpErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Install registers m as the cluster, pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	Register(Hooks{Cluster: m, Pipeline: m, Cache: m, HTTP: m})
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the collected metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnClusterStart(context.Context, int) {
	m.clusterProgress.Set(0)
}

func (m *Metrics) OnClusterProgress(_ context.Context, done, total int, _ time.Duration) {
	if total > 0 {
		m.clusterProgress.Set(float64(done) / float64(total))
	}
}

func (m *Metrics) OnClusterComplete(_ context.Context, items, merges int, d time.Duration, err error) {
	m.clusterRuns.WithLabelValues(status(err)).Inc()
	m.clusterDuration.Observe(d.Seconds())
	if err == nil {
		m.clusterItems.Add(float64(items))
		m.clusterMerges.Add(float64(merges))
		m.clusterProgress.Set(1)
	}
}

func (m *Metrics) OnReadComplete(_ context.Context, _ string, edges int, _ time.Duration, err error) {
	m.reads.WithLabelValues(status(err)).Inc()
	if err == nil {
		m.readEdges.Add(float64(edges))
	}
}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	m.renders.WithLabelValues(format, status(err)).Inc()
	m.renderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {
	m.httpInFlight.Inc()
}

// OnResponse expects path to be the matched route pattern, not the raw URL
// path, to keep label cardinality bounded.
func (m *Metrics) OnResponse(_ context.Context, _, method, path string, statusCode int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, method, path string, _ error) {
	m.httpErrors.WithLabelValues(method, path).Inc()
}

var (
	_ ClusterHooks  = (*Metrics)(nil)
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)
