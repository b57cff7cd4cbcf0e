package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paperindex/pkg/errors"
)

// Collector holds all Prometheus metrics for the application. It implements
// ports.LoadMetrics and ports.QueryMetrics.
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Load metrics
	ViewsWritten    prometheus.Counter
	BatchDuration   prometheus.Histogram
	BatchRetries    prometheus.Counter
	PapersSkipped   *prometheus.CounterVec
	LoadRuns        *prometheus.CounterVec
	Denormalization prometheus.Gauge

	// Query metrics
	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	QueryResults  *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ViewsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_written_total",
			Help:      "Total number of view records written",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_write_duration_seconds",
			Help:      "Duration of successful batch writes in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		BatchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_retries_total",
			Help:      "Total number of batch resubmissions",
		}),
		PapersSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "papers_skipped_total",
				Help:      "Papers that could not be projected",
			},
			[]string{"reason"},
		),
		LoadRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_runs_total",
				Help:      "Load runs by outcome",
			},
			[]string{"status"},
		),
		Denormalization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "denormalization_factor",
			Help:      "Views written per paper in the last successful load",
		}),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Queries served by type and outcome",
			},
			[]string{"query_type", "status"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"query_type"},
		),
		QueryResults: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_results",
				Help:      "Number of papers returned per query",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
			},
			[]string{"query_type"},
		),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.ViewsWritten,
		c.BatchDuration,
		c.BatchRetries,
		c.PapersSkipped,
		c.LoadRuns,
		c.Denormalization,
		c.Queries,
		c.QueryDuration,
		c.QueryResults,
	)
	return c
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) BatchWritten(views int, duration time.Duration) {
	c.ViewsWritten.Add(float64(views))
	c.BatchDuration.Observe(duration.Seconds())
}

func (c *Collector) BatchRetried(pending int) {
	c.BatchRetries.Inc()
}

func (c *Collector) PaperSkipped(reason string) {
	c.PapersSkipped.WithLabelValues(reason).Inc()
}

func (c *Collector) RunFinished(success bool, papers, views int, factor float64) {
	status := "success"
	if !success {
		status = "failure"
	}
	c.LoadRuns.WithLabelValues(status).Inc()
	if success {
		c.Denormalization.Set(factor)
	}
}

func (c *Collector) QueryServed(queryType string, results int, duration time.Duration, err error) {
	c.Queries.WithLabelValues(queryType, queryStatus(err)).Inc()
	c.QueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
	if err == nil {
		c.QueryResults.WithLabelValues(queryType).Observe(float64(results))
	}
}

// Middleware records request counts and latency per chi route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func queryStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.IsInvalidQueryParameter(err), errors.IsMissingRequiredField(err):
		return "invalid"
	case errors.IsStoreUnavailable(err):
		return "unavailable"
	default:
		return "error"
	}
}
