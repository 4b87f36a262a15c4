package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sinchai",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sinchai",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sinchai",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Irrigation-specific metrics
	FieldsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sinchai",
		Subsystem: "irrigation",
		Name:      "fields_created_total",
		Help:      "Total fields registered with an accepted boundary",
	})

	FieldsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sinchai",
		Subsystem: "irrigation",
		Name:      "fields_rejected_total",
		Help:      "Total field submissions rejected at validation",
	}, []string{"reason"})

	RecommendationsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sinchai",
		Subsystem: "irrigation",
		Name:      "recommendations_computed_total",
		Help:      "Total irrigation recommendations computed, by outcome status",
	}, []string{"status"})

	WeatherFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sinchai",
		Subsystem: "irrigation",
		Name:      "weather_fetch_duration_seconds",
		Help:      "Duration of upstream forecast fetches",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	WeatherFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sinchai",
		Subsystem: "irrigation",
		Name:      "weather_fetch_errors_total",
		Help:      "Total upstream forecast fetch errors",
	})

	SceneStatsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sinchai",
		Subsystem: "irrigation",
		Name:      "scene_stats_ingested_total",
		Help:      "Total satellite scene summaries ingested",
	}, []string{"collection"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sinchai",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sinchai",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sinchai",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sinchai",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sinchai",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sinchai",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
