package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by API, ingest, and redelivery flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
	responsesIngestedTotal   *prometheus.CounterVec
	conversionsRecordedTotal *prometheus.CounterVec
	redeliveriesTotal        *prometheus.CounterVec
	redeliveryDuration       *prometheus.HistogramVec
	ingestInflight           prometheus.Gauge
	cacheLookupsTotal        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campaign_insights",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "campaign_insights",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		responsesIngestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campaign_insights",
				Name:      "responses_ingested_total",
				Help:      "Total number of inbound campaign responses ingested, by detected intent.",
			},
			[]string{"intent"},
		),
		conversionsRecordedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campaign_insights",
				Name:      "conversions_recorded_total",
				Help:      "Total number of conversion events recorded, by conversion type.",
			},
			[]string{"type"},
		),
		redeliveriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campaign_insights",
				Name:      "webhook_redeliveries_total",
				Help:      "Total number of webhook redelivery attempts grouped by outcome.",
			},
			[]string{"outcome"},
		),
		redeliveryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "campaign_insights",
				Name:      "webhook_redelivery_duration_seconds",
				Help:      "Webhook redelivery request duration in seconds grouped by endpoint host.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"host"},
		),
		ingestInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "campaign_insights",
				Name:      "ingest_inflight",
				Help:      "Current number of in-flight response ingest operations.",
			},
		),
		cacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campaign_insights",
				Name:      "cache_lookups_total",
				Help:      "Total number of analytics cache lookups grouped by resource and result.",
			},
			[]string{"resource", "result"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.responsesIngestedTotal,
		m.conversionsRecordedTotal,
		m.redeliveriesTotal,
		m.redeliveryDuration,
		m.ingestInflight,
		m.cacheLookupsTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncResponseIngested(intent string) {
	if m == nil {
		return
	}
	m.responsesIngestedTotal.WithLabelValues(normalizeLabel(intent)).Inc()
}

func (m *Metrics) IncConversionRecorded(conversionType string) {
	if m == nil {
		return
	}
	m.conversionsRecordedTotal.WithLabelValues(normalizeLabel(conversionType)).Inc()
}

func (m *Metrics) IncRedelivery(outcome string) {
	if m == nil {
		return
	}
	m.redeliveriesTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) ObserveRedeliveryDuration(host string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.redeliveryDuration.WithLabelValues(normalizeLabel(host)).Observe(seconds)
}

func (m *Metrics) IncIngestInFlight() {
	if m == nil {
		return
	}
	m.ingestInflight.Inc()
}

func (m *Metrics) DecIngestInFlight() {
	if m == nil {
		return
	}
	m.ingestInflight.Dec()
}

func (m *Metrics) IncCacheHit(resource string) {
	if m == nil {
		return
	}
	m.cacheLookupsTotal.WithLabelValues(normalizeLabel(resource), "hit").Inc()
}

func (m *Metrics) IncCacheMiss(resource string) {
	if m == nil {
		return
	}
	m.cacheLookupsTotal.WithLabelValues(normalizeLabel(resource), "miss").Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
