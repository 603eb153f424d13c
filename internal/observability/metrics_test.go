package observability

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsDomainCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.IncResponseIngested("INTERESTED")
	metrics.IncConversionRecorded("purchase")
	metrics.IncRedelivery("resolved")
	metrics.ObserveRedeliveryDuration("hooks.example.com", 120*time.Millisecond)
	metrics.IncIngestInFlight()
	metrics.DecIngestInFlight()
	metrics.IncCacheHit("response_summary")
	metrics.IncCacheMiss("roi")

	if got := testutil.ToFloat64(metrics.responsesIngestedTotal.WithLabelValues("interested")); got != 1 {
		t.Fatalf("responses_ingested_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.conversionsRecordedTotal.WithLabelValues("purchase")); got != 1 {
		t.Fatalf("conversions_recorded_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.redeliveriesTotal.WithLabelValues("resolved")); got != 1 {
		t.Fatalf("webhook_redeliveries_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.ingestInflight); got != 0 {
		t.Fatalf("ingest_inflight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(metrics.cacheLookupsTotal.WithLabelValues("response_summary", "hit")); got != 1 {
		t.Fatalf("cache_lookups_total{hit} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.cacheLookupsTotal.WithLabelValues("roi", "miss")); got != 1 {
		t.Fatalf("cache_lookups_total{miss} = %v, want 1", got)
	}
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var metrics *Metrics
	metrics.IncResponseIngested("interested")
	metrics.IncConversionRecorded("purchase")
	metrics.IncRedelivery("exhausted")
	metrics.ObserveRedeliveryDuration("hooks.example.com", time.Second)
	metrics.IncIngestInFlight()
	metrics.DecIngestInFlight()
	metrics.IncCacheHit("roi")
	metrics.IncCacheMiss("roi")
}

func TestMetricsHTTPMiddlewareRecordsRequest(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/livez", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/livez", "200")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsErrorStatus(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	_, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}
