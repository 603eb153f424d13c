package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mirelhq/campaign-insights/internal/domain"
)

func queuedWebhook(endpoint string) domain.FailedWebhook {
	return domain.FailedWebhook{
		ID:                "w1",
		EventID:           "evt-42",
		Endpoint:          endpoint,
		Payload:           `{"conversion":"c-1","value":99.5}`,
		Status:            domain.WebhookPending,
		MaxRetries:        5,
		BackoffMultiplier: 2,
		BaseDelaySeconds:  30,
	}
}

func TestClientDeliverSuccess(t *testing.T) {
	t.Parallel()

	var gotEventID string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotEventID = r.Header.Get("X-Event-ID")
		gotBody, _ = io.ReadAll(r.Body)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"received":true}`))
	}))
	defer server.Close()

	client := NewClient()
	result, err := client.Deliver(context.Background(), queuedWebhook(server.URL))
	if err != nil {
		t.Fatalf("Deliver() unexpected error: %v", err)
	}

	if result.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want %d", result.StatusCode, http.StatusOK)
	}
	if gotEventID != "evt-42" {
		t.Fatalf("X-Event-ID = %q, want evt-42", gotEventID)
	}
	if string(gotBody) != `{"conversion":"c-1","value":99.5}` {
		t.Fatalf("body = %s, want original payload", gotBody)
	}
}

func TestClientDeliverStatusClassification(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		statusCode    int
		wantTransient bool
	}{
		{name: "too many requests is transient", statusCode: http.StatusTooManyRequests, wantTransient: true},
		{name: "internal server error is transient", statusCode: http.StatusInternalServerError, wantTransient: true},
		{name: "bad gateway is transient", statusCode: http.StatusBadGateway, wantTransient: true},
		{name: "bad request is permanent", statusCode: http.StatusBadRequest, wantTransient: false},
		{name: "gone is permanent", statusCode: http.StatusGone, wantTransient: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte("endpoint failed"))
			}))
			defer server.Close()

			client := NewClient()
			_, err := client.Deliver(context.Background(), queuedWebhook(server.URL))
			if err == nil {
				t.Fatal("expected error")
			}

			if got := IsTransient(err); got != tc.wantTransient {
				t.Fatalf("IsTransient() = %v, want %v", got, tc.wantTransient)
			}
		})
	}
}

func TestClientDeliverRejectsBadEndpoint(t *testing.T) {
	t.Parallel()

	client := NewClient()

	if _, err := client.Deliver(context.Background(), queuedWebhook("")); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
	if _, err := client.Deliver(context.Background(), queuedWebhook("not a url")); err == nil {
		t.Fatal("expected error for malformed endpoint")
	}
}

func TestEndpointHost(t *testing.T) {
	t.Parallel()

	if got := EndpointHost("https://Hooks.Example.com:8443/v1/orders"); got != "hooks.example.com:8443" {
		t.Fatalf("EndpointHost() = %q", got)
	}
	if got := EndpointHost("::bad::"); got != "unknown" {
		t.Fatalf("EndpointHost() = %q, want unknown", got)
	}
}

func TestIsTransientContextErrors(t *testing.T) {
	t.Parallel()

	if !IsTransient(context.DeadlineExceeded) {
		t.Fatal("deadline exceeded should be transient")
	}
	if IsTransient(context.Canceled) {
		t.Fatal("cancellation should not be transient")
	}
	if IsTransient(nil) {
		t.Fatal("nil error should not be transient")
	}
}
