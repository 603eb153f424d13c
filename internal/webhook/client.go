// Package webhook redelivers queued webhook payloads to their original
// endpoints and classifies failures for the retry queue.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mirelhq/campaign-insights/internal/domain"
)

const defaultDeliveryTimeout = 10 * time.Second

// Deliverer is the outbound redelivery port.
type Deliverer interface {
	Deliver(ctx context.Context, w domain.FailedWebhook) (*DeliveryResult, error)
}

// DeliveryResult stores the endpoint's reply for audit.
type DeliveryResult struct {
	StatusCode int
	Body       string
}

// Client posts the stored payload back to the failing endpoint.
type Client struct {
	http *resty.Client
}

func NewClient() *Client {
	client := resty.New()
	client.SetTimeout(defaultDeliveryTimeout)
	client.SetRetryCount(0)
	return &Client{http: client}
}

// NewClientWith wraps an existing resty client, for tests and custom transport.
func NewClientWith(client *resty.Client) (*Client, error) {
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultDeliveryTimeout)
	}
	client.SetRetryCount(0)
	return &Client{http: client}, nil
}

func (c *Client) Deliver(ctx context.Context, w domain.FailedWebhook) (*DeliveryResult, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("webhook client is not initialized")
	}

	endpoint := strings.TrimSpace(w.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("webhook endpoint is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid webhook endpoint: %w", err)
	}

	response, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Event-ID", w.EventID).
		SetBody([]byte(w.Payload)).
		Post(endpoint)
	if err != nil {
		return nil, &DeliveryError{
			Message:   "redelivery request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return nil, &DeliveryError{
			Message:   "endpoint returned empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	body := strings.TrimSpace(response.String())

	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return &DeliveryResult{StatusCode: statusCode, Body: body}, nil
	}

	return nil, &DeliveryError{
		StatusCode: statusCode,
		Message:    deliveryErrorMessage(statusCode, body),
		Transient:  isTransientHTTPStatus(statusCode),
	}
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func deliveryErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("endpoint returned status %d", statusCode)
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}

// EndpointHost extracts the host label used for per-endpoint rate limiting.
func EndpointHost(endpoint string) string {
	parsed, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	return strings.ToLower(parsed.Host)
}
