package domain

import (
	"fmt"
	"strings"
	"time"
)

// WebhookStatus is the retry-queue state of a failed delivery.
type WebhookStatus string

const (
	WebhookPending   WebhookStatus = "PENDING"
	WebhookResolved  WebhookStatus = "RESOLVED"
	WebhookExhausted WebhookStatus = "EXHAUSTED"
)

func (s WebhookStatus) String() string { return string(s) }

func (s WebhookStatus) IsValid() bool {
	switch s {
	case WebhookPending, WebhookResolved, WebhookExhausted:
		return true
	}
	return false
}

// Retry-queue defaults and the ceiling applied to computed backoff delays.
const (
	DefaultWebhookMaxRetries        = 5
	DefaultWebhookBackoffMultiplier = 2.0
	DefaultWebhookBaseDelay         = 30 * time.Second
	MaxWebhookRetryDelay            = time.Hour
)

// FailedWebhook is a failed outbound delivery queued for redelivery
// with exponential backoff.
type FailedWebhook struct {
	ID                string `gorm:"type:uuid;primaryKey"`
	EventID           string `gorm:"type:varchar(255);not null"`
	Endpoint          string `gorm:"type:text;not null"`
	Payload           string `gorm:"type:text;not null"`
	Status            WebhookStatus
	RetryCount        int
	MaxRetries        int
	BackoffMultiplier float64
	BaseDelaySeconds  int
	NextRetryAt       *time.Time
	LastError         *string
	ResolvedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (w *FailedWebhook) Validate() error {
	if strings.TrimSpace(w.EventID) == "" {
		return fmt.Errorf("%w: event id is required", ErrValidation)
	}
	if strings.TrimSpace(w.Endpoint) == "" {
		return fmt.Errorf("%w: endpoint is required", ErrValidation)
	}
	if !w.Status.IsValid() {
		return fmt.Errorf("%w: invalid webhook status %q", ErrValidation, w.Status)
	}
	if w.MaxRetries < 1 {
		return fmt.Errorf("%w: max retries must be at least 1", ErrValidation)
	}
	if w.RetryCount < 0 || w.RetryCount > w.MaxRetries {
		return fmt.Errorf("%w: retry count %d out of range [0, %d]", ErrValidation, w.RetryCount, w.MaxRetries)
	}
	if w.BackoffMultiplier <= 1 {
		return fmt.Errorf("%w: backoff multiplier must be greater than 1", ErrValidation)
	}
	if w.BaseDelaySeconds < 1 {
		return fmt.Errorf("%w: base delay must be at least 1 second", ErrValidation)
	}
	return nil
}

// RetryDelay computes the backoff before the next attempt:
// base_delay * multiplier^retry_count, capped at MaxWebhookRetryDelay.
func (w *FailedWebhook) RetryDelay() time.Duration {
	delay := time.Duration(w.BaseDelaySeconds) * time.Second
	for i := 0; i < w.RetryCount; i++ {
		delay = time.Duration(float64(delay) * w.BackoffMultiplier)
		if delay >= MaxWebhookRetryDelay {
			return MaxWebhookRetryDelay
		}
	}
	if delay > MaxWebhookRetryDelay {
		delay = MaxWebhookRetryDelay
	}
	return delay
}

// Exhausted reports whether the retry budget is spent.
func (w *FailedWebhook) Exhausted() bool {
	return w.RetryCount >= w.MaxRetries
}
