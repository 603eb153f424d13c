package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mirelhq/campaign-insights/internal/domain"
)

func TestRedeliveryScannerRunsInitialScan(t *testing.T) {
	t.Parallel()

	var scans atomic.Int64
	repo := &fakeWebhookRepo{
		getDueFn: func(ctx context.Context, limit int) ([]domain.FailedWebhook, error) {
			scans.Add(1)
			return nil, nil
		},
	}

	recovery, err := NewWebhookRecoveryService(repo, &fakeDeliverer{}, &fakeRateLimiter{}, nil)
	if err != nil {
		t.Fatalf("NewWebhookRecoveryService() error = %v", err)
	}

	scanner, err := NewRedeliveryScanner(recovery, time.Hour, 10, nil)
	if err != nil {
		t.Fatalf("NewRedeliveryScanner() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- scanner.Start(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for scans.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial scan never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scanner did not stop after context cancellation")
	}
}

func TestRedeliveryScannerRequiresRecoveryService(t *testing.T) {
	t.Parallel()

	if _, err := NewRedeliveryScanner(nil, time.Second, 10, nil); err == nil {
		t.Fatal("expected error for nil recovery service")
	}
}

func TestRedeliveryScannerDefaults(t *testing.T) {
	t.Parallel()

	recovery, err := NewWebhookRecoveryService(&fakeWebhookRepo{}, &fakeDeliverer{}, &fakeRateLimiter{}, nil)
	if err != nil {
		t.Fatalf("NewWebhookRecoveryService() error = %v", err)
	}

	scanner, err := NewRedeliveryScanner(recovery, 0, 0, nil)
	if err != nil {
		t.Fatalf("NewRedeliveryScanner() error = %v", err)
	}
	if scanner.interval != defaultRedeliveryScanInterval {
		t.Fatalf("interval = %v, want default %v", scanner.interval, defaultRedeliveryScanInterval)
	}
	if scanner.limit != defaultRedeliveryScanLimit {
		t.Fatalf("limit = %d, want default %d", scanner.limit, defaultRedeliveryScanLimit)
	}
}
