package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	defaultRedeliveryScanInterval = 15 * time.Second
	defaultRedeliveryScanLimit    = defaultRedeliveryBatch
)

// RedeliveryScanner periodically drains the failed-webhook queue of entries
// whose backoff window has elapsed.
type RedeliveryScanner struct {
	recovery *WebhookRecoveryService
	logger   *zap.Logger
	interval time.Duration
	limit    int
}

func NewRedeliveryScanner(
	recovery *WebhookRecoveryService,
	interval time.Duration,
	limit int,
	logger *zap.Logger,
) (*RedeliveryScanner, error) {
	if recovery == nil {
		return nil, fmt.Errorf("webhook recovery service is required")
	}
	if interval <= 0 {
		interval = defaultRedeliveryScanInterval
	}
	if limit <= 0 {
		limit = defaultRedeliveryScanLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedeliveryScanner{
		recovery: recovery,
		logger:   logger,
		interval: interval,
		limit:    limit,
	}, nil
}

func (s *RedeliveryScanner) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run an initial scan so already-due entries do not wait for the first ticker edge.
	if err := s.scan(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("redelivery scanner initial scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.scan(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("redelivery scanner scan failed", zap.Error(err))
			}
		}
	}
}

func (s *RedeliveryScanner) scan(ctx context.Context) error {
	attempted, err := s.recovery.ProcessDue(ctx, s.limit)
	if err != nil {
		return fmt.Errorf("failed to process due webhooks: %w", err)
	}

	if attempted > 0 {
		s.logger.Info("redelivery scan completed", zap.Int("attempted", attempted))
	}
	return nil
}
