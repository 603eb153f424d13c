package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/observability"
	"github.com/mirelhq/campaign-insights/internal/ratelimit"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"github.com/mirelhq/campaign-insights/internal/result"
	"github.com/mirelhq/campaign-insights/internal/webhook"
	"go.uber.org/zap"
)

const defaultRedeliveryBatch = 50

// FailedWebhookInput is the raw submission for a delivery that bounced.
type FailedWebhookInput struct {
	EventID           string
	Endpoint          string
	Payload           string
	MaxRetries        int
	BackoffMultiplier float64
	BaseDelaySeconds  int
	LastError         string
}

type WebhookRecoveryService struct {
	webhooks    repository.WebhookRepository
	deliverer   webhook.Deliverer
	rateLimiter ratelimit.RateLimiter
	logger      *zap.Logger
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewWebhookRecoveryService(
	webhooks repository.WebhookRepository,
	deliverer webhook.Deliverer,
	rateLimiter ratelimit.RateLimiter,
	logger *zap.Logger,
) (*WebhookRecoveryService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WebhookRecoveryService{
		webhooks:    webhooks,
		deliverer:   deliverer,
		rateLimiter: rateLimiter,
		logger:      logger,
		now:         time.Now,
	}, nil
}

func (s *WebhookRecoveryService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Enqueue registers a bounced delivery for backoff redelivery. Re-submitting
// the same event id is rejected so providers retrying their own callbacks do
// not multiply queue entries.
func (s *WebhookRecoveryService) Enqueue(ctx context.Context, input FailedWebhookInput) result.Result[domain.FailedWebhook] {
	if ctx == nil {
		ctx = context.Background()
	}

	hook := domain.FailedWebhook{
		ID:                uuid.NewString(),
		EventID:           strings.TrimSpace(input.EventID),
		Endpoint:          strings.TrimSpace(input.Endpoint),
		Payload:           input.Payload,
		Status:            domain.WebhookPending,
		RetryCount:        0,
		MaxRetries:        input.MaxRetries,
		BackoffMultiplier: input.BackoffMultiplier,
		BaseDelaySeconds:  input.BaseDelaySeconds,
	}
	if hook.MaxRetries <= 0 {
		hook.MaxRetries = domain.DefaultWebhookMaxRetries
	}
	if hook.BackoffMultiplier <= 0 {
		hook.BackoffMultiplier = domain.DefaultWebhookBackoffMultiplier
	}
	if hook.BaseDelaySeconds <= 0 {
		hook.BaseDelaySeconds = int(domain.DefaultWebhookBaseDelay / time.Second)
	}
	if lastErr := strings.TrimSpace(input.LastError); lastErr != "" {
		hook.LastError = &lastErr
	}

	if err := hook.Validate(); err != nil {
		return result.Failure[domain.FailedWebhook](result.CodeValidation, err.Error())
	}

	// First attempt waits one base delay rather than firing immediately;
	// the receiving endpoint just failed.
	nextRetryAt := s.now().UTC().Add(hook.RetryDelay())
	hook.NextRetryAt = &nextRetryAt

	if err := s.webhooks.Create(ctx, &hook); err != nil {
		if isDuplicateKeyError(err) {
			return result.Failuref[domain.FailedWebhook](result.CodeDuplicateEvent,
				"event %s is already queued for redelivery", hook.EventID)
		}
		return result.Failuref[domain.FailedWebhook](result.CodeDatabase, "failed to store failed webhook: %v", err)
	}

	return result.Success(hook)
}

func (s *WebhookRecoveryService) Get(ctx context.Context, id string) result.Result[domain.FailedWebhook] {
	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return result.Failure[domain.FailedWebhook](result.CodeValidation, "webhook id is required")
	}

	hook, err := s.webhooks.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return result.Failuref[domain.FailedWebhook](result.CodeNotFound, "failed webhook %s not found", id)
	}
	if err != nil {
		return result.Failuref[domain.FailedWebhook](result.CodeDatabase, "failed to load failed webhook: %v", err)
	}

	return result.Success(*hook)
}

func (s *WebhookRecoveryService) List(ctx context.Context, status string, page, pageSize int) result.PagedResult[domain.FailedWebhook] {
	if ctx == nil {
		ctx = context.Background()
	}

	var filter *domain.WebhookStatus
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		parsed := domain.WebhookStatus(strings.ToUpper(trimmed))
		if !parsed.IsValid() {
			return result.PagedFailure[domain.FailedWebhook](result.CodeInvalidType, "unknown webhook status "+trimmed)
		}
		filter = &parsed
	}

	hooks, total, err := s.webhooks.List(ctx, filter, page, pageSize)
	if err != nil {
		return result.PagedFailure[domain.FailedWebhook](result.CodeDatabase, "failed to list failed webhooks")
	}

	return result.PagedSuccess(hooks, page, pageSize, total)
}

// Resolve manually closes a pending entry, for operators who fixed the
// receiving endpoint out of band.
func (s *WebhookRecoveryService) Resolve(ctx context.Context, id string) result.Result[domain.FailedWebhook] {
	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return result.Failure[domain.FailedWebhook](result.CodeValidation, "webhook id is required")
	}

	if err := s.webhooks.MarkResolved(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return result.Failuref[domain.FailedWebhook](result.CodeNotFound, "failed webhook %s not found", id)
		}
		if errors.Is(err, domain.ErrConflict) {
			return result.Failuref[domain.FailedWebhook](result.CodeValidation, "failed webhook %s is not pending", id)
		}
		return result.Failuref[domain.FailedWebhook](result.CodeDatabase, "failed to resolve webhook: %v", err)
	}

	return s.Get(ctx, id)
}

// ProcessDue redelivers every entry whose backoff window has elapsed and
// reports how many were attempted. Outcomes per entry: resolved on 2xx,
// rescheduled on a transient error with budget left, exhausted otherwise.
func (s *WebhookRecoveryService) ProcessDue(ctx context.Context, limit int) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = defaultRedeliveryBatch
	}

	due, err := s.webhooks.GetDue(ctx, limit)
	if err != nil {
		return 0, err
	}

	attempted := 0
	for i := range due {
		if ctx.Err() != nil {
			return attempted, nil
		}
		if err := s.redeliver(ctx, due[i]); err != nil {
			s.logger.Error("redelivery attempt failed",
				zap.String("webhookId", due[i].ID),
				zap.String("eventId", due[i].EventID),
				zap.Error(err),
			)
			continue
		}
		attempted++
	}

	return attempted, nil
}

func (s *WebhookRecoveryService) redeliver(ctx context.Context, hook domain.FailedWebhook) error {
	ctx = observability.WithCorrelationID(ctx, hook.EventID)
	logger := observability.WithContextLogger(s.logger, ctx)

	host := webhook.EndpointHost(hook.Endpoint)
	if s.rateLimiter != nil {
		if err := s.rateLimiter.Wait(ctx, host); err != nil {
			return err
		}
	}

	start := s.now()
	_, deliverErr := s.deliverer.Deliver(ctx, hook)
	s.metrics.ObserveRedeliveryDuration(host, s.now().Sub(start))

	if deliverErr == nil {
		if err := s.webhooks.MarkResolved(ctx, hook.ID, s.now().UTC()); err != nil && !errors.Is(err, domain.ErrConflict) {
			return err
		}
		s.metrics.IncRedelivery("resolved")
		logger.Info("webhook redelivered",
			zap.String("webhookId", hook.ID),
			zap.String("eventId", hook.EventID),
			zap.Int("attempts", hook.RetryCount+1),
		)
		return nil
	}

	lastError := deliverErr.Error()
	hook.RetryCount++

	if hook.Exhausted() || !webhook.IsTransient(deliverErr) {
		if err := s.webhooks.RecordAttempt(ctx, hook.ID, domain.WebhookExhausted, hook.RetryCount, nil, &lastError); err != nil {
			return err
		}
		s.metrics.IncRedelivery("exhausted")
		logger.Warn("webhook redelivery abandoned",
			zap.String("webhookId", hook.ID),
			zap.String("eventId", hook.EventID),
			zap.Int("attempts", hook.RetryCount),
			zap.Bool("transient", webhook.IsTransient(deliverErr)),
			zap.String("lastError", lastError),
		)
		return nil
	}

	nextRetryAt := s.now().UTC().Add(hook.RetryDelay())
	if err := s.webhooks.RecordAttempt(ctx, hook.ID, domain.WebhookPending, hook.RetryCount, &nextRetryAt, &lastError); err != nil {
		return err
	}
	s.metrics.IncRedelivery("rescheduled")
	logger.Info("webhook redelivery rescheduled",
		zap.String("webhookId", hook.ID),
		zap.String("eventId", hook.EventID),
		zap.Int("retryCount", hook.RetryCount),
		zap.Time("nextRetryAt", nextRetryAt),
	)
	return nil
}
