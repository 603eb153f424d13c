package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mirelhq/campaign-insights/internal/cache"
	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/observability"
	"github.com/mirelhq/campaign-insights/internal/queue"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"github.com/mirelhq/campaign-insights/internal/sentiment"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const minIngestConcurrency = 1

// IngestWorker consumes inbound reply events, classifies them, and records
// the response, the membership transition, and the engagement touch.
type IngestWorker struct {
	responses   repository.ResponseRepository
	memberships repository.MembershipRepository
	engagements repository.EngagementRepository
	consumer    queue.Consumer
	analyzer    *sentiment.Analyzer
	analytics   *cache.Cache
	logger      *zap.Logger
	metrics     *observability.Metrics
	concurrency int
	now         func() time.Time
}

func NewIngestWorker(
	responses repository.ResponseRepository,
	memberships repository.MembershipRepository,
	engagements repository.EngagementRepository,
	consumer queue.Consumer,
	analyzer *sentiment.Analyzer,
	analytics *cache.Cache,
	concurrency int,
	logger *zap.Logger,
) (*IngestWorker, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("sentiment analyzer is required")
	}
	if concurrency < minIngestConcurrency {
		concurrency = minIngestConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &IngestWorker{
		responses:   responses,
		memberships: memberships,
		engagements: engagements,
		consumer:    consumer,
		analyzer:    analyzer,
		analytics:   analytics,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}, nil
}

func (w *IngestWorker) SetMetrics(metrics *observability.Metrics) {
	if w == nil {
		return
	}
	w.metrics = metrics
}

// Start consumes the response queue until context cancellation.
func (w *IngestWorker) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		workerID := i + 1

		g.Go(func() error {
			w.logger.Info("ingest worker started", zap.Int("workerId", workerID))

			err := w.consumer.Consume(groupCtx, w.processMessage)
			if err != nil {
				w.logger.Error("ingest worker stopped with error",
					zap.Int("workerId", workerID),
					zap.Error(err),
				)
				return err
			}

			w.logger.Info("ingest worker stopped", zap.Int("workerId", workerID))
			return nil
		})
	}

	return g.Wait()
}

func (w *IngestWorker) processMessage(ctx context.Context, msg queue.ResponseMessage) error {
	w.metrics.IncIngestInFlight()
	defer w.metrics.DecIngestInFlight()

	// Carry the correlation id stamped at the API edge through the worker's
	// context and log entries.
	ctx = observability.WithCorrelationID(ctx, msg.CorrelationID)
	logger := observability.WithContextLogger(w.logger, ctx)

	membership, err := w.memberships.GetByContactAndCampaign(ctx, msg.ContactID, msg.CampaignID)
	if errors.Is(err, domain.ErrNotFound) {
		// A reply from a contact who was never on the campaign is not
		// retryable; ack and move on.
		logger.Warn("reply for unknown membership, skipping",
			zap.String("eventId", msg.EventID),
			zap.String("contactId", msg.ContactID),
			zap.String("campaignId", msg.CampaignID),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load membership: %w", err)
	}

	analysis := w.analyzer.Analyze(msg.Body)

	response := domain.CampaignResponse{
		ID:         uuid.NewString(),
		CampaignID: msg.CampaignID,
		ContactID:  msg.ContactID,
		Body:       strings.TrimSpace(msg.Body),
		Sentiment:  analysis.Sentiment,
		Intent:     analysis.Intent,
		ReceivedAt: msg.ReceivedAt,
	}
	if membership.SentAt != nil && msg.ReceivedAt.After(*membership.SentAt) {
		response.ResponseSeconds = msg.ReceivedAt.Sub(*membership.SentAt).Seconds()
	}

	if err := w.responses.Create(ctx, &response); err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}

	// Only the first reply transitions the membership; later replies just
	// accumulate as responses.
	if err := w.memberships.MarkReplied(ctx, membership.ID, msg.ReceivedAt, analysis.Sentiment); err != nil && !errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("failed to mark membership replied: %w", err)
	}

	campaignID := msg.CampaignID
	engagement := domain.EngagementEvent{
		ID:         uuid.NewString(),
		ContactID:  msg.ContactID,
		CampaignID: &campaignID,
		Type:       domain.EngagementReply,
		OccurredAt: msg.ReceivedAt,
	}
	if err := w.engagements.CreateEvent(ctx, &engagement); err != nil {
		logger.Warn("failed to store engagement event for reply",
			zap.String("eventId", msg.EventID),
			zap.String("contactId", msg.ContactID),
			zap.Error(err),
		)
	}

	w.invalidateSummary(ctx, msg.CampaignID)
	w.metrics.IncResponseIngested(analysis.Intent.String())

	logger.Info("response ingested",
		zap.String("eventId", msg.EventID),
		zap.String("campaignId", msg.CampaignID),
		zap.String("sentiment", analysis.Sentiment.String()),
		zap.String("intent", analysis.Intent.String()),
	)
	return nil
}

func (w *IngestWorker) invalidateSummary(ctx context.Context, campaignID string) {
	if w.analytics == nil {
		return
	}
	if err := w.analytics.Invalidate(ctx, cache.ResponseSummaryKey(campaignID)); err != nil {
		observability.WithContextLogger(w.logger, ctx).Warn("failed to invalidate response summary cache",
			zap.String("campaignId", campaignID),
			zap.Error(err),
		)
	}
}
