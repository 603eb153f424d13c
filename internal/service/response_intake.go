package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mirelhq/campaign-insights/internal/observability"
	"github.com/mirelhq/campaign-insights/internal/queue"
	"github.com/mirelhq/campaign-insights/internal/result"
	"go.uber.org/zap"
)

// ResponseIntakeService accepts inbound reply events at the API edge and
// hands them to the broker; recording happens asynchronously in the ingest
// worker.
type ResponseIntakeService struct {
	publisher queue.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewResponseIntakeService(publisher queue.Publisher, logger *zap.Logger) (*ResponseIntakeService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ResponseIntakeService{
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Submit validates and enqueues one inbound reply event. A missing event id
// gets one generated so providers without delivery ids can still submit.
func (s *ResponseIntakeService) Submit(ctx context.Context, msg queue.ResponseMessage) result.Result[queue.ResponseMessage] {
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(msg.ContactID) == "" {
		return result.Failure[queue.ResponseMessage](result.CodeMissingContactID, "contactId is required")
	}
	if strings.TrimSpace(msg.CampaignID) == "" {
		return result.Failure[queue.ResponseMessage](result.CodeMissingCampaignID, "campaignId is required")
	}
	if strings.TrimSpace(msg.EventID) == "" {
		msg.EventID = uuid.NewString()
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = s.now().UTC()
	}
	if msg.CorrelationID == "" {
		if id, ok := observability.CorrelationIDFromContext(ctx); ok {
			msg.CorrelationID = id
		}
	}
	if err := msg.Validate(); err != nil {
		return result.Failure[queue.ResponseMessage](result.CodeValidation, err.Error())
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		observability.WithContextLogger(s.logger, ctx).Error("failed to publish response event",
			zap.String("eventId", msg.EventID),
			zap.String("campaignId", msg.CampaignID),
			zap.Error(err),
		)
		return result.Failuref[queue.ResponseMessage](result.CodePublish, "failed to enqueue response event: %v", err)
	}

	return result.Success(msg)
}
