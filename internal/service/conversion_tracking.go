package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mirelhq/campaign-insights/internal/cache"
	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/observability"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"github.com/mirelhq/campaign-insights/internal/result"
	"github.com/mirelhq/campaign-insights/internal/stats"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConversionInput is the raw conversion submission before validation.
type ConversionInput struct {
	ContactID        string
	CampaignID       string
	Type             string
	Value            float64
	AttributionModel string
	OccurredAt       time.Time
}

// AttributedCredit is one campaign's share of a conversion under a model.
type AttributedCredit struct {
	CampaignID string  `json:"campaignId"`
	TouchedAt  string  `json:"touchedAt"`
	Weight     float64 `json:"weight"`
	Credit     float64 `json:"credit"`
}

type ConversionService struct {
	conversions repository.ConversionRepository
	memberships repository.MembershipRepository
	analytics   *cache.Cache
	logger      *zap.Logger
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewConversionService(
	conversions repository.ConversionRepository,
	memberships repository.MembershipRepository,
	analytics *cache.Cache,
	logger *zap.Logger,
) (*ConversionService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ConversionService{
		conversions: conversions,
		memberships: memberships,
		analytics:   analytics,
		logger:      logger,
		now:         time.Now,
	}, nil
}

func (s *ConversionService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// RecordConversion validates and stores a conversion event, promotes the
// contact's membership to CONVERTED, and drops the stale ROI cache entry.
func (s *ConversionService) RecordConversion(ctx context.Context, input ConversionInput) result.Result[domain.ConversionEvent] {
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(input.ContactID) == "" {
		return result.Failure[domain.ConversionEvent](result.CodeMissingContactID, "contact id is required")
	}
	if strings.TrimSpace(input.CampaignID) == "" {
		return result.Failure[domain.ConversionEvent](result.CodeMissingCampaignID, "campaign id is required")
	}

	conversionType, err := domain.ParseConversionType(input.Type)
	if err != nil {
		return result.Failuref[domain.ConversionEvent](result.CodeInvalidType, "unknown conversion type %q", input.Type)
	}
	if input.Value < 0 {
		return result.Failure[domain.ConversionEvent](result.CodeInvalidValue, "conversion value must not be negative")
	}

	model := domain.AttributionLastTouch
	if strings.TrimSpace(input.AttributionModel) != "" {
		model, err = domain.ParseAttributionModel(input.AttributionModel)
		if err != nil {
			return result.Failuref[domain.ConversionEvent](result.CodeInvalidType, "unknown attribution model %q", input.AttributionModel)
		}
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now().UTC()
	}

	event := domain.ConversionEvent{
		ID:               uuid.NewString(),
		CampaignID:       strings.TrimSpace(input.CampaignID),
		ContactID:        strings.TrimSpace(input.ContactID),
		Type:             conversionType,
		Value:            input.Value,
		AttributionModel: model,
		OccurredAt:       occurredAt,
	}
	if err := event.Validate(); err != nil {
		return result.Failure[domain.ConversionEvent](result.CodeValidation, err.Error())
	}

	if err := s.conversions.Create(ctx, &event); err != nil {
		if isDuplicateKeyError(err) {
			return result.Failuref[domain.ConversionEvent](result.CodeDuplicateEvent,
				"conversion already recorded for contact %s on campaign %s", event.ContactID, event.CampaignID)
		}
		return result.Failuref[domain.ConversionEvent](result.CodeDatabase, "failed to store conversion: %v", err)
	}

	s.promoteMembership(ctx, event.ContactID, event.CampaignID)
	s.invalidateROI(ctx, event.CampaignID)
	s.metrics.IncConversionRecorded(event.Type.String())

	return result.Success(event)
}

// AttributionBreakdown distributes a conversion's value over the contact's
// campaign touchpoints under the requested model.
func (s *ConversionService) AttributionBreakdown(ctx context.Context, conversionID string) result.Result[[]AttributedCredit] {
	if ctx == nil {
		ctx = context.Background()
	}

	conversionID = strings.TrimSpace(conversionID)
	if conversionID == "" {
		return result.Failure[[]AttributedCredit](result.CodeValidation, "conversion id is required")
	}

	event, err := s.conversions.GetByID(ctx, conversionID)
	if errors.Is(err, domain.ErrNotFound) {
		return result.Failuref[[]AttributedCredit](result.CodeNotFound, "conversion %s not found", conversionID)
	}
	if err != nil {
		return result.Failuref[[]AttributedCredit](result.CodeDatabase, "failed to load conversion: %v", err)
	}

	memberships, err := s.memberships.TouchpointsForContact(ctx, event.ContactID)
	if err != nil {
		return result.Failuref[[]AttributedCredit](result.CodeDatabase, "failed to load touchpoints: %v", err)
	}

	touches := make([]stats.Touchpoint, 0, len(memberships))
	for i := range memberships {
		m := memberships[i]
		if m.SentAt == nil || m.SentAt.After(event.OccurredAt) {
			continue
		}
		touches = append(touches, stats.Touchpoint{
			CampaignID: m.CampaignID,
			OccurredAt: *m.SentAt,
		})
	}
	if len(touches) == 0 {
		// No recorded touches before the conversion: full credit to the
		// conversion's own campaign.
		return result.Success([]AttributedCredit{{
			CampaignID: event.CampaignID,
			TouchedAt:  event.OccurredAt.UTC().Format(time.RFC3339),
			Weight:     1,
			Credit:     event.Value,
		}})
	}

	weights, err := stats.AttributionWeights(event.AttributionModel, touches, event.OccurredAt, stats.DefaultTimeDecayHalfLife)
	if err != nil {
		return result.Failuref[[]AttributedCredit](result.CodeValidation, "attribution failed: %v", err)
	}

	credits := make([]AttributedCredit, len(touches))
	for i := range touches {
		credits[i] = AttributedCredit{
			CampaignID: touches[i].CampaignID,
			TouchedAt:  touches[i].OccurredAt.UTC().Format(time.RFC3339),
			Weight:     weights[i],
			Credit:     weights[i] * event.Value,
		}
	}

	return result.Success(credits).WithMeta("model", event.AttributionModel.String())
}

func (s *ConversionService) ListConversions(ctx context.Context, campaignID string, page, pageSize int) result.PagedResult[domain.ConversionEvent] {
	if ctx == nil {
		ctx = context.Background()
	}

	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return result.PagedFailure[domain.ConversionEvent](result.CodeMissingCampaignID, "campaign id is required")
	}

	events, total, err := s.conversions.ListByCampaign(ctx, campaignID, page, pageSize)
	if err != nil {
		return result.PagedFailure[domain.ConversionEvent](result.CodeDatabase, "failed to list conversions")
	}

	return result.PagedSuccess(events, page, pageSize, total)
}

func (s *ConversionService) promoteMembership(ctx context.Context, contactID, campaignID string) {
	membership, err := s.memberships.GetByContactAndCampaign(ctx, contactID, campaignID)
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn("failed to load membership for conversion",
			zap.String("contactId", contactID),
			zap.String("campaignId", campaignID),
			zap.Error(err),
		)
		return
	}

	if err := s.memberships.MarkConverted(ctx, membership.ID); err != nil && !errors.Is(err, domain.ErrConflict) {
		s.logger.Warn("failed to mark membership converted",
			zap.String("membershipId", membership.ID),
			zap.Error(err),
		)
	}
}

func (s *ConversionService) invalidateROI(ctx context.Context, campaignID string) {
	if s.analytics == nil {
		return
	}
	if err := s.analytics.Invalidate(ctx, cache.ROIKey(campaignID)); err != nil {
		s.logger.Warn("failed to invalidate roi cache",
			zap.String("campaignId", campaignID),
			zap.Error(err),
		)
	}
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
