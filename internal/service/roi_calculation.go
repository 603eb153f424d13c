package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mirelhq/campaign-insights/internal/cache"
	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"github.com/mirelhq/campaign-insights/internal/result"
	"go.uber.org/zap"
)

// defaultLTVMultiplier projects lifetime value from first-campaign revenue
// when no override is configured.
const defaultLTVMultiplier = 3.0

// CostInput is the raw cost submission before validation.
type CostInput struct {
	CampaignID  string
	Category    string
	Amount      float64
	Description string
	IncurredAt  time.Time
}

type ROIService struct {
	conversions repository.ConversionRepository
	costs       repository.CostRepository
	settings    *SettingsService
	analytics   *cache.Cache
	logger      *zap.Logger
	now         func() time.Time
}

func NewROIService(
	conversions repository.ConversionRepository,
	costs repository.CostRepository,
	settings *SettingsService,
	analytics *cache.Cache,
	logger *zap.Logger,
) (*ROIService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ROIService{
		conversions: conversions,
		costs:       costs,
		settings:    settings,
		analytics:   analytics,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// RecordCost stores one spend entry and drops the stale ROI cache entry.
func (s *ROIService) RecordCost(ctx context.Context, input CostInput) result.Result[domain.CampaignCost] {
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(input.CampaignID) == "" {
		return result.Failure[domain.CampaignCost](result.CodeMissingCampaignID, "campaign id is required")
	}

	category, err := domain.ParseCostCategory(input.Category)
	if err != nil {
		return result.Failuref[domain.CampaignCost](result.CodeInvalidType, "unknown cost category %q", input.Category)
	}
	if input.Amount <= 0 {
		return result.Failure[domain.CampaignCost](result.CodeInvalidValue, "cost amount must be positive")
	}

	incurredAt := input.IncurredAt
	if incurredAt.IsZero() {
		incurredAt = s.now().UTC()
	}

	cost := domain.CampaignCost{
		ID:          uuid.NewString(),
		CampaignID:  strings.TrimSpace(input.CampaignID),
		Category:    category,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		IncurredAt:  incurredAt,
	}
	if err := cost.Validate(); err != nil {
		return result.Failure[domain.CampaignCost](result.CodeValidation, err.Error())
	}

	if err := s.costs.Create(ctx, &cost); err != nil {
		return result.Failuref[domain.CampaignCost](result.CodeDatabase, "failed to store cost: %v", err)
	}

	s.invalidate(ctx, cost.CampaignID)

	return result.Success(cost)
}

// Analyze computes the ROI view for a campaign. When no spend is recorded the
// ratio fields stay zero and CostDefined is false so callers do not confuse
// "no cost data" with "campaign broke even".
func (s *ROIService) Analyze(ctx context.Context, campaignID string) result.Result[domain.ROIAnalysis] {
	if ctx == nil {
		ctx = context.Background()
	}

	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return result.Failure[domain.ROIAnalysis](result.CodeMissingCampaignID, "campaign id is required")
	}

	cacheKey := cache.ROIKey(campaignID)
	if s.analytics != nil {
		var cached domain.ROIAnalysis
		err := s.analytics.Get(ctx, cacheKey, &cached)
		if err == nil {
			return result.Success(cached).WithMeta("cached", true)
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("roi cache read failed",
				zap.String("campaignId", campaignID),
				zap.Error(err),
			)
		}
	}

	revenue, err := s.conversions.RevenueByCampaign(ctx, campaignID)
	if err != nil {
		return result.Failuref[domain.ROIAnalysis](result.CodeDatabase, "failed to sum revenue: %v", err)
	}
	totalCost, err := s.costs.TotalByCampaign(ctx, campaignID)
	if err != nil {
		return result.Failuref[domain.ROIAnalysis](result.CodeDatabase, "failed to sum costs: %v", err)
	}
	conversions, err := s.conversions.CountByCampaign(ctx, campaignID)
	if err != nil {
		return result.Failuref[domain.ROIAnalysis](result.CodeDatabase, "failed to count conversions: %v", err)
	}
	newCustomers, err := s.conversions.CountNewCustomers(ctx, campaignID)
	if err != nil {
		return result.Failuref[domain.ROIAnalysis](result.CodeDatabase, "failed to count new customers: %v", err)
	}

	analysis := domain.ROIAnalysis{
		CampaignID:   campaignID,
		Revenue:      revenue,
		Cost:         totalCost,
		CostDefined:  totalCost > 0,
		Conversions:  conversions,
		NewCustomers: newCustomers,
		ComputedAt:   s.now().UTC(),
	}

	if analysis.CostDefined {
		analysis.ROIPercent = (revenue - totalCost) / totalCost * 100
		analysis.ROAS = revenue / totalCost
		if newCustomers > 0 {
			analysis.CAC = totalCost / float64(newCustomers)
		}
	}

	if newCustomers > 0 {
		multiplier := defaultLTVMultiplier
		if s.settings != nil {
			multiplier = s.settings.Float(ctx, SettingLTVMultiplier, defaultLTVMultiplier)
		}
		analysis.LTV = revenue / float64(newCustomers) * multiplier
	}

	if s.analytics != nil {
		if err := s.analytics.Set(ctx, cacheKey, analysis); err != nil {
			s.logger.Warn("roi cache write failed",
				zap.String("campaignId", campaignID),
				zap.Error(err),
			)
		}
	}

	return result.Success(analysis)
}

func (s *ROIService) ListCosts(ctx context.Context, campaignID string) result.Result[[]domain.CampaignCost] {
	if ctx == nil {
		ctx = context.Background()
	}

	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return result.Failure[[]domain.CampaignCost](result.CodeMissingCampaignID, "campaign id is required")
	}

	costs, err := s.costs.ListByCampaign(ctx, campaignID)
	if err != nil {
		return result.Failuref[[]domain.CampaignCost](result.CodeDatabase, "failed to list costs: %v", err)
	}

	return result.Success(costs)
}

func (s *ROIService) invalidate(ctx context.Context, campaignID string) {
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
