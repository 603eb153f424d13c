package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mirelhq/campaign-insights/internal/cache"
	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/observability"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"github.com/mirelhq/campaign-insights/internal/result"
	"github.com/mirelhq/campaign-insights/internal/stats"
	"go.uber.org/zap"
)

const (
	defaultConfidence = 95
	defaultAlpha      = 0.05
)

// LabelShare is one label's count and share of a breakdown.
type LabelShare struct {
	Label string  `json:"label"`
	Count int64   `json:"count"`
	Share float64 `json:"share"`
}

// ResponseTimeStats summarizes reply latencies in seconds.
type ResponseTimeStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// ResponseSummary is the cached analytics view of one campaign's replies.
type ResponseSummary struct {
	CampaignID   string            `json:"campaignId"`
	Sent         int64             `json:"sent"`
	Replied      int64             `json:"replied"`
	ResponseRate float64           `json:"responseRate"`
	RateLower    float64           `json:"rateLower"`
	RateUpper    float64           `json:"rateUpper"`
	Confidence   int               `json:"confidence"`
	Sentiment    []LabelShare      `json:"sentiment"`
	Intent       []LabelShare      `json:"intent"`
	ResponseTime ResponseTimeStats `json:"responseTime"`
	ComputedAt   time.Time         `json:"computedAt"`
}

// VariantResult is one A/B variant's outcome with its own interval.
type VariantResult struct {
	Variant      string  `json:"variant"`
	Sent         int64   `json:"sent"`
	Replied      int64   `json:"replied"`
	ResponseRate float64 `json:"responseRate"`
	RateLower    float64 `json:"rateLower"`
	RateUpper    float64 `json:"rateUpper"`
}

// VariantComparison is the chi-square verdict across a campaign's variants.
type VariantComparison struct {
	CampaignID  string          `json:"campaignId"`
	Variants    []VariantResult `json:"variants"`
	ChiSquare   float64         `json:"chiSquare"`
	DF          int             `json:"degreesOfFreedom"`
	Alpha       float64         `json:"alpha"`
	Significant bool            `json:"significant"`
	Winner      string          `json:"winner,omitempty"`
	ComputedAt  time.Time       `json:"computedAt"`
}

type ResponseAnalyticsService struct {
	responses   repository.ResponseRepository
	memberships repository.MembershipRepository
	analytics   *cache.Cache
	logger      *zap.Logger
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewResponseAnalyticsService(
	responses repository.ResponseRepository,
	memberships repository.MembershipRepository,
	analytics *cache.Cache,
	logger *zap.Logger,
) (*ResponseAnalyticsService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ResponseAnalyticsService{
		responses:   responses,
		memberships: memberships,
		analytics:   analytics,
		logger:      logger,
		now:         time.Now,
	}, nil
}

func (s *ResponseAnalyticsService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Summary computes (or serves from cache) the response analytics for a
// campaign: response rate with its confidence interval, sentiment and intent
// breakdowns, and reply-latency statistics.
func (s *ResponseAnalyticsService) Summary(ctx context.Context, campaignID string, confidence int) result.Result[ResponseSummary] {
	if ctx == nil {
		ctx = context.Background()
	}

	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return result.Failure[ResponseSummary](result.CodeMissingCampaignID, "campaign id is required")
	}
	if confidence == 0 {
		confidence = defaultConfidence
	}

	cacheKey := cache.ResponseSummaryKey(campaignID)
	if s.analytics != nil {
		var cached ResponseSummary
		err := s.analytics.Get(ctx, cacheKey, &cached)
		if err == nil && cached.Confidence == confidence {
			s.metrics.IncCacheHit("response_summary")
			return result.Success(cached).WithMeta("cached", true)
		}
		if err != nil && !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("response summary cache read failed",
				zap.String("campaignId", campaignID),
				zap.Error(err),
			)
		}
		s.metrics.IncCacheMiss("response_summary")
	}

	sent, err := s.memberships.CountSent(ctx, campaignID)
	if err != nil {
		return result.Failuref[ResponseSummary](result.CodeDatabase, "failed to count sent messages: %v", err)
	}
	replied, err := s.memberships.CountReplied(ctx, campaignID)
	if err != nil {
		return result.Failuref[ResponseSummary](result.CodeDatabase, "failed to count replies: %v", err)
	}

	interval, err := stats.ProportionInterval(replied, sent, confidence)
	if err != nil {
		return result.Failuref[ResponseSummary](result.CodeValidation, "response rate interval: %v", err)
	}

	sentimentCounts, err := s.responses.SentimentBreakdown(ctx, campaignID)
	if err != nil {
		return result.Failuref[ResponseSummary](result.CodeDatabase, "failed to load sentiment breakdown: %v", err)
	}
	intentCounts, err := s.responses.IntentBreakdown(ctx, campaignID)
	if err != nil {
		return result.Failuref[ResponseSummary](result.CodeDatabase, "failed to load intent breakdown: %v", err)
	}

	times, err := s.responses.ResponseTimes(ctx, campaignID)
	if err != nil {
		return result.Failuref[ResponseSummary](result.CodeDatabase, "failed to load response times: %v", err)
	}

	summary := ResponseSummary{
		CampaignID:   campaignID,
		Sent:         sent,
		Replied:      replied,
		ResponseRate: interval.Proportion,
		RateLower:    interval.Lower,
		RateUpper:    interval.Upper,
		Confidence:   confidence,
		Sentiment:    toLabelShares(sentimentCounts),
		Intent:       toLabelShares(intentCounts),
		ResponseTime: ResponseTimeStats{
			Mean:   stats.Mean(times),
			Median: stats.Median(times),
			P90:    stats.Percentile(times, 90),
		},
		ComputedAt: s.now().UTC(),
	}

	if s.analytics != nil {
		if err := s.analytics.Set(ctx, cacheKey, summary); err != nil {
			s.logger.Warn("response summary cache write failed",
				zap.String("campaignId", campaignID),
				zap.Error(err),
			)
		}
	}

	return result.Success(summary)
}

// CompareVariants runs a chi-square test over the campaign's A/B variants.
// At least two variants with sends are required for a verdict.
func (s *ResponseAnalyticsService) CompareVariants(ctx context.Context, campaignID string, alpha float64) result.Result[VariantComparison] {
	if ctx == nil {
		ctx = context.Background()
	}

	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return result.Failure[VariantComparison](result.CodeMissingCampaignID, "campaign id is required")
	}
	if alpha == 0 {
		alpha = defaultAlpha
	}

	counts, err := s.memberships.VariantCounts(ctx, campaignID)
	if err != nil {
		return result.Failuref[VariantComparison](result.CodeDatabase, "failed to load variant counts: %v", err)
	}

	groups := make([]stats.GroupCounts, 0, len(counts))
	variants := make([]VariantResult, 0, len(counts))
	for _, c := range counts {
		if c.Sent == 0 {
			continue
		}
		groups = append(groups, stats.GroupCounts{
			Label:     c.Variant,
			Successes: c.Replied,
			Failures:  c.Sent - c.Replied,
		})

		interval, intervalErr := stats.ProportionInterval(c.Replied, c.Sent, defaultConfidence)
		if intervalErr != nil {
			return result.Failuref[VariantComparison](result.CodeValidation, "variant interval: %v", intervalErr)
		}
		variants = append(variants, VariantResult{
			Variant:      c.Variant,
			Sent:         c.Sent,
			Replied:      c.Replied,
			ResponseRate: interval.Proportion,
			RateLower:    interval.Lower,
			RateUpper:    interval.Upper,
		})
	}

	if len(groups) < 2 {
		return result.Failuref[VariantComparison](result.CodeValidation,
			"campaign %s needs at least two variants with sends to compare", campaignID)
	}

	statistic, df, err := stats.ChiSquare(groups)
	if err != nil {
		return result.Failuref[VariantComparison](result.CodeValidation, "chi-square test: %v", err)
	}
	significant, err := stats.IsSignificant(statistic, df, alpha)
	if err != nil {
		return result.Failuref[VariantComparison](result.CodeValidation, "significance lookup: %v", err)
	}

	comparison := VariantComparison{
		CampaignID:  campaignID,
		Variants:    variants,
		ChiSquare:   statistic,
		DF:          df,
		Alpha:       alpha,
		Significant: significant,
		ComputedAt:  s.now().UTC(),
	}
	if significant {
		comparison.Winner = bestVariant(variants)
	}

	return result.Success(comparison)
}

func (s *ResponseAnalyticsService) ListResponses(ctx context.Context, campaignID string, page, pageSize int) result.PagedResult[domain.CampaignResponse] {
	if ctx == nil {
		ctx = context.Background()
	}

	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return result.PagedFailure[domain.CampaignResponse](result.CodeMissingCampaignID, "campaign id is required")
	}

	responses, total, err := s.responses.ListByCampaign(ctx, campaignID, page, pageSize)
	if err != nil {
		return result.PagedFailure[domain.CampaignResponse](result.CodeDatabase, "failed to list responses")
	}

	return result.PagedSuccess(responses, page, pageSize, total)
}

func toLabelShares(counts []repository.LabelCount) []LabelShare {
	var total int64
	for _, c := range counts {
		total += c.Count
	}

	shares := make([]LabelShare, 0, len(counts))
	for _, c := range counts {
		share := 0.0
		if total > 0 {
			share = float64(c.Count) / float64(total)
		}
		shares = append(shares, LabelShare{
			Label: c.Label,
			Count: c.Count,
			Share: share,
		})
	}
	return shares
}

func bestVariant(variants []VariantResult) string {
	best := ""
	bestRate := -1.0
	for _, v := range variants {
		if v.ResponseRate > bestRate {
			bestRate = v.ResponseRate
			best = v.Variant
		}
	}
	return best
}
