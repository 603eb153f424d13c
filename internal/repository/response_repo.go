package repository

import (
	"context"

	"github.com/mirelhq/campaign-insights/internal/domain"
	"gorm.io/gorm"
)

// LabelCount is a generic grouped tally (sentiment or intent breakdowns).
type LabelCount struct {
	Label string `gorm:"column:label"`
	Count int64  `gorm:"column:count"`
}

type ResponseRepository interface {
	Create(ctx context.Context, r *domain.CampaignResponse) error
	ListByCampaign(ctx context.Context, campaignID string, page, pageSize int) ([]domain.CampaignResponse, int64, error)
	SentimentBreakdown(ctx context.Context, campaignID string) ([]LabelCount, error)
	IntentBreakdown(ctx context.Context, campaignID string) ([]LabelCount, error)
	ResponseTimes(ctx context.Context, campaignID string) ([]float64, error)
}

type GormResponseRepo struct {
	db *gorm.DB
}

func NewGormResponseRepo(db *gorm.DB) *GormResponseRepo {
	return &GormResponseRepo{db: db}
}

func (r *GormResponseRepo) Create(ctx context.Context, resp *domain.CampaignResponse) error {
	model := responseModelFromDomain(resp)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if resp != nil {
		*resp = *responseModelToDomain(model)
	}
	return nil
}

func (r *GormResponseRepo) ListByCampaign(ctx context.Context, campaignID string, page, pageSize int) ([]domain.CampaignResponse, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&ResponseModel{}).
		Where("campaign_id = ?", campaignID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = max(page, 1)
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []ResponseModel
	err := query.
		Order("received_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	responses := make([]domain.CampaignResponse, 0, len(models))
	for i := range models {
		responses = append(responses, *responseModelToDomain(&models[i]))
	}
	return responses, total, nil
}

func (r *GormResponseRepo) SentimentBreakdown(ctx context.Context, campaignID string) ([]LabelCount, error) {
	return r.breakdown(ctx, campaignID, "sentiment")
}

func (r *GormResponseRepo) IntentBreakdown(ctx context.Context, campaignID string) ([]LabelCount, error) {
	return r.breakdown(ctx, campaignID, "intent")
}

func (r *GormResponseRepo) breakdown(ctx context.Context, campaignID, column string) ([]LabelCount, error) {
	var counts []LabelCount
	err := r.db.WithContext(ctx).
		Model(&ResponseModel{}).
		Select(column+" AS label, COUNT(*) AS count").
		Where("campaign_id = ?", campaignID).
		Group(column).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *GormResponseRepo) ResponseTimes(ctx context.Context, campaignID string) ([]float64, error) {
	var times []float64
	err := r.db.WithContext(ctx).
		Model(&ResponseModel{}).
		Where("campaign_id = ? AND response_seconds > 0", campaignID).
		Pluck("response_seconds", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}
