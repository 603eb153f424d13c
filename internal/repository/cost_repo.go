package repository

import (
	"context"

	"github.com/mirelhq/campaign-insights/internal/domain"
	"gorm.io/gorm"
)

type CostRepository interface {
	Create(ctx context.Context, c *domain.CampaignCost) error
	TotalByCampaign(ctx context.Context, campaignID string) (float64, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.CampaignCost, error)
}

type GormCostRepo struct {
	db *gorm.DB
}

func NewGormCostRepo(db *gorm.DB) *GormCostRepo {
	return &GormCostRepo{db: db}
}

func (r *GormCostRepo) Create(ctx context.Context, c *domain.CampaignCost) error {
	model := costModelFromDomain(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if c != nil {
		*c = *costModelToDomain(model)
	}
	return nil
}

func (r *GormCostRepo) TotalByCampaign(ctx context.Context, campaignID string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&CostModel{}).
		Where("campaign_id = ?", campaignID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *GormCostRepo) ListByCampaign(ctx context.Context, campaignID string) ([]domain.CampaignCost, error) {
	var models []CostModel
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("incurred_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	costs := make([]domain.CampaignCost, 0, len(models))
	for i := range models {
		costs = append(costs, *costModelToDomain(&models[i]))
	}
	return costs, nil
}
