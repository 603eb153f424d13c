package repository

import (
	"context"
	"errors"

	"github.com/mirelhq/campaign-insights/internal/domain"
	"gorm.io/gorm"
)

type ConversionRepository interface {
	Create(ctx context.Context, e *domain.ConversionEvent) error
	GetByID(ctx context.Context, id string) (*domain.ConversionEvent, error)
	ListByCampaign(ctx context.Context, campaignID string, page, pageSize int) ([]domain.ConversionEvent, int64, error)
	RevenueByCampaign(ctx context.Context, campaignID string) (float64, error)
	CountByCampaign(ctx context.Context, campaignID string) (int64, error)
	CountNewCustomers(ctx context.Context, campaignID string) (int64, error)
}

type GormConversionRepo struct {
	db *gorm.DB
}

func NewGormConversionRepo(db *gorm.DB) *GormConversionRepo {
	return &GormConversionRepo{db: db}
}

func (r *GormConversionRepo) Create(ctx context.Context, e *domain.ConversionEvent) error {
	model := conversionModelFromDomain(e)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if e != nil {
		*e = *conversionModelToDomain(model)
	}
	return nil
}

func (r *GormConversionRepo) GetByID(ctx context.Context, id string) (*domain.ConversionEvent, error) {
	var model ConversionModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return conversionModelToDomain(&model), nil
}

func (r *GormConversionRepo) ListByCampaign(ctx context.Context, campaignID string, page, pageSize int) ([]domain.ConversionEvent, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&ConversionModel{}).
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

	var models []ConversionModel
	err := query.
		Order("occurred_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	conversions := make([]domain.ConversionEvent, 0, len(models))
	for i := range models {
		conversions = append(conversions, *conversionModelToDomain(&models[i]))
	}
	return conversions, total, nil
}

func (r *GormConversionRepo) RevenueByCampaign(ctx context.Context, campaignID string) (float64, error) {
	var revenue float64
	err := r.db.WithContext(ctx).
		Model(&ConversionModel{}).
		Where("campaign_id = ?", campaignID).
		Select("COALESCE(SUM(value), 0)").
		Scan(&revenue).Error
	return revenue, err
}

func (r *GormConversionRepo) CountByCampaign(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ConversionModel{}).
		Where("campaign_id = ?", campaignID).
		Count(&count).Error
	return count, err
}

func (r *GormConversionRepo) CountNewCustomers(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ConversionModel{}).
		Where("campaign_id = ?", campaignID).
		Distinct("contact_id").
		Count(&count).Error
	return count, err
}
