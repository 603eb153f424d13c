package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mirelhq/campaign-insights/internal/domain"
	"gorm.io/gorm"
)

type WebhookRepository interface {
	Create(ctx context.Context, w *domain.FailedWebhook) error
	GetByID(ctx context.Context, id string) (*domain.FailedWebhook, error)
	GetByEventID(ctx context.Context, eventID string) (*domain.FailedWebhook, error)
	GetDue(ctx context.Context, limit int) ([]domain.FailedWebhook, error)
	RecordAttempt(ctx context.Context, id string, status domain.WebhookStatus, retryCount int, nextRetryAt *time.Time, lastError *string) error
	MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error
	List(ctx context.Context, status *domain.WebhookStatus, page, pageSize int) ([]domain.FailedWebhook, int64, error)
}

type GormWebhookRepo struct {
	db *gorm.DB
}

func NewGormWebhookRepo(db *gorm.DB) *GormWebhookRepo {
	return &GormWebhookRepo{db: db}
}

func (r *GormWebhookRepo) Create(ctx context.Context, w *domain.FailedWebhook) error {
	model := webhookModelFromDomain(w)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if w != nil {
		*w = *webhookModelToDomain(model)
	}
	return nil
}

func (r *GormWebhookRepo) GetByID(ctx context.Context, id string) (*domain.FailedWebhook, error) {
	var model FailedWebhookModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return webhookModelToDomain(&model), nil
}

func (r *GormWebhookRepo) GetByEventID(ctx context.Context, eventID string) (*domain.FailedWebhook, error) {
	var model FailedWebhookModel
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return webhookModelToDomain(&model), nil
}

func (r *GormWebhookRepo) GetDue(ctx context.Context, limit int) ([]domain.FailedWebhook, error) {
	var models []FailedWebhookModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", domain.WebhookPending, time.Now()).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	webhooks := make([]domain.FailedWebhook, 0, len(models))
	for i := range models {
		webhooks = append(webhooks, *webhookModelToDomain(&models[i]))
	}
	return webhooks, nil
}

func (r *GormWebhookRepo) RecordAttempt(
	ctx context.Context,
	id string,
	status domain.WebhookStatus,
	retryCount int,
	nextRetryAt *time.Time,
	lastError *string,
) error {
	result := r.db.WithContext(ctx).
		Model(&FailedWebhookModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        status,
			"retry_count":   retryCount,
			"next_retry_at": nextRetryAt,
			"last_error":    lastError,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormWebhookRepo) MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&FailedWebhookModel{}).
		Where("id = ? AND status = ?", id, domain.WebhookPending).
		Updates(map[string]any{
			"status":        domain.WebhookResolved,
			"resolved_at":   resolvedAt,
			"next_retry_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing webhook from one already resolved or exhausted.
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&FailedWebhookModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *GormWebhookRepo) List(ctx context.Context, status *domain.WebhookStatus, page, pageSize int) ([]domain.FailedWebhook, int64, error) {
	query := r.db.WithContext(ctx).Model(&FailedWebhookModel{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = max(page, 1)
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []FailedWebhookModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	webhooks := make([]domain.FailedWebhook, 0, len(models))
	for i := range models {
		webhooks = append(webhooks, *webhookModelToDomain(&models[i]))
	}
	return webhooks, total, nil
}
