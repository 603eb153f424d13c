package repository

import (
	"context"
	"time"

	"github.com/mirelhq/campaign-insights/internal/domain"
	"gorm.io/gorm"
)

type EngagementRepository interface {
	CreateEvent(ctx context.Context, e *domain.EngagementEvent) error
	EventsByContact(ctx context.Context, contactID string, since time.Time) ([]domain.EngagementEvent, error)
}

type GormEngagementRepo struct {
	db *gorm.DB
}

func NewGormEngagementRepo(db *gorm.DB) *GormEngagementRepo {
	return &GormEngagementRepo{db: db}
}

func (r *GormEngagementRepo) CreateEvent(ctx context.Context, e *domain.EngagementEvent) error {
	model := engagementEventModelFromDomain(e)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if e != nil {
		*e = *engagementEventModelToDomain(model)
	}
	return nil
}

func (r *GormEngagementRepo) EventsByContact(ctx context.Context, contactID string, since time.Time) ([]domain.EngagementEvent, error) {
	query := r.db.WithContext(ctx).
		Where("contact_id = ?", contactID)
	if !since.IsZero() {
		query = query.Where("occurred_at >= ?", since)
	}

	var models []EngagementEventModel
	err := query.
		Order("occurred_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	events := make([]domain.EngagementEvent, 0, len(models))
	for i := range models {
		events = append(events, *engagementEventModelToDomain(&models[i]))
	}
	return events, nil
}
