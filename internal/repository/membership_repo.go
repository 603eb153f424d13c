package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mirelhq/campaign-insights/internal/domain"
	"gorm.io/gorm"
)

// VariantCounts is the sent/replied tally for one campaign variant.
type VariantCounts struct {
	Variant string `gorm:"column:variant"`
	Sent    int64  `gorm:"column:sent"`
	Replied int64  `gorm:"column:replied"`
}

type MembershipRepository interface {
	Create(ctx context.Context, m *domain.CampaignMembership) error
	GetByID(ctx context.Context, id string) (*domain.CampaignMembership, error)
	GetByContactAndCampaign(ctx context.Context, contactID, campaignID string) (*domain.CampaignMembership, error)
	MarkReplied(ctx context.Context, id string, repliedAt time.Time, tone domain.Sentiment) error
	MarkConverted(ctx context.Context, id string) error
	CountSent(ctx context.Context, campaignID string) (int64, error)
	CountReplied(ctx context.Context, campaignID string) (int64, error)
	VariantCounts(ctx context.Context, campaignID string) ([]VariantCounts, error)
	TouchpointsForContact(ctx context.Context, contactID string) ([]domain.CampaignMembership, error)
}

type GormMembershipRepo struct {
	db *gorm.DB
}

func NewGormMembershipRepo(db *gorm.DB) *GormMembershipRepo {
	return &GormMembershipRepo{db: db}
}

func (r *GormMembershipRepo) Create(ctx context.Context, m *domain.CampaignMembership) error {
	model := membershipModelFromDomain(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if m != nil {
		*m = *membershipModelToDomain(model)
	}
	return nil
}

func (r *GormMembershipRepo) GetByID(ctx context.Context, id string) (*domain.CampaignMembership, error) {
	var model MembershipModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return membershipModelToDomain(&model), nil
}

func (r *GormMembershipRepo) GetByContactAndCampaign(ctx context.Context, contactID, campaignID string) (*domain.CampaignMembership, error) {
	var model MembershipModel
	err := r.db.WithContext(ctx).
		Where("contact_id = ? AND campaign_id = ?", contactID, campaignID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return membershipModelToDomain(&model), nil
}

func (r *GormMembershipRepo) MarkReplied(ctx context.Context, id string, repliedAt time.Time, tone domain.Sentiment) error {
	result := r.db.WithContext(ctx).
		Model(&MembershipModel{}).
		Where("id = ? AND status = ?", id, domain.MembershipActive).
		Updates(map[string]any{
			"status":     domain.MembershipReplied,
			"replied_at": repliedAt,
			"sentiment":  tone,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *GormMembershipRepo) MarkConverted(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&MembershipModel{}).
		Where("id = ? AND status IN ?", id, []domain.MembershipStatus{domain.MembershipActive, domain.MembershipReplied}).
		Update("status", domain.MembershipConverted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *GormMembershipRepo) CountSent(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&MembershipModel{}).
		Where("campaign_id = ? AND sent_at IS NOT NULL", campaignID).
		Count(&count).Error
	return count, err
}

func (r *GormMembershipRepo) CountReplied(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&MembershipModel{}).
		Where("campaign_id = ? AND replied_at IS NOT NULL", campaignID).
		Count(&count).Error
	return count, err
}

func (r *GormMembershipRepo) VariantCounts(ctx context.Context, campaignID string) ([]VariantCounts, error) {
	var counts []VariantCounts
	err := r.db.WithContext(ctx).
		Model(&MembershipModel{}).
		Select("variant, COUNT(*) FILTER (WHERE sent_at IS NOT NULL) AS sent, COUNT(*) FILTER (WHERE replied_at IS NOT NULL) AS replied").
		Where("campaign_id = ?", campaignID).
		Group("variant").
		Order("variant ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *GormMembershipRepo) TouchpointsForContact(ctx context.Context, contactID string) ([]domain.CampaignMembership, error) {
	var models []MembershipModel
	err := r.db.WithContext(ctx).
		Where("contact_id = ? AND sent_at IS NOT NULL", contactID).
		Order("sent_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	memberships := make([]domain.CampaignMembership, 0, len(models))
	for i := range models {
		memberships = append(memberships, *membershipModelToDomain(&models[i]))
	}
	return memberships, nil
}
