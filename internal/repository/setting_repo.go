package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mirelhq/campaign-insights/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (*domain.Setting, error)
	Upsert(ctx context.Context, s *domain.Setting) error
}

type GormSettingRepo struct {
	db *gorm.DB
}

func NewGormSettingRepo(db *gorm.DB) *GormSettingRepo {
	return &GormSettingRepo{db: db}
}

func (r *GormSettingRepo) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var model SettingModel
	err := r.db.WithContext(ctx).First(&model, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &domain.Setting{Key: model.Key, Value: model.Value, UpdatedAt: model.UpdatedAt}, nil
}

func (r *GormSettingRepo) Upsert(ctx context.Context, s *domain.Setting) error {
	model := SettingModel{Key: s.Key, Value: s.Value, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&model).Error
}

type QuickBooksAuthRepository interface {
	Get(ctx context.Context, realmID string) (*domain.QuickBooksAuth, error)
	Save(ctx context.Context, a *domain.QuickBooksAuth) error
}

type GormQuickBooksAuthRepo struct {
	db *gorm.DB
}

func NewGormQuickBooksAuthRepo(db *gorm.DB) *GormQuickBooksAuthRepo {
	return &GormQuickBooksAuthRepo{db: db}
}

func (r *GormQuickBooksAuthRepo) Get(ctx context.Context, realmID string) (*domain.QuickBooksAuth, error) {
	var model QuickBooksAuthModel
	err := r.db.WithContext(ctx).First(&model, "realm_id = ?", realmID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &domain.QuickBooksAuth{
		RealmID:      model.RealmID,
		AccessToken:  model.AccessToken,
		RefreshToken: model.RefreshToken,
		ExpiresAt:    model.ExpiresAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}, nil
}

func (r *GormQuickBooksAuthRepo) Save(ctx context.Context, a *domain.QuickBooksAuth) error {
	model := QuickBooksAuthModel{
		RealmID:      a.RealmID,
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		ExpiresAt:    a.ExpiresAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "realm_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "updated_at"}),
		}).
		Create(&model).Error
}
