package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"github.com/mirelhq/campaign-insights/internal/result"
	"go.uber.org/zap"
)

// Setting keys read by the analytics services.
const (
	SettingLTVMultiplier      = "roi.ltv_multiplier"
	SettingEngagementLookback = "engagement.lookback_days"
)

type SettingsService struct {
	settings repository.SettingRepository
	auth     repository.QuickBooksAuthRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewSettingsService(
	settings repository.SettingRepository,
	auth repository.QuickBooksAuthRepository,
	logger *zap.Logger,
) (*SettingsService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SettingsService{
		settings: settings,
		auth:     auth,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *SettingsService) Get(ctx context.Context, key string) result.Result[domain.Setting] {
	if ctx == nil {
		ctx = context.Background()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return result.Failure[domain.Setting](result.CodeValidation, "setting key is required")
	}

	setting, err := s.settings.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return result.Failuref[domain.Setting](result.CodeNotFound, "setting %q not found", key)
	}
	if err != nil {
		return result.Failuref[domain.Setting](result.CodeDatabase, "failed to load setting: %v", err)
	}

	return result.Success(*setting)
}

func (s *SettingsService) Set(ctx context.Context, key, value string) result.Result[domain.Setting] {
	if ctx == nil {
		ctx = context.Background()
	}

	setting := domain.Setting{
		Key:   strings.TrimSpace(key),
		Value: value,
	}
	if err := setting.Validate(); err != nil {
		return result.Failure[domain.Setting](result.CodeValidation, err.Error())
	}

	if err := s.settings.Upsert(ctx, &setting); err != nil {
		return result.Failuref[domain.Setting](result.CodeDatabase, "failed to store setting: %v", err)
	}

	return result.Success(setting)
}

// Float reads a numeric setting, falling back to the given default when the
// key is absent or not parseable.
func (s *SettingsService) Float(ctx context.Context, key string, fallback float64) float64 {
	res := s.Get(ctx, key)
	if !res.OK() {
		return fallback
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(res.Data().Value), 64)
	if err != nil {
		s.logger.Warn("setting is not numeric, using fallback",
			zap.String("key", key),
			zap.String("value", res.Data().Value),
		)
		return fallback
	}
	return value
}

// Int reads an integer setting, falling back on absent or malformed values.
func (s *SettingsService) Int(ctx context.Context, key string, fallback int) int {
	res := s.Get(ctx, key)
	if !res.OK() {
		return fallback
	}

	value, err := strconv.Atoi(strings.TrimSpace(res.Data().Value))
	if err != nil {
		s.logger.Warn("setting is not an integer, using fallback",
			zap.String("key", key),
			zap.String("value", res.Data().Value),
		)
		return fallback
	}
	return value
}

// Bool reads a boolean setting, falling back on absent or malformed values.
func (s *SettingsService) Bool(ctx context.Context, key string, fallback bool) bool {
	res := s.Get(ctx, key)
	if !res.OK() {
		return fallback
	}

	value, err := strconv.ParseBool(strings.TrimSpace(res.Data().Value))
	if err != nil {
		s.logger.Warn("setting is not a boolean, using fallback",
			zap.String("key", key),
			zap.String("value", res.Data().Value),
		)
		return fallback
	}
	return value
}

func (s *SettingsService) SaveQuickBooksAuth(ctx context.Context, auth domain.QuickBooksAuth) result.Result[domain.QuickBooksAuth] {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := auth.Validate(); err != nil {
		return result.Failure[domain.QuickBooksAuth](result.CodeValidation, err.Error())
	}

	if err := s.auth.Save(ctx, &auth); err != nil {
		return result.Failuref[domain.QuickBooksAuth](result.CodeDatabase, "failed to store quickbooks auth: %v", err)
	}

	return result.Success(auth)
}

// QuickBooksAuth loads stored credentials for a realm. Expired credentials
// come back with an "expired" meta flag so callers can trigger a refresh.
func (s *SettingsService) QuickBooksAuth(ctx context.Context, realmID string) result.Result[domain.QuickBooksAuth] {
	if ctx == nil {
		ctx = context.Background()
	}

	realmID = strings.TrimSpace(realmID)
	if realmID == "" {
		return result.Failure[domain.QuickBooksAuth](result.CodeValidation, "realm id is required")
	}

	auth, err := s.auth.Get(ctx, realmID)
	if errors.Is(err, domain.ErrNotFound) {
		return result.Failuref[domain.QuickBooksAuth](result.CodeNotFound, "no quickbooks auth for realm %q", realmID)
	}
	if err != nil {
		return result.Failuref[domain.QuickBooksAuth](result.CodeDatabase, "failed to load quickbooks auth: %v", err)
	}

	res := result.Success(*auth)
	if auth.Expired(s.now()) {
		res = res.WithMeta("expired", true)
	}
	return res
}
