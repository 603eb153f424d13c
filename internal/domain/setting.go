package domain

import (
	"fmt"
	"strings"
	"time"
)

// Setting is a string key/value configuration row.
type Setting struct {
	Key       string `gorm:"primaryKey;type:varchar(255)"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (s *Setting) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return fmt.Errorf("%w: setting key is required", ErrValidation)
	}
	return nil
}

// QuickBooksAuth stores the OAuth token pair for the accounting
// integration that feeds campaign cost sync.
type QuickBooksAuth struct {
	RealmID      string `gorm:"primaryKey;type:varchar(64)"`
	AccessToken  string `gorm:"type:text;not null"`
	RefreshToken string `gorm:"type:text;not null"`
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *QuickBooksAuth) Validate() error {
	if strings.TrimSpace(a.RealmID) == "" {
		return fmt.Errorf("%w: realm id is required", ErrValidation)
	}
	if strings.TrimSpace(a.AccessToken) == "" {
		return fmt.Errorf("%w: access token is required", ErrValidation)
	}
	if strings.TrimSpace(a.RefreshToken) == "" {
		return fmt.Errorf("%w: refresh token is required", ErrValidation)
	}
	return nil
}

// Expired reports whether the access token is past its expiry at the given time.
func (a *QuickBooksAuth) Expired(now time.Time) bool {
	return !a.ExpiresAt.After(now)
}
