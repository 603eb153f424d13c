package domain

import (
	"fmt"
	"strings"
	"time"
)

// EngagementType is the kind of contact interaction logged.
type EngagementType string

const (
	EngagementReply    EngagementType = "REPLY"
	EngagementClick    EngagementType = "CLICK"
	EngagementPurchase EngagementType = "PURCHASE"
	EngagementVisit    EngagementType = "VISIT"
	EngagementReferral EngagementType = "REFERRAL"
)

func (t EngagementType) String() string { return string(t) }

func (t EngagementType) IsValid() bool {
	switch t {
	case EngagementReply, EngagementClick, EngagementPurchase, EngagementVisit, EngagementReferral:
		return true
	}
	return false
}

func ParseEngagementType(s string) (EngagementType, error) {
	et := EngagementType(strings.ToUpper(strings.TrimSpace(s)))
	if !et.IsValid() {
		return "", fmt.Errorf("%w: invalid engagement type %q", ErrValidation, s)
	}
	return et, nil
}

// KnownEngagementTypes is the denominator for the diversity score component.
var KnownEngagementTypes = []EngagementType{
	EngagementReply,
	EngagementClick,
	EngagementPurchase,
	EngagementVisit,
	EngagementReferral,
}

// EngagementEvent is one logged interaction for a contact.
type EngagementEvent struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	ContactID  string `gorm:"type:uuid;not null"`
	CampaignID *string
	Type       EngagementType
	Value      float64
	OccurredAt time.Time
	CreatedAt  time.Time
}

func (e *EngagementEvent) Validate() error {
	if strings.TrimSpace(e.ContactID) == "" {
		return fmt.Errorf("%w: contact id is required", ErrValidation)
	}
	if !e.Type.IsValid() {
		return fmt.Errorf("%w: invalid engagement type %q", ErrValidation, e.Type)
	}
	if e.Value < 0 {
		return fmt.Errorf("%w: event value must not be negative", ErrValidation)
	}
	return nil
}

// EngagementScore is the derived composite score for a contact.
type EngagementScore struct {
	ContactID             string
	Recency               float64
	Frequency             float64
	Monetary              float64
	TimeDecay             float64
	Diversity             float64
	Total                 float64
	ConversionProbability float64
	EventCount            int
	ComputedAt            time.Time
}
