package domain

import (
	"fmt"
	"strings"
	"time"
)

// Intent classifies what an inbound reply is asking for.
type Intent string

const (
	IntentInterested Intent = "INTERESTED"
	IntentOptOut     Intent = "OPT_OUT"
	IntentQuestion   Intent = "QUESTION"
	IntentComplaint  Intent = "COMPLAINT"
	IntentUnknown    Intent = "UNKNOWN"
)

func (i Intent) String() string { return string(i) }

func (i Intent) IsValid() bool {
	switch i {
	case IntentInterested, IntentOptOut, IntentQuestion, IntentComplaint, IntentUnknown:
		return true
	}
	return false
}

func ParseIntent(s string) (Intent, error) {
	in := Intent(strings.ToUpper(strings.TrimSpace(s)))
	if !in.IsValid() {
		return "", fmt.Errorf("%w: invalid intent %q", ErrValidation, s)
	}
	return in, nil
}

// CampaignResponse is a recorded inbound reply for a contact on a campaign.
type CampaignResponse struct {
	ID              string `gorm:"type:uuid;primaryKey"`
	CampaignID      string `gorm:"type:uuid;not null"`
	ContactID       string `gorm:"type:uuid;not null"`
	Body            string
	Sentiment       Sentiment
	Intent          Intent
	ResponseSeconds float64
	ReceivedAt      time.Time
	CreatedAt       time.Time
}

func (r *CampaignResponse) Validate() error {
	if strings.TrimSpace(r.CampaignID) == "" {
		return fmt.Errorf("%w: campaign id is required", ErrValidation)
	}
	if strings.TrimSpace(r.ContactID) == "" {
		return fmt.Errorf("%w: contact id is required", ErrValidation)
	}
	if !r.Sentiment.IsValid() {
		return fmt.Errorf("%w: invalid sentiment %q", ErrValidation, r.Sentiment)
	}
	if !r.Intent.IsValid() {
		return fmt.Errorf("%w: invalid intent %q", ErrValidation, r.Intent)
	}
	if r.ResponseSeconds < 0 {
		return fmt.Errorf("%w: response time must not be negative", ErrValidation)
	}
	return nil
}
