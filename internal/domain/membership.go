package domain

import (
	"fmt"
	"strings"
	"time"
)

// MembershipStatus represents the lifecycle state of a contact inside a campaign.
type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "ACTIVE"
	MembershipReplied   MembershipStatus = "REPLIED"
	MembershipConverted MembershipStatus = "CONVERTED"
	MembershipOptedOut  MembershipStatus = "OPTED_OUT"
)

func (s MembershipStatus) String() string { return string(s) }

func (s MembershipStatus) IsValid() bool {
	switch s {
	case MembershipActive, MembershipReplied, MembershipConverted, MembershipOptedOut:
		return true
	}
	return false
}

func ParseMembershipStatus(s string) (MembershipStatus, error) {
	st := MembershipStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid membership status %q", ErrValidation, s)
	}
	return st, nil
}

// Sentiment classifies the tone of an inbound reply.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

func (s Sentiment) String() string { return string(s) }

func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

func ParseSentiment(s string) (Sentiment, error) {
	st := Sentiment(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid sentiment %q", ErrValidation, s)
	}
	return st, nil
}

// CampaignMembership is the contact-campaign join row tracking delivery and reply state.
type CampaignMembership struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	CampaignID string `gorm:"type:uuid;not null"`
	ContactID  string `gorm:"type:uuid;not null"`
	Status     MembershipStatus
	Variant    string
	SentAt     *time.Time
	RepliedAt  *time.Time
	Sentiment  *Sentiment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (m *CampaignMembership) Validate() error {
	if strings.TrimSpace(m.CampaignID) == "" {
		return fmt.Errorf("%w: campaign id is required", ErrValidation)
	}
	if strings.TrimSpace(m.ContactID) == "" {
		return fmt.Errorf("%w: contact id is required", ErrValidation)
	}
	if !m.Status.IsValid() {
		return fmt.Errorf("%w: invalid membership status %q", ErrValidation, m.Status)
	}
	if m.Sentiment != nil && !m.Sentiment.IsValid() {
		return fmt.Errorf("%w: invalid sentiment %q", ErrValidation, *m.Sentiment)
	}
	if m.RepliedAt != nil && m.SentAt != nil && m.RepliedAt.Before(*m.SentAt) {
		return fmt.Errorf("%w: replied_at precedes sent_at", ErrValidation)
	}
	return nil
}

// ResponseTime returns the send-to-reply latency, or zero when either side is missing.
func (m *CampaignMembership) ResponseTime() time.Duration {
	if m.SentAt == nil || m.RepliedAt == nil {
		return 0
	}
	return m.RepliedAt.Sub(*m.SentAt)
}
