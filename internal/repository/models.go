package repository

import (
	"time"

	"github.com/mirelhq/campaign-insights/internal/domain"
)

// MembershipModel is the persistence model for campaign_memberships.
type MembershipModel struct {
	ID         string                  `gorm:"type:uuid;primaryKey"`
	CampaignID string                  `gorm:"type:uuid;not null"`
	ContactID  string                  `gorm:"type:uuid;not null"`
	Status     domain.MembershipStatus `gorm:"type:varchar(20);not null"`
	Variant    string                  `gorm:"type:varchar(32)"`
	SentAt     *time.Time
	RepliedAt  *time.Time
	Sentiment  *domain.Sentiment `gorm:"type:varchar(10)"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (MembershipModel) TableName() string {
	return "campaign_memberships"
}

// ResponseModel is the persistence model for campaign_responses.
type ResponseModel struct {
	ID              string           `gorm:"type:uuid;primaryKey"`
	CampaignID      string           `gorm:"type:uuid;not null"`
	ContactID       string           `gorm:"type:uuid;not null"`
	Body            string           `gorm:"type:text"`
	Sentiment       domain.Sentiment `gorm:"type:varchar(10);not null"`
	Intent          domain.Intent    `gorm:"type:varchar(12);not null"`
	ResponseSeconds float64          `gorm:"not null;default:0"`
	ReceivedAt      time.Time
	CreatedAt       time.Time
}

func (ResponseModel) TableName() string {
	return "campaign_responses"
}

// ConversionModel is the persistence model for conversion_events.
type ConversionModel struct {
	ID               string                  `gorm:"type:uuid;primaryKey"`
	CampaignID       string                  `gorm:"type:uuid;not null"`
	ContactID        string                  `gorm:"type:uuid;not null"`
	Type             domain.ConversionType   `gorm:"type:varchar(12);not null"`
	Value            float64                 `gorm:"not null;default:0"`
	AttributionModel domain.AttributionModel `gorm:"type:varchar(16);not null"`
	OccurredAt       time.Time
	CreatedAt        time.Time
}

func (ConversionModel) TableName() string {
	return "conversion_events"
}

// CostModel is the persistence model for campaign_costs.
type CostModel struct {
	ID          string              `gorm:"type:uuid;primaryKey"`
	CampaignID  string              `gorm:"type:uuid;not null"`
	Category    domain.CostCategory `gorm:"type:varchar(12);not null"`
	Amount      float64             `gorm:"not null"`
	Description string              `gorm:"type:text"`
	IncurredAt  time.Time
	CreatedAt   time.Time
}

func (CostModel) TableName() string {
	return "campaign_costs"
}

// FailedWebhookModel is the persistence model for failed_webhooks.
type FailedWebhookModel struct {
	ID                string               `gorm:"type:uuid;primaryKey"`
	EventID           string               `gorm:"type:varchar(255);not null"`
	Endpoint          string               `gorm:"type:text;not null"`
	Payload           string               `gorm:"type:text;not null"`
	Status            domain.WebhookStatus `gorm:"type:varchar(12);not null"`
	RetryCount        int                  `gorm:"not null;default:0"`
	MaxRetries        int                  `gorm:"not null;default:5"`
	BackoffMultiplier float64              `gorm:"not null;default:2"`
	BaseDelaySeconds  int                  `gorm:"not null;default:30"`
	NextRetryAt       *time.Time
	LastError         *string `gorm:"type:text"`
	ResolvedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (FailedWebhookModel) TableName() string {
	return "failed_webhooks"
}

// EngagementEventModel is the persistence model for engagement_events.
type EngagementEventModel struct {
	ID         string                `gorm:"type:uuid;primaryKey"`
	ContactID  string                `gorm:"type:uuid;not null"`
	CampaignID *string               `gorm:"type:uuid"`
	Type       domain.EngagementType `gorm:"type:varchar(12);not null"`
	Value      float64               `gorm:"not null;default:0"`
	OccurredAt time.Time
	CreatedAt  time.Time
}

func (EngagementEventModel) TableName() string {
	return "engagement_events"
}

// SettingModel is the persistence model for settings.
type SettingModel struct {
	Key       string `gorm:"primaryKey;type:varchar(255)"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (SettingModel) TableName() string {
	return "settings"
}

// QuickBooksAuthModel is the persistence model for quickbooks_auth.
type QuickBooksAuthModel struct {
	RealmID      string `gorm:"primaryKey;type:varchar(64)"`
	AccessToken  string `gorm:"type:text;not null"`
	RefreshToken string `gorm:"type:text;not null"`
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (QuickBooksAuthModel) TableName() string {
	return "quickbooks_auth"
}

func membershipModelFromDomain(m *domain.CampaignMembership) *MembershipModel {
	if m == nil {
		return nil
	}
	return &MembershipModel{
		ID:         m.ID,
		CampaignID: m.CampaignID,
		ContactID:  m.ContactID,
		Status:     m.Status,
		Variant:    m.Variant,
		SentAt:     m.SentAt,
		RepliedAt:  m.RepliedAt,
		Sentiment:  m.Sentiment,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func membershipModelToDomain(m *MembershipModel) *domain.CampaignMembership {
	if m == nil {
		return nil
	}
	return &domain.CampaignMembership{
		ID:         m.ID,
		CampaignID: m.CampaignID,
		ContactID:  m.ContactID,
		Status:     m.Status,
		Variant:    m.Variant,
		SentAt:     m.SentAt,
		RepliedAt:  m.RepliedAt,
		Sentiment:  m.Sentiment,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func responseModelFromDomain(r *domain.CampaignResponse) *ResponseModel {
	if r == nil {
		return nil
	}
	return &ResponseModel{
		ID:              r.ID,
		CampaignID:      r.CampaignID,
		ContactID:       r.ContactID,
		Body:            r.Body,
		Sentiment:       r.Sentiment,
		Intent:          r.Intent,
		ResponseSeconds: r.ResponseSeconds,
		ReceivedAt:      r.ReceivedAt,
		CreatedAt:       r.CreatedAt,
	}
}

func responseModelToDomain(m *ResponseModel) *domain.CampaignResponse {
	if m == nil {
		return nil
	}
	return &domain.CampaignResponse{
		ID:              m.ID,
		CampaignID:      m.CampaignID,
		ContactID:       m.ContactID,
		Body:            m.Body,
		Sentiment:       m.Sentiment,
		Intent:          m.Intent,
		ResponseSeconds: m.ResponseSeconds,
		ReceivedAt:      m.ReceivedAt,
		CreatedAt:       m.CreatedAt,
	}
}

func conversionModelFromDomain(e *domain.ConversionEvent) *ConversionModel {
	if e == nil {
		return nil
	}
	return &ConversionModel{
		ID:               e.ID,
		CampaignID:       e.CampaignID,
		ContactID:        e.ContactID,
		Type:             e.Type,
		Value:            e.Value,
		AttributionModel: e.AttributionModel,
		OccurredAt:       e.OccurredAt,
		CreatedAt:        e.CreatedAt,
	}
}

func conversionModelToDomain(m *ConversionModel) *domain.ConversionEvent {
	if m == nil {
		return nil
	}
	return &domain.ConversionEvent{
		ID:               m.ID,
		CampaignID:       m.CampaignID,
		ContactID:        m.ContactID,
		Type:             m.Type,
		Value:            m.Value,
		AttributionModel: m.AttributionModel,
		OccurredAt:       m.OccurredAt,
		CreatedAt:        m.CreatedAt,
	}
}

func costModelFromDomain(c *domain.CampaignCost) *CostModel {
	if c == nil {
		return nil
	}
	return &CostModel{
		ID:          c.ID,
		CampaignID:  c.CampaignID,
		Category:    c.Category,
		Amount:      c.Amount,
		Description: c.Description,
		IncurredAt:  c.IncurredAt,
		CreatedAt:   c.CreatedAt,
	}
}

func costModelToDomain(m *CostModel) *domain.CampaignCost {
	if m == nil {
		return nil
	}
	return &domain.CampaignCost{
		ID:          m.ID,
		CampaignID:  m.CampaignID,
		Category:    m.Category,
		Amount:      m.Amount,
		Description: m.Description,
		IncurredAt:  m.IncurredAt,
		CreatedAt:   m.CreatedAt,
	}
}

func webhookModelFromDomain(w *domain.FailedWebhook) *FailedWebhookModel {
	if w == nil {
		return nil
	}
	return &FailedWebhookModel{
		ID:                w.ID,
		EventID:           w.EventID,
		Endpoint:          w.Endpoint,
		Payload:           w.Payload,
		Status:            w.Status,
		RetryCount:        w.RetryCount,
		MaxRetries:        w.MaxRetries,
		BackoffMultiplier: w.BackoffMultiplier,
		BaseDelaySeconds:  w.BaseDelaySeconds,
		NextRetryAt:       w.NextRetryAt,
		LastError:         w.LastError,
		ResolvedAt:        w.ResolvedAt,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

func webhookModelToDomain(m *FailedWebhookModel) *domain.FailedWebhook {
	if m == nil {
		return nil
	}
	return &domain.FailedWebhook{
		ID:                m.ID,
		EventID:           m.EventID,
		Endpoint:          m.Endpoint,
		Payload:           m.Payload,
		Status:            m.Status,
		RetryCount:        m.RetryCount,
		MaxRetries:        m.MaxRetries,
		BackoffMultiplier: m.BackoffMultiplier,
		BaseDelaySeconds:  m.BaseDelaySeconds,
		NextRetryAt:       m.NextRetryAt,
		LastError:         m.LastError,
		ResolvedAt:        m.ResolvedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func engagementEventModelFromDomain(e *domain.EngagementEvent) *EngagementEventModel {
	if e == nil {
		return nil
	}
	return &EngagementEventModel{
		ID:         e.ID,
		ContactID:  e.ContactID,
		CampaignID: e.CampaignID,
		Type:       e.Type,
		Value:      e.Value,
		OccurredAt: e.OccurredAt,
		CreatedAt:  e.CreatedAt,
	}
}

func engagementEventModelToDomain(m *EngagementEventModel) *domain.EngagementEvent {
	if m == nil {
		return nil
	}
	return &domain.EngagementEvent{
		ID:         m.ID,
		ContactID:  m.ContactID,
		CampaignID: m.CampaignID,
		Type:       m.Type,
		Value:      m.Value,
		OccurredAt: m.OccurredAt,
		CreatedAt:  m.CreatedAt,
	}
}
