package queue

import (
	"fmt"
	"strings"
	"time"
)

// ResponseMessage is the broker payload for one inbound campaign reply.
type ResponseMessage struct {
	EventID       string    `json:"eventId"`
	CampaignID    string    `json:"campaignId"`
	ContactID     string    `json:"contactId"`
	Body          string    `json:"body,omitempty"`
	ReceivedAt    time.Time `json:"receivedAt"`
	CorrelationID string    `json:"correlationId,omitempty"`
}

func (m ResponseMessage) Validate() error {
	if strings.TrimSpace(m.EventID) == "" {
		return fmt.Errorf("eventId is required")
	}
	if strings.TrimSpace(m.CampaignID) == "" {
		return fmt.Errorf("campaignId is required")
	}
	if strings.TrimSpace(m.ContactID) == "" {
		return fmt.Errorf("contactId is required")
	}
	if m.ReceivedAt.IsZero() {
		return fmt.Errorf("receivedAt is required")
	}
	return nil
}
