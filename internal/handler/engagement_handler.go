package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/result"
)

type EngagementService interface {
	RecordEvent(ctx context.Context, input domain.EngagementEvent) result.Result[domain.EngagementEvent]
	Score(ctx context.Context, contactID string) result.Result[domain.EngagementScore]
}

type EngagementHandler struct {
	service EngagementService
}

func NewEngagementHandler(service EngagementService) (*EngagementHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("engagement service is required")
	}
	return &EngagementHandler{service: service}, nil
}

func RegisterEngagementRoutes(router fiber.Router, service EngagementService) error {
	h, err := NewEngagementHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/engagement/events", h.RecordEvent)
	v1.Get("/contacts/:id/engagement", h.GetScore)

	return nil
}

type recordEngagementRequest struct {
	ContactID  string  `json:"contactId"`
	CampaignID string  `json:"campaignId,omitempty"`
	Type       string  `json:"type"`
	Value      float64 `json:"value,omitempty"`
	OccurredAt string  `json:"occurredAt,omitempty"`
}

type engagementEventResponse struct {
	ID         string    `json:"id"`
	ContactID  string    `json:"contactId"`
	CampaignID *string   `json:"campaignId,omitempty"`
	Type       string    `json:"type"`
	Value      float64   `json:"value"`
	OccurredAt time.Time `json:"occurredAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

type engagementScoreResponse struct {
	ContactID             string    `json:"contactId"`
	Recency               float64   `json:"recency"`
	Frequency             float64   `json:"frequency"`
	Monetary              float64   `json:"monetary"`
	TimeDecay             float64   `json:"timeDecay"`
	Diversity             float64   `json:"diversity"`
	Total                 float64   `json:"total"`
	ConversionProbability float64   `json:"conversionProbability"`
	EventCount            int       `json:"eventCount"`
	ComputedAt            time.Time `json:"computedAt"`
}

func (h *EngagementHandler) RecordEvent(c *fiber.Ctx) error {
	var req recordEngagementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	eventType, err := domain.ParseEngagementType(req.Type)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	event := domain.EngagementEvent{
		ContactID: strings.TrimSpace(req.ContactID),
		Type:      eventType,
		Value:     req.Value,
	}
	if campaignID := strings.TrimSpace(req.CampaignID); campaignID != "" {
		event.CampaignID = &campaignID
	}
	if occurredAt, err := parseRFC3339Body(req.OccurredAt, "occurredAt"); err != nil {
		return err
	} else if !occurredAt.IsZero() {
		event.OccurredAt = occurredAt
	}

	res := h.service.RecordEvent(c.Context(), event)
	if !res.OK() {
		return resultError(res)
	}

	created := res.Data()
	return c.Status(fiber.StatusCreated).JSON(engagementEventResponse{
		ID:         created.ID,
		ContactID:  created.ContactID,
		CampaignID: created.CampaignID,
		Type:       created.Type.String(),
		Value:      created.Value,
		OccurredAt: created.OccurredAt,
		CreatedAt:  created.CreatedAt,
	})
}

func (h *EngagementHandler) GetScore(c *fiber.Ctx) error {
	contactID := strings.TrimSpace(c.Params("id"))
	res := h.service.Score(c.Context(), contactID)
	if !res.OK() {
		return resultError(res)
	}

	score := res.Data()
	return c.Status(fiber.StatusOK).JSON(engagementScoreResponse{
		ContactID:             score.ContactID,
		Recency:               score.Recency,
		Frequency:             score.Frequency,
		Monetary:              score.Monetary,
		TimeDecay:             score.TimeDecay,
		Diversity:             score.Diversity,
		Total:                 score.Total,
		ConversionProbability: score.ConversionProbability,
		EventCount:            score.EventCount,
		ComputedAt:            score.ComputedAt,
	})
}
