package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/result"
	"github.com/mirelhq/campaign-insights/internal/service"
)

type ConversionService interface {
	RecordConversion(ctx context.Context, input service.ConversionInput) result.Result[domain.ConversionEvent]
	AttributionBreakdown(ctx context.Context, conversionID string) result.Result[[]service.AttributedCredit]
	ListConversions(ctx context.Context, campaignID string, page, pageSize int) result.PagedResult[domain.ConversionEvent]
}

type ConversionHandler struct {
	service ConversionService
}

func NewConversionHandler(service ConversionService) (*ConversionHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("conversion service is required")
	}
	return &ConversionHandler{service: service}, nil
}

func RegisterConversionRoutes(router fiber.Router, service ConversionService) error {
	h, err := NewConversionHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/conversions", h.RecordConversion)
	v1.Get("/conversions/:id/attribution", h.GetAttribution)
	v1.Get("/campaigns/:id/conversions", h.ListConversions)

	return nil
}

type recordConversionRequest struct {
	ContactID        string  `json:"contactId"`
	CampaignID       string  `json:"campaignId"`
	Type             string  `json:"type"`
	Value            float64 `json:"value"`
	AttributionModel string  `json:"attributionModel,omitempty"`
	OccurredAt       string  `json:"occurredAt,omitempty"`
}

type conversionResponse struct {
	ID               string    `json:"id"`
	ContactID        string    `json:"contactId"`
	CampaignID       string    `json:"campaignId"`
	Type             string    `json:"type"`
	Value            float64   `json:"value"`
	AttributionModel string    `json:"attributionModel"`
	OccurredAt       time.Time `json:"occurredAt"`
	CreatedAt        time.Time `json:"createdAt"`
}

type attributionResponse struct {
	ConversionID string                     `json:"conversionId"`
	Model        string                     `json:"model"`
	Credits      []service.AttributedCredit `json:"credits"`
}

type listConversionsResponse struct {
	Data []conversionResponse `json:"data"`
	Meta listMeta             `json:"meta"`
}

func (h *ConversionHandler) RecordConversion(c *fiber.Ctx) error {
	var req recordConversionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	input := service.ConversionInput{
		ContactID:        strings.TrimSpace(req.ContactID),
		CampaignID:       strings.TrimSpace(req.CampaignID),
		Type:             strings.TrimSpace(req.Type),
		Value:            req.Value,
		AttributionModel: strings.TrimSpace(req.AttributionModel),
	}
	if occurredAt, err := parseRFC3339Body(req.OccurredAt, "occurredAt"); err != nil {
		return err
	} else if !occurredAt.IsZero() {
		input.OccurredAt = occurredAt
	}

	res := h.service.RecordConversion(c.Context(), input)
	if !res.OK() {
		return resultError(res)
	}

	return c.Status(fiber.StatusCreated).JSON(toConversionResponse(res.Data()))
}

func (h *ConversionHandler) GetAttribution(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	res := h.service.AttributionBreakdown(c.Context(), id)
	if !res.OK() {
		return resultError(res)
	}

	model := ""
	if v, ok := res.Meta("model"); ok {
		model, _ = v.(string)
	}

	return c.Status(fiber.StatusOK).JSON(attributionResponse{
		ConversionID: id,
		Model:        model,
		Credits:      res.Data(),
	})
}

func (h *ConversionHandler) ListConversions(c *fiber.Ctx) error {
	campaignID := strings.TrimSpace(c.Params("id"))
	page, pageSize, err := parsePaging(c)
	if err != nil {
		return err
	}

	paged := h.service.ListConversions(c.Context(), campaignID, page, pageSize)
	if !paged.OK() {
		return resultError(paged.Result)
	}

	items := make([]conversionResponse, 0, len(paged.Data()))
	for _, e := range paged.Data() {
		items = append(items, toConversionResponse(e))
	}

	return c.Status(fiber.StatusOK).JSON(listConversionsResponse{
		Data: items,
		Meta: toListMeta(paged),
	})
}

func toConversionResponse(e domain.ConversionEvent) conversionResponse {
	return conversionResponse{
		ID:               e.ID,
		ContactID:        e.ContactID,
		CampaignID:       e.CampaignID,
		Type:             e.Type.String(),
		Value:            e.Value,
		AttributionModel: e.AttributionModel.String(),
		OccurredAt:       e.OccurredAt,
		CreatedAt:        e.CreatedAt,
	}
}
