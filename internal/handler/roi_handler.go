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

type ROIService interface {
	RecordCost(ctx context.Context, input service.CostInput) result.Result[domain.CampaignCost]
	Analyze(ctx context.Context, campaignID string) result.Result[domain.ROIAnalysis]
	ListCosts(ctx context.Context, campaignID string) result.Result[[]domain.CampaignCost]
}

type ROIHandler struct {
	service ROIService
}

func NewROIHandler(service ROIService) (*ROIHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("roi service is required")
	}
	return &ROIHandler{service: service}, nil
}

func RegisterROIRoutes(router fiber.Router, service ROIService) error {
	h, err := NewROIHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/costs", h.RecordCost)
	v1.Get("/campaigns/:id/roi", h.GetROI)
	v1.Get("/campaigns/:id/costs", h.ListCosts)

	return nil
}

type recordCostRequest struct {
	CampaignID  string  `json:"campaignId"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	IncurredAt  string  `json:"incurredAt,omitempty"`
}

type costResponse struct {
	ID          string    `json:"id"`
	CampaignID  string    `json:"campaignId"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	IncurredAt  time.Time `json:"incurredAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

type roiResponse struct {
	CampaignID   string    `json:"campaignId"`
	Revenue      float64   `json:"revenue"`
	Cost         float64   `json:"cost"`
	CostDefined  bool      `json:"costDefined"`
	ROIPercent   float64   `json:"roiPercent"`
	ROAS         float64   `json:"roas"`
	CAC          float64   `json:"cac"`
	LTV          float64   `json:"ltv"`
	Conversions  int64     `json:"conversions"`
	NewCustomers int64     `json:"newCustomers"`
	ComputedAt   time.Time `json:"computedAt"`
}

type listCostsResponse struct {
	Data []costResponse `json:"data"`
}

func (h *ROIHandler) RecordCost(c *fiber.Ctx) error {
	var req recordCostRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	input := service.CostInput{
		CampaignID:  strings.TrimSpace(req.CampaignID),
		Category:    strings.TrimSpace(req.Category),
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
	}
	if incurredAt, err := parseRFC3339Body(req.IncurredAt, "incurredAt"); err != nil {
		return err
	} else if !incurredAt.IsZero() {
		input.IncurredAt = incurredAt
	}

	res := h.service.RecordCost(c.Context(), input)
	if !res.OK() {
		return resultError(res)
	}

	return c.Status(fiber.StatusCreated).JSON(toCostResponse(res.Data()))
}

func (h *ROIHandler) GetROI(c *fiber.Ctx) error {
	campaignID := strings.TrimSpace(c.Params("id"))
	res := h.service.Analyze(c.Context(), campaignID)
	if !res.OK() {
		return resultError(res)
	}

	a := res.Data()
	return c.Status(fiber.StatusOK).JSON(roiResponse{
		CampaignID:   a.CampaignID,
		Revenue:      a.Revenue,
		Cost:         a.Cost,
		CostDefined:  a.CostDefined,
		ROIPercent:   a.ROIPercent,
		ROAS:         a.ROAS,
		CAC:          a.CAC,
		LTV:          a.LTV,
		Conversions:  a.Conversions,
		NewCustomers: a.NewCustomers,
		ComputedAt:   a.ComputedAt,
	})
}

func (h *ROIHandler) ListCosts(c *fiber.Ctx) error {
	campaignID := strings.TrimSpace(c.Params("id"))
	res := h.service.ListCosts(c.Context(), campaignID)
	if !res.OK() {
		return resultError(res)
	}

	items := make([]costResponse, 0, len(res.Data()))
	for _, cost := range res.Data() {
		items = append(items, toCostResponse(cost))
	}

	return c.Status(fiber.StatusOK).JSON(listCostsResponse{Data: items})
}

func toCostResponse(cost domain.CampaignCost) costResponse {
	return costResponse{
		ID:          cost.ID,
		CampaignID:  cost.CampaignID,
		Category:    cost.Category.String(),
		Amount:      cost.Amount,
		Description: cost.Description,
		IncurredAt:  cost.IncurredAt,
		CreatedAt:   cost.CreatedAt,
	}
}
