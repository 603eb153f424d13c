package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/observability"
	"github.com/mirelhq/campaign-insights/internal/queue"
	"github.com/mirelhq/campaign-insights/internal/result"
	"github.com/mirelhq/campaign-insights/internal/service"
)

type ResponseIntakeService interface {
	Submit(ctx context.Context, msg queue.ResponseMessage) result.Result[queue.ResponseMessage]
}

type ResponseAnalyticsService interface {
	Summary(ctx context.Context, campaignID string, confidence int) result.Result[service.ResponseSummary]
	CompareVariants(ctx context.Context, campaignID string, alpha float64) result.Result[service.VariantComparison]
	ListResponses(ctx context.Context, campaignID string, page, pageSize int) result.PagedResult[domain.CampaignResponse]
}

type ResponseHandler struct {
	intake    ResponseIntakeService
	analytics ResponseAnalyticsService
}

func NewResponseHandler(intake ResponseIntakeService, analytics ResponseAnalyticsService) (*ResponseHandler, error) {
	if intake == nil {
		return nil, fmt.Errorf("response intake service is required")
	}
	if analytics == nil {
		return nil, fmt.Errorf("response analytics service is required")
	}
	return &ResponseHandler{intake: intake, analytics: analytics}, nil
}

func RegisterResponseRoutes(router fiber.Router, intake ResponseIntakeService, analytics ResponseAnalyticsService) error {
	h, err := NewResponseHandler(intake, analytics)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/responses", h.SubmitResponse)
	v1.Get("/campaigns/:id/responses", h.ListResponses)
	v1.Get("/campaigns/:id/responses/summary", h.GetSummary)
	v1.Get("/campaigns/:id/variants/compare", h.CompareVariants)

	return nil
}

type submitResponseRequest struct {
	EventID    string `json:"eventId,omitempty"`
	ContactID  string `json:"contactId"`
	CampaignID string `json:"campaignId"`
	Body       string `json:"body,omitempty"`
	ReceivedAt string `json:"receivedAt,omitempty"`
}

type submitResponseResponse struct {
	EventID    string    `json:"eventId"`
	ContactID  string    `json:"contactId"`
	CampaignID string    `json:"campaignId"`
	ReceivedAt time.Time `json:"receivedAt"`
	Status     string    `json:"status"`
}

type campaignResponseItem struct {
	ID              string    `json:"id"`
	ContactID       string    `json:"contactId"`
	CampaignID      string    `json:"campaignId"`
	Body            string    `json:"body,omitempty"`
	Sentiment       string    `json:"sentiment"`
	Intent          string    `json:"intent"`
	ResponseSeconds float64   `json:"responseSeconds"`
	ReceivedAt      time.Time `json:"receivedAt"`
}

type listResponsesResponse struct {
	Data []campaignResponseItem `json:"data"`
	Meta listMeta               `json:"meta"`
}

type summaryResponse struct {
	service.ResponseSummary
	Cached bool `json:"cached"`
}

func (h *ResponseHandler) SubmitResponse(c *fiber.Ctx) error {
	var req submitResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	msg := queue.ResponseMessage{
		EventID:    strings.TrimSpace(req.EventID),
		ContactID:  strings.TrimSpace(req.ContactID),
		CampaignID: strings.TrimSpace(req.CampaignID),
		Body:       req.Body,
	}
	if receivedAt, err := parseRFC3339Body(req.ReceivedAt, "receivedAt"); err != nil {
		return err
	} else if !receivedAt.IsZero() {
		msg.ReceivedAt = receivedAt
	}

	ctx := observability.WithCorrelationID(c.Context(), requestCorrelationID(c))
	res := h.intake.Submit(ctx, msg)
	if !res.OK() {
		return resultError(res)
	}

	accepted := res.Data()
	return c.Status(fiber.StatusAccepted).JSON(submitResponseResponse{
		EventID:    accepted.EventID,
		ContactID:  accepted.ContactID,
		CampaignID: accepted.CampaignID,
		ReceivedAt: accepted.ReceivedAt,
		Status:     "queued",
	})
}

func (h *ResponseHandler) ListResponses(c *fiber.Ctx) error {
	campaignID := strings.TrimSpace(c.Params("id"))
	page, pageSize, err := parsePaging(c)
	if err != nil {
		return err
	}

	paged := h.analytics.ListResponses(c.Context(), campaignID, page, pageSize)
	if !paged.OK() {
		return resultError(paged.Result)
	}

	items := make([]campaignResponseItem, 0, len(paged.Data()))
	for _, r := range paged.Data() {
		items = append(items, campaignResponseItem{
			ID:              r.ID,
			ContactID:       r.ContactID,
			CampaignID:      r.CampaignID,
			Body:            r.Body,
			Sentiment:       r.Sentiment.String(),
			Intent:          r.Intent.String(),
			ResponseSeconds: r.ResponseSeconds,
			ReceivedAt:      r.ReceivedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(listResponsesResponse{
		Data: items,
		Meta: toListMeta(paged),
	})
}

func (h *ResponseHandler) GetSummary(c *fiber.Ctx) error {
	campaignID := strings.TrimSpace(c.Params("id"))
	confidence := c.QueryInt("confidence", 0)

	res := h.analytics.Summary(c.Context(), campaignID, confidence)
	if !res.OK() {
		return resultError(res)
	}

	cached := false
	if v, ok := res.Meta("cached"); ok {
		cached, _ = v.(bool)
	}

	return c.Status(fiber.StatusOK).JSON(summaryResponse{
		ResponseSummary: res.Data(),
		Cached:          cached,
	})
}

func (h *ResponseHandler) CompareVariants(c *fiber.Ctx) error {
	campaignID := strings.TrimSpace(c.Params("id"))

	var alpha float64
	if raw := strings.TrimSpace(c.Query("alpha")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 || parsed >= 1 {
			return fiber.NewError(fiber.StatusBadRequest, "alpha must be a number in (0, 1)")
		}
		alpha = parsed
	}

	res := h.analytics.CompareVariants(c.Context(), campaignID, alpha)
	if !res.OK() {
		return resultError(res)
	}

	return c.Status(fiber.StatusOK).JSON(res.Data())
}
