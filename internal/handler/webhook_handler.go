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

type WebhookRecoveryService interface {
	Enqueue(ctx context.Context, input service.FailedWebhookInput) result.Result[domain.FailedWebhook]
	Get(ctx context.Context, id string) result.Result[domain.FailedWebhook]
	List(ctx context.Context, status string, page, pageSize int) result.PagedResult[domain.FailedWebhook]
	Resolve(ctx context.Context, id string) result.Result[domain.FailedWebhook]
}

type WebhookHandler struct {
	service WebhookRecoveryService
}

func NewWebhookHandler(service WebhookRecoveryService) (*WebhookHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("webhook recovery service is required")
	}
	return &WebhookHandler{service: service}, nil
}

func RegisterWebhookRoutes(router fiber.Router, service WebhookRecoveryService) error {
	h, err := NewWebhookHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/webhooks/failed", h.EnqueueFailedWebhook)
	v1.Get("/webhooks/failed", h.ListFailedWebhooks)
	v1.Get("/webhooks/failed/:id", h.GetFailedWebhook)
	v1.Post("/webhooks/failed/:id/resolve", h.ResolveFailedWebhook)

	return nil
}

type enqueueWebhookRequest struct {
	EventID           string  `json:"eventId"`
	Endpoint          string  `json:"endpoint"`
	Payload           string  `json:"payload"`
	MaxRetries        int     `json:"maxRetries,omitempty"`
	BackoffMultiplier float64 `json:"backoffMultiplier,omitempty"`
	BaseDelaySeconds  int     `json:"baseDelaySeconds,omitempty"`
	LastError         string  `json:"lastError,omitempty"`
}

type failedWebhookResponse struct {
	ID                string     `json:"id"`
	EventID           string     `json:"eventId"`
	Endpoint          string     `json:"endpoint"`
	Status            string     `json:"status"`
	RetryCount        int        `json:"retryCount"`
	MaxRetries        int        `json:"maxRetries"`
	BackoffMultiplier float64    `json:"backoffMultiplier"`
	BaseDelaySeconds  int        `json:"baseDelaySeconds"`
	NextRetryAt       *time.Time `json:"nextRetryAt,omitempty"`
	LastError         *string    `json:"lastError,omitempty"`
	ResolvedAt        *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type listWebhooksResponse struct {
	Data []failedWebhookResponse `json:"data"`
	Meta listMeta                `json:"meta"`
}

func (h *WebhookHandler) EnqueueFailedWebhook(c *fiber.Ctx) error {
	var req enqueueWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res := h.service.Enqueue(c.Context(), service.FailedWebhookInput{
		EventID:           strings.TrimSpace(req.EventID),
		Endpoint:          strings.TrimSpace(req.Endpoint),
		Payload:           req.Payload,
		MaxRetries:        req.MaxRetries,
		BackoffMultiplier: req.BackoffMultiplier,
		BaseDelaySeconds:  req.BaseDelaySeconds,
		LastError:         strings.TrimSpace(req.LastError),
	})
	if !res.OK() {
		return resultError(res)
	}

	return c.Status(fiber.StatusCreated).JSON(toFailedWebhookResponse(res.Data()))
}

func (h *WebhookHandler) GetFailedWebhook(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	res := h.service.Get(c.Context(), id)
	if !res.OK() {
		return resultError(res)
	}

	return c.Status(fiber.StatusOK).JSON(toFailedWebhookResponse(res.Data()))
}

func (h *WebhookHandler) ListFailedWebhooks(c *fiber.Ctx) error {
	page, pageSize, err := parsePaging(c)
	if err != nil {
		return err
	}

	paged := h.service.List(c.Context(), c.Query("status"), page, pageSize)
	if !paged.OK() {
		return resultError(paged.Result)
	}

	items := make([]failedWebhookResponse, 0, len(paged.Data()))
	for _, hook := range paged.Data() {
		items = append(items, toFailedWebhookResponse(hook))
	}

	return c.Status(fiber.StatusOK).JSON(listWebhooksResponse{
		Data: items,
		Meta: toListMeta(paged),
	})
}

func (h *WebhookHandler) ResolveFailedWebhook(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	res := h.service.Resolve(c.Context(), id)
	if !res.OK() {
		return resultError(res)
	}

	return c.Status(fiber.StatusOK).JSON(toFailedWebhookResponse(res.Data()))
}

func toFailedWebhookResponse(hook domain.FailedWebhook) failedWebhookResponse {
	return failedWebhookResponse{
		ID:                hook.ID,
		EventID:           hook.EventID,
		Endpoint:          hook.Endpoint,
		Status:            hook.Status.String(),
		RetryCount:        hook.RetryCount,
		MaxRetries:        hook.MaxRetries,
		BackoffMultiplier: hook.BackoffMultiplier,
		BaseDelaySeconds:  hook.BaseDelaySeconds,
		NextRetryAt:       hook.NextRetryAt,
		LastError:         hook.LastError,
		ResolvedAt:        hook.ResolvedAt,
		CreatedAt:         hook.CreatedAt,
		UpdatedAt:         hook.UpdatedAt,
	}
}
