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

type MembershipService interface {
	Enroll(ctx context.Context, input service.MembershipInput) result.Result[domain.CampaignMembership]
	Get(ctx context.Context, id string) result.Result[domain.CampaignMembership]
}

type MembershipHandler struct {
	service MembershipService
}

func NewMembershipHandler(service MembershipService) (*MembershipHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("membership service is required")
	}
	return &MembershipHandler{service: service}, nil
}

func RegisterMembershipRoutes(router fiber.Router, service MembershipService) error {
	h, err := NewMembershipHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/memberships", h.EnrollContact)
	v1.Get("/memberships/:id", h.GetMembership)

	return nil
}

type enrollMembershipRequest struct {
	ContactID  string `json:"contactId"`
	CampaignID string `json:"campaignId"`
	Variant    string `json:"variant,omitempty"`
	SentAt     string `json:"sentAt,omitempty"`
}

type membershipResponse struct {
	ID         string     `json:"id"`
	ContactID  string     `json:"contactId"`
	CampaignID string     `json:"campaignId"`
	Status     string     `json:"status"`
	Variant    string     `json:"variant,omitempty"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
	RepliedAt  *time.Time `json:"repliedAt,omitempty"`
	Sentiment  *string    `json:"sentiment,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (h *MembershipHandler) EnrollContact(c *fiber.Ctx) error {
	var req enrollMembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	input := service.MembershipInput{
		ContactID:  strings.TrimSpace(req.ContactID),
		CampaignID: strings.TrimSpace(req.CampaignID),
		Variant:    strings.TrimSpace(req.Variant),
	}
	if sentAt, err := parseRFC3339Body(req.SentAt, "sentAt"); err != nil {
		return err
	} else if !sentAt.IsZero() {
		input.SentAt = &sentAt
	}

	res := h.service.Enroll(c.Context(), input)
	if !res.OK() {
		return resultError(res)
	}

	return c.Status(fiber.StatusCreated).JSON(toMembershipResponse(res.Data()))
}

func (h *MembershipHandler) GetMembership(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	res := h.service.Get(c.Context(), id)
	if !res.OK() {
		return resultError(res)
	}

	return c.Status(fiber.StatusOK).JSON(toMembershipResponse(res.Data()))
}

func toMembershipResponse(m domain.CampaignMembership) membershipResponse {
	resp := membershipResponse{
		ID:         m.ID,
		ContactID:  m.ContactID,
		CampaignID: m.CampaignID,
		Status:     m.Status.String(),
		Variant:    m.Variant,
		SentAt:     m.SentAt,
		RepliedAt:  m.RepliedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Sentiment != nil {
		s := m.Sentiment.String()
		resp.Sentiment = &s
	}
	return resp
}
