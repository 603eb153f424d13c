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

type SettingsService interface {
	Get(ctx context.Context, key string) result.Result[domain.Setting]
	Set(ctx context.Context, key, value string) result.Result[domain.Setting]
	SaveQuickBooksAuth(ctx context.Context, auth domain.QuickBooksAuth) result.Result[domain.QuickBooksAuth]
	QuickBooksAuth(ctx context.Context, realmID string) result.Result[domain.QuickBooksAuth]
}

type SettingsHandler struct {
	service SettingsService
}

func NewSettingsHandler(service SettingsService) (*SettingsHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("settings service is required")
	}
	return &SettingsHandler{service: service}, nil
}

func RegisterSettingsRoutes(router fiber.Router, service SettingsService) error {
	h, err := NewSettingsHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/settings/:key", h.GetSetting)
	v1.Put("/settings/:key", h.PutSetting)
	v1.Put("/integrations/quickbooks", h.SaveQuickBooksAuth)
	v1.Get("/integrations/quickbooks/:realmId", h.GetQuickBooksAuth)

	return nil
}

type putSettingRequest struct {
	Value string `json:"value"`
}

type settingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type quickBooksAuthRequest struct {
	RealmID      string `json:"realmId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    string `json:"expiresAt"`
}

type quickBooksAuthResponse struct {
	RealmID   string    `json:"realmId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Expired   bool      `json:"expired"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *SettingsHandler) GetSetting(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Params("key"))
	res := h.service.Get(c.Context(), key)
	if !res.OK() {
		return resultError(res)
	}

	return c.Status(fiber.StatusOK).JSON(toSettingResponse(res.Data()))
}

func (h *SettingsHandler) PutSetting(c *fiber.Ctx) error {
	var req putSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	key := strings.TrimSpace(c.Params("key"))
	res := h.service.Set(c.Context(), key, req.Value)
	if !res.OK() {
		return resultError(res)
	}

	return c.Status(fiber.StatusOK).JSON(toSettingResponse(res.Data()))
}

func (h *SettingsHandler) SaveQuickBooksAuth(c *fiber.Ctx) error {
	var req quickBooksAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	expiresAt, err := parseRFC3339Body(req.ExpiresAt, "expiresAt")
	if err != nil {
		return err
	}

	res := h.service.SaveQuickBooksAuth(c.Context(), domain.QuickBooksAuth{
		RealmID:      strings.TrimSpace(req.RealmID),
		AccessToken:  strings.TrimSpace(req.AccessToken),
		RefreshToken: strings.TrimSpace(req.RefreshToken),
		ExpiresAt:    expiresAt,
	})
	if !res.OK() {
		return resultError(res)
	}

	return c.Status(fiber.StatusOK).JSON(toQuickBooksAuthResponse(res))
}

func (h *SettingsHandler) GetQuickBooksAuth(c *fiber.Ctx) error {
	realmID := strings.TrimSpace(c.Params("realmId"))
	res := h.service.QuickBooksAuth(c.Context(), realmID)
	if !res.OK() {
		return resultError(res)
	}

	return c.Status(fiber.StatusOK).JSON(toQuickBooksAuthResponse(res))
}

func toSettingResponse(s domain.Setting) settingResponse {
	return settingResponse{
		Key:       s.Key,
		Value:     s.Value,
		UpdatedAt: s.UpdatedAt,
	}
}

// Tokens never leave the service over HTTP; the response carries only the
// realm and expiry state.
func toQuickBooksAuthResponse(res result.Result[domain.QuickBooksAuth]) quickBooksAuthResponse {
	expired := false
	if v, ok := res.Meta("expired"); ok {
		expired, _ = v.(bool)
	}

	auth := res.Data()
	return quickBooksAuthResponse{
		RealmID:   auth.RealmID,
		ExpiresAt: auth.ExpiresAt,
		Expired:   expired,
		UpdatedAt: auth.UpdatedAt,
	}
}
