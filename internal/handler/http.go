package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mirelhq/campaign-insights/internal/result"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100
)

type listMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// requestCorrelationID pulls the caller-supplied request id, falling back to
// the one the requestid middleware generated.
func requestCorrelationID(c *fiber.Ctx) string {
	if id := c.Get(fiber.HeaderXRequestID); id != "" {
		return id
	}
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// resultError maps a failed service result to the HTTP error the transport
// error handler will render.
func resultError[T any](r result.Result[T]) error {
	switch r.Code() {
	case result.CodeValidation,
		result.CodeMissingContactID,
		result.CodeMissingCampaignID,
		result.CodeInvalidValue,
		result.CodeInvalidType:
		return fiber.NewError(fiber.StatusBadRequest, r.Error())
	case result.CodeNotFound:
		return fiber.NewError(fiber.StatusNotFound, r.Error())
	case result.CodeDuplicateEvent:
		return fiber.NewError(fiber.StatusConflict, r.Error())
	case result.CodePublish:
		return fiber.NewError(fiber.StatusBadGateway, r.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, r.Error())
	}
}

func parsePaging(c *fiber.Ctx) (page, pageSize int, err error) {
	page = c.QueryInt("page", defaultPage)
	pageSize = c.QueryInt("pageSize", defaultPageSize)

	if page < 1 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "page must be >= 1")
	}
	if pageSize < 1 || pageSize > maxPageSize {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("pageSize must be between 1 and %d", maxPageSize))
	}
	return page, pageSize, nil
}

func toListMeta[T any](paged result.PagedResult[T]) listMeta {
	return listMeta{
		Page:       paged.Page,
		PageSize:   paged.PageSize,
		Total:      paged.Total,
		TotalPages: paged.TotalPages(),
	}
}

func parseRFC3339Body(value, field string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, field+" must be RFC3339")
	}
	return t, nil
}
