package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

// SettingsHandler exposes the site settings endpoints. Reads are public,
// writes are developer-only via the router.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetAll handles GET /settings.
func (h *SettingsHandler) GetAll(c *fiber.Ctx) error {
	values, err := h.settings.GetAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": values})
}

// Get handles GET /settings/:key.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	value, err := h.settings.Get(c.UserContext(), domain.SettingKey(c.Params("key")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": value})
}

// Update handles PUT /settings/:key.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	value, err := h.settings.Update(c.UserContext(), domain.SettingKey(c.Params("key")), req.Value, principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": value})
}

// Reset handles POST /settings/reset/:key.
func (h *SettingsHandler) Reset(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	value, err := h.settings.Reset(c.UserContext(), domain.SettingKey(c.Params("key")), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": value})
}
