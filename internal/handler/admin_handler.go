package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openlearn/lms-go-api/internal/middleware"
	"github.com/openlearn/lms-go-api/internal/service"
	"github.com/openlearn/lms-go-api/internal/utils"
)

// AdminHandler exposes platform-wide statistics to staff.
type AdminHandler struct {
	analytics service.AnalyticsService
	logger    zerolog.Logger
}

// NewAdminHandler builds an admin handler instance.
func NewAdminHandler(analytics service.AnalyticsService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		analytics: analytics,
		logger:    logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/stats", middleware.WithAuth(h.stats, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
}

func (h *AdminHandler) stats(c *fiber.Ctx) error {
	stats, err := h.analytics.AdminStats(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "stats retrieved", stats)
}
