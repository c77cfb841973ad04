package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openlearn/lms-go-api/internal/service"
	"github.com/openlearn/lms-go-api/internal/utils"
)

// ProfileHandler exposes the caller's badges and learning statistics.
type ProfileHandler struct {
	badges    service.BadgeService
	analytics service.AnalyticsService
	logger    zerolog.Logger
}

// NewProfileHandler builds a profile handler instance.
func NewProfileHandler(badges service.BadgeService, analytics service.AnalyticsService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		badges:    badges,
		analytics: analytics,
		logger:    logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("/badges", h.listBadges)
	router.Get("/stats", h.profileStats)
}

func (h *ProfileHandler) listBadges(c *fiber.Ctx) error {
	badges, err := h.badges.ListForUser(c.Context(), userIDFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "badges retrieved", badges)
}

func (h *ProfileHandler) profileStats(c *fiber.Ctx) error {
	stats, err := h.analytics.ProfileStats(c.Context(), actorFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "stats retrieved", stats)
}
