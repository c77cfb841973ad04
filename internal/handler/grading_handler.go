package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openlearn/lms-go-api/internal/dto"
	"github.com/openlearn/lms-go-api/internal/middleware"
	"github.com/openlearn/lms-go-api/internal/service"
	"github.com/openlearn/lms-go-api/internal/utils"
)

// GradingHandler manages manual grading and grade reporting.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler builds a grading handler instance.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// RegisterSubmissionRoutes attaches grading under submissions.
func (h *GradingHandler) RegisterSubmissionRoutes(router fiber.Router) {
	router.Put("/:id/grade", middleware.WithAuth(h.grade, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
}

// RegisterAssignmentRoutes attaches the per-assignment submission listing.
func (h *GradingHandler) RegisterAssignmentRoutes(router fiber.Router) {
	router.Get("/:id/submissions", middleware.WithAuth(h.listByAssignment, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
}

// RegisterTeaching attaches the grading inbox.
func (h *GradingHandler) RegisterTeaching(router fiber.Router) {
	router.Get("/submissions", middleware.WithAuth(h.listTeaching, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
}

// RegisterMine attaches the caller's gradebook.
func (h *GradingHandler) RegisterMine(router fiber.Router) {
	router.Get("/grades", h.myGrades)
}

func (h *GradingHandler) grade(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	var payload dto.GradeSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	grade, err := h.service.Grade(c.Context(), submissionID, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission graded", grade)
}

func (h *GradingHandler) listTeaching(c *fiber.Ctx) error {
	submissions, err := h.service.ListTeaching(c.Context(), actorFromContext(c), c.Query("status"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *GradingHandler) listByAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	submissions, err := h.service.ListByAssignment(c.Context(), assignmentID, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *GradingHandler) myGrades(c *fiber.Ctx) error {
	courseID, err := parseQueryUint(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	grades, err := h.service.MyGrades(c.Context(), actorFromContext(c), courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grades retrieved", grades)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrGradingForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "not allowed to grade this submission")
	case errors.Is(err, service.ErrNothingToGrade):
		return utils.SendError(c, fiber.StatusConflict, "submission has not been handed in")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
