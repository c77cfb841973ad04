package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openlearn/lms-go-api/internal/dto"
	"github.com/openlearn/lms-go-api/internal/service"
	"github.com/openlearn/lms-go-api/internal/utils"
)

// SubmissionHandler manages the student attempt lifecycle.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// RegisterAssignmentRoutes attaches attempt routes under assignments.
func (h *SubmissionHandler) RegisterAssignmentRoutes(router fiber.Router) {
	router.Post("/:id/start", h.start)
	router.Post("/:id/submit", h.submit)
}

// Register attaches the top-level submission routes.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Delete("/:id", h.deleteMine)
}

// RegisterMine attaches the caller's submission overview.
func (h *SubmissionHandler) RegisterMine(router fiber.Router) {
	router.Get("/submissions", h.listMine)
}

func (h *SubmissionHandler) start(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	result, err := h.service.Start(c.Context(), assignmentID, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	if result.AlreadyStarted {
		return utils.SendSuccess(c, "attempt already started", result)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attempt started", result)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Submit(c.Context(), assignmentID, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission received", submission)
}

func (h *SubmissionHandler) deleteMine(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	if err := h.service.DeleteMine(c.Context(), submissionID, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission withdrawn", nil)
}

func (h *SubmissionHandler) listMine(c *fiber.Ctx) error {
	submissions, err := h.service.ListMine(c.Context(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrSubmissionForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "not allowed to access this submission")
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.SendError(c, fiber.StatusForbidden, "not enrolled in this course")
	case errors.Is(err, service.ErrEmptySubmission):
		return utils.SendError(c, fiber.StatusBadRequest, "submission payload is empty for this assignment type")
	case errors.Is(err, service.ErrAlreadyGraded):
		return utils.SendError(c, fiber.StatusConflict, "submission has already been graded")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
