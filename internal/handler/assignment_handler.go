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

// AssignmentHandler manages assignment authoring and student-facing views.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler builds an assignment handler instance.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// RegisterLessonRoutes attaches assignment routes nested under lessons.
func (h *AssignmentHandler) RegisterLessonRoutes(router fiber.Router) {
	router.Get("/:id/assignments", h.listByLesson)
	router.Post("/:id/assignments", middleware.WithAuth(h.create, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
}

// Register attaches the top-level assignment routes.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("/:id", h.detail)
	router.Post("/:id/questions", middleware.WithAuth(h.addQuestions, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
}

// RegisterMine attaches the caller's assignment overview.
func (h *AssignmentHandler) RegisterMine(router fiber.Router) {
	router.Get("/assignments", h.listMine)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lesson id")
	}

	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.Create(c.Context(), lessonID, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) addQuestions(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	var payload dto.QuizQuestionsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.AddQuizQuestions(c.Context(), assignmentID, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "quiz questions saved", assignment)
}

func (h *AssignmentHandler) listByLesson(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lesson id")
	}

	assignments, err := h.service.ListByLesson(c.Context(), lessonID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) detail(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	detail, err := h.service.Detail(c.Context(), assignmentID, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", detail)
}

func (h *AssignmentHandler) listMine(c *fiber.Ctx) error {
	assignments, err := h.service.ListMine(c.Context(), actorFromContext(c), c.Query("status"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrLessonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
	case errors.Is(err, service.ErrNotQuizAssignment):
		return utils.SendError(c, fiber.StatusConflict, "assignment is not a quiz")
	case errors.Is(err, service.ErrAnswerOutOfRange):
		return utils.SendError(c, fiber.StatusBadRequest, "correct answer is out of range for its options")
	case errors.Is(err, service.ErrCourseForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "not allowed to modify this course")
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.SendError(c, fiber.StatusForbidden, "not enrolled in this course")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
