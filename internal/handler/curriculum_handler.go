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

// CurriculumHandler manages the module/lesson tree and lesson completion.
type CurriculumHandler struct {
	curriculum service.CurriculumService
	progress   service.ProgressService
	logger     zerolog.Logger
}

// NewCurriculumHandler builds a curriculum handler instance.
func NewCurriculumHandler(curriculum service.CurriculumService, progress service.ProgressService, logger zerolog.Logger) *CurriculumHandler {
	return &CurriculumHandler{
		curriculum: curriculum,
		progress:   progress,
		logger:     logger.With().Str("component", "curriculum_handler").Logger(),
	}
}

// RegisterCourseRoutes attaches module authoring under a course group.
func (h *CurriculumHandler) RegisterCourseRoutes(router fiber.Router) {
	router.Post("/:id/modules", middleware.WithAuth(h.createModule, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
}

// RegisterModuleRoutes attaches module and lesson routes.
func (h *CurriculumHandler) RegisterModuleRoutes(router fiber.Router) {
	router.Get("/:id", h.getModule)
	router.Put("/:id", middleware.WithAuth(h.updateModule, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
	router.Delete("/:id", middleware.WithAuth(h.deleteModule, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
	router.Post("/:id/lessons", middleware.WithAuth(h.createLesson, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
}

// RegisterLessonRoutes attaches lesson routes including completion.
func (h *CurriculumHandler) RegisterLessonRoutes(router fiber.Router) {
	router.Get("/:id", h.getLesson)
	router.Delete("/:id", middleware.WithAuth(h.deleteLesson, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
	router.Post("/:id/complete", h.completeLesson)
}

func (h *CurriculumHandler) createModule(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	var payload dto.ModuleCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	module, err := h.curriculum.CreateModule(c.Context(), courseID, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "module created", module)
}

func (h *CurriculumHandler) getModule(c *fiber.Ctx) error {
	moduleID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid module id")
	}

	module, err := h.curriculum.GetModule(c.Context(), moduleID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "module retrieved", module)
}

func (h *CurriculumHandler) updateModule(c *fiber.Ctx) error {
	moduleID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid module id")
	}

	var payload dto.ModuleUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	module, err := h.curriculum.UpdateModule(c.Context(), moduleID, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "module updated", module)
}

func (h *CurriculumHandler) deleteModule(c *fiber.Ctx) error {
	moduleID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid module id")
	}

	if err := h.curriculum.DeleteModule(c.Context(), moduleID, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "module deleted", nil)
}

func (h *CurriculumHandler) createLesson(c *fiber.Ctx) error {
	moduleID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid module id")
	}

	var payload dto.LessonCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	lesson, err := h.curriculum.CreateLesson(c.Context(), moduleID, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "lesson created", lesson)
}

func (h *CurriculumHandler) getLesson(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lesson id")
	}

	lesson, err := h.curriculum.GetLesson(c.Context(), lessonID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson retrieved", lesson)
}

func (h *CurriculumHandler) deleteLesson(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lesson id")
	}

	if err := h.curriculum.DeleteLesson(c.Context(), lessonID, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson deleted", nil)
}

func (h *CurriculumHandler) completeLesson(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lesson id")
	}

	result, err := h.progress.CompleteLesson(c.Context(), lessonID, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson completed", result)
}

func (h *CurriculumHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrModuleNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "module not found")
	case errors.Is(err, service.ErrLessonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
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
