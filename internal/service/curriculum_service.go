package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/dto"
	"github.com/openlearn/lms-go-api/internal/models"
	"github.com/openlearn/lms-go-api/internal/repository"
)

// ErrModuleNotFound indicates the module was not located.
var ErrModuleNotFound = errors.New("module not found")

// ErrLessonNotFound indicates the lesson was not located.
var ErrLessonNotFound = errors.New("lesson not found")

// CurriculumService manages the module/lesson tree under a course. Every
// mutation is gated on course authorship (or admin).
type CurriculumService interface {
	CreateModule(ctx context.Context, courseID uint, payload dto.ModuleCreateRequest, actor Actor) (dto.ModuleResponse, error)
	UpdateModule(ctx context.Context, moduleID uint, payload dto.ModuleUpdateRequest, actor Actor) (dto.ModuleResponse, error)
	DeleteModule(ctx context.Context, moduleID uint, actor Actor) error
	GetModule(ctx context.Context, moduleID uint) (dto.ModuleResponse, error)
	CreateLesson(ctx context.Context, moduleID uint, payload dto.LessonCreateRequest, actor Actor) (dto.LessonResponse, error)
	DeleteLesson(ctx context.Context, lessonID uint, actor Actor) error
	GetLesson(ctx context.Context, lessonID uint) (dto.LessonResponse, error)
}

type curriculumService struct {
	courses   repository.CourseRepository
	modules   repository.ModuleRepository
	lessons   repository.LessonRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCurriculumService constructs the curriculum service.
func NewCurriculumService(courses repository.CourseRepository, modules repository.ModuleRepository, lessons repository.LessonRepository, validator *validator.Validate, sanitizer *bluemonday.Policy, logger zerolog.Logger) CurriculumService {
	return &curriculumService{
		courses:   courses,
		modules:   modules,
		lessons:   lessons,
		validator: validator,
		sanitizer: sanitizer,
		logger:    logger.With().Str("component", "curriculum_service").Logger(),
		now:       time.Now,
	}
}

func (s *curriculumService) authorizeCourse(ctx context.Context, courseID uint, actor Actor) error {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	if course.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrCourseForbidden
	}
	return nil
}

func (s *curriculumService) CreateModule(ctx context.Context, courseID uint, payload dto.ModuleCreateRequest, actor Actor) (dto.ModuleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ModuleResponse{}, err
	}

	if err := s.authorizeCourse(ctx, courseID, actor); err != nil {
		return dto.ModuleResponse{}, err
	}

	module := models.Module{
		CourseID:    courseID,
		Title:       strings.TrimSpace(payload.Title),
		Description: s.sanitizer.Sanitize(payload.Description),
		OrderIndex:  payload.OrderIndex,
	}
	if err := s.modules.Create(ctx, &module); err != nil {
		return dto.ModuleResponse{}, err
	}

	return dto.NewModuleResponse(module), nil
}

func (s *curriculumService) UpdateModule(ctx context.Context, moduleID uint, payload dto.ModuleUpdateRequest, actor Actor) (dto.ModuleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ModuleResponse{}, err
	}

	module, err := s.modules.GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModuleResponse{}, ErrModuleNotFound
		}
		return dto.ModuleResponse{}, err
	}

	if err := s.authorizeCourse(ctx, module.CourseID, actor); err != nil {
		return dto.ModuleResponse{}, err
	}

	if payload.Title != nil {
		module.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		module.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.OrderIndex != nil {
		module.OrderIndex = *payload.OrderIndex
	}

	if err := s.modules.Update(ctx, &module); err != nil {
		return dto.ModuleResponse{}, err
	}

	return dto.NewModuleResponse(module), nil
}

func (s *curriculumService) DeleteModule(ctx context.Context, moduleID uint, actor Actor) error {
	module, err := s.modules.GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrModuleNotFound
		}
		return err
	}

	if err := s.authorizeCourse(ctx, module.CourseID, actor); err != nil {
		return err
	}

	return s.modules.Delete(ctx, moduleID)
}

func (s *curriculumService) GetModule(ctx context.Context, moduleID uint) (dto.ModuleResponse, error) {
	module, err := s.modules.GetWithLessons(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModuleResponse{}, ErrModuleNotFound
		}
		return dto.ModuleResponse{}, err
	}
	return dto.NewModuleResponse(module), nil
}

func (s *curriculumService) CreateLesson(ctx context.Context, moduleID uint, payload dto.LessonCreateRequest, actor Actor) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	module, err := s.modules.GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrModuleNotFound
		}
		return dto.LessonResponse{}, err
	}

	if err := s.authorizeCourse(ctx, module.CourseID, actor); err != nil {
		return dto.LessonResponse{}, err
	}

	lesson := models.Lesson{
		ModuleID:        moduleID,
		Title:           strings.TrimSpace(payload.Title),
		Content:         s.sanitizer.Sanitize(payload.Content),
		VideoURL:        strings.TrimSpace(payload.VideoURL),
		DurationMinutes: payload.DurationMinutes,
		OrderIndex:      payload.OrderIndex,
	}
	if err := s.lessons.Create(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	return dto.NewLessonResponse(lesson), nil
}

func (s *curriculumService) DeleteLesson(ctx context.Context, lessonID uint, actor Actor) error {
	courseID, err := s.lessons.CourseOf(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}

	if err := s.authorizeCourse(ctx, courseID, actor); err != nil {
		return err
	}

	return s.lessons.Delete(ctx, lessonID)
}

func (s *curriculumService) GetLesson(ctx context.Context, lessonID uint) (dto.LessonResponse, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}
	return dto.NewLessonResponse(lesson), nil
}
