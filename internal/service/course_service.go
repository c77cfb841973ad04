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

// ErrCourseNotFound indicates the course was not located or is not visible
// to the caller.
var ErrCourseNotFound = errors.New("course not found")

// ErrCourseForbidden indicates the caller may not modify the course.
var ErrCourseForbidden = errors.New("not allowed to modify this course")

// ErrCourseNotPublished indicates enrollment was attempted on a draft or
// archived course.
var ErrCourseNotPublished = errors.New("course is not published")

// ErrAlreadyEnrolled indicates a duplicate enrollment attempt.
var ErrAlreadyEnrolled = errors.New("already enrolled in this course")

// ErrNotEnrolled indicates the caller has no enrollment in the course.
var ErrNotEnrolled = errors.New("not enrolled in this course")

// ErrUnpublishNotAllowed indicates an attempt to move a published course
// back to draft. Publishing is one-directional; archiving remains available.
var ErrUnpublishNotAllowed = errors.New("published courses cannot return to draft")

// CourseService covers course authoring, discovery, enrollment and reviews.
type CourseService interface {
	Create(ctx context.Context, payload dto.CourseCreateRequest, actor Actor) (dto.CourseResponse, error)
	List(ctx context.Context, filter dto.CourseFilter, actor Actor) ([]dto.CourseResponse, error)
	Get(ctx context.Context, courseID uint, actor Actor) (dto.CourseResponse, error)
	Update(ctx context.Context, courseID uint, payload dto.CourseUpdateRequest, actor Actor) (dto.CourseResponse, error)
	Enroll(ctx context.Context, courseID uint, actor Actor) (dto.EnrollmentResponse, error)
	Review(ctx context.Context, courseID uint, payload dto.ReviewRequest, actor Actor) (dto.CourseResponse, error)
}

type courseService struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCourseService constructs the course service.
func NewCourseService(courses repository.CourseRepository, enrollments repository.EnrollmentRepository, validator *validator.Validate, sanitizer *bluemonday.Policy, activity ActivityRecorder, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:     courses,
		enrollments: enrollments,
		validator:   validator,
		sanitizer:   sanitizer,
		activity:    activity,
		logger:      logger.With().Str("component", "course_service").Logger(),
		now:         time.Now,
	}
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest, actor Actor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	difficulty := payload.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyBeginner
	}

	course := models.Course{
		Title:       strings.TrimSpace(payload.Title),
		Description: s.sanitizer.Sanitize(payload.Description),
		Category:    strings.TrimSpace(payload.Category),
		Difficulty:  difficulty,
		Status:      models.CourseStatusDraft,
		AuthorID:    actor.ID,
		IsPublic:    payload.IsPublic,
	}
	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Uint("author_id", actor.ID).Msg("course created")
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) List(ctx context.Context, filter dto.CourseFilter, actor Actor) ([]dto.CourseResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.CourseFilter{
		Category:   filter.Category,
		Difficulty: filter.Difficulty,
		Status:     filter.Status,
		Search:     filter.Search,
	}
	if !actor.IsAdmin() {
		viewerID := actor.ID
		repoFilter.ViewerID = &viewerID
	}

	courses, err := s.courses.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) Get(ctx context.Context, courseID uint, actor Actor) (dto.CourseResponse, error) {
	course, err := s.courses.GetWithCurriculum(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if !s.canView(ctx, course, actor) {
		return dto.CourseResponse{}, ErrCourseNotFound
	}

	return dto.NewCourseResponse(course), nil
}

// canView allows admins, the author, enrolled users and anyone for public
// published courses. Hidden courses 404 rather than 403 so their existence
// is not leaked.
func (s *courseService) canView(ctx context.Context, course models.Course, actor Actor) bool {
	if actor.IsAdmin() || course.IsVisibleTo(actor.ID) {
		return true
	}
	if course.Status != models.CourseStatusPublished {
		return false
	}
	_, err := s.enrollments.Get(ctx, course.ID, actor.ID)
	return err == nil
}

func (s *courseService) Update(ctx context.Context, courseID uint, payload dto.CourseUpdateRequest, actor Actor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if course.AuthorID != actor.ID && !actor.IsAdmin() {
		return dto.CourseResponse{}, ErrCourseForbidden
	}

	if payload.Title != nil {
		course.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		course.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.Category != nil {
		course.Category = strings.TrimSpace(*payload.Category)
	}
	if payload.Difficulty != nil {
		course.Difficulty = *payload.Difficulty
	}
	if payload.IsPublic != nil {
		course.IsPublic = *payload.IsPublic
	}
	if payload.Status != nil {
		if course.Status == models.CourseStatusPublished && *payload.Status == models.CourseStatusDraft {
			return dto.CourseResponse{}, ErrUnpublishNotAllowed
		}
		course.Status = *payload.Status
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Enroll(ctx context.Context, courseID uint, actor Actor) (dto.EnrollmentResponse, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrCourseNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	if course.Status != models.CourseStatusPublished {
		return dto.EnrollmentResponse{}, ErrCourseNotPublished
	}

	if _, err := s.enrollments.Get(ctx, courseID, actor.ID); err == nil {
		return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.EnrollmentResponse{}, err
	}

	enrollment := models.Enrollment{
		CourseID:   courseID,
		UserID:     actor.ID,
		EnrolledAt: s.now(),
	}
	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	if err := s.courses.RecountEnrollments(ctx, courseID); err != nil {
		s.logger.Warn().Err(err).Uint("course_id", courseID).Msg("failed to recount enrollments")
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "course.enrolled",
			EntityType: "course",
			EntityID:   &course.ID,
		})
	}

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *courseService) Review(ctx context.Context, courseID uint, payload dto.ReviewRequest, actor Actor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if _, err := s.enrollments.Get(ctx, courseID, actor.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrNotEnrolled
		}
		return dto.CourseResponse{}, err
	}

	review := models.Review{
		CourseID: courseID,
		UserID:   actor.ID,
		Rating:   payload.Rating,
		Comment:  s.sanitizer.Sanitize(payload.Comment),
	}
	if err := s.courses.UpsertReview(ctx, &review); err != nil {
		return dto.CourseResponse{}, err
	}

	if err := s.courses.RecomputeRating(ctx, courseID); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err = s.courses.GetByID(ctx, courseID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "course.reviewed",
			EntityType: "course",
			EntityID:   &course.ID,
			Metadata:   map[string]interface{}{"rating": payload.Rating},
		})
	}

	return dto.NewCourseResponse(course), nil
}
