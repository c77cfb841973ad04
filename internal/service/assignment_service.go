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

// ErrAssignmentNotFound indicates the assignment was not located.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrNotQuizAssignment indicates quiz questions were attached to a
// non-quiz assignment.
var ErrNotQuizAssignment = errors.New("assignment is not a quiz")

// ErrAnswerOutOfRange indicates a question's correct answer does not index
// into its options.
var ErrAnswerOutOfRange = errors.New("correct answer is out of range for its options")

// AssignmentService manages gradeable work attached to lessons.
type AssignmentService interface {
	Create(ctx context.Context, lessonID uint, payload dto.AssignmentCreateRequest, actor Actor) (dto.AssignmentResponse, error)
	AddQuizQuestions(ctx context.Context, assignmentID uint, payload dto.QuizQuestionsRequest, actor Actor) (dto.AssignmentResponse, error)
	ListByLesson(ctx context.Context, lessonID uint) ([]dto.AssignmentResponse, error)
	Detail(ctx context.Context, assignmentID uint, actor Actor) (dto.AssignmentDetailResponse, error)
	ListMine(ctx context.Context, actor Actor, status string) ([]dto.MyAssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	lessons     repository.LessonRepository
	courses     repository.CourseRepository
	submissions repository.SubmissionRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(assignments repository.AssignmentRepository, lessons repository.LessonRepository, courses repository.CourseRepository, submissions repository.SubmissionRepository, enrollments repository.EnrollmentRepository, validator *validator.Validate, sanitizer *bluemonday.Policy, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		lessons:     lessons,
		courses:     courses,
		submissions: submissions,
		enrollments: enrollments,
		validator:   validator,
		sanitizer:   sanitizer,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) Create(ctx context.Context, lessonID uint, payload dto.AssignmentCreateRequest, actor Actor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	courseID, err := s.lessons.CourseOf(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrLessonNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if course.AuthorID != actor.ID && !actor.IsAdmin() {
		return dto.AssignmentResponse{}, ErrCourseForbidden
	}

	points := payload.PointsPossible
	if points <= 0 {
		points = 100
	}

	assignment := models.Assignment{
		LessonID:         lessonID,
		Title:            strings.TrimSpace(payload.Title),
		Description:      s.sanitizer.Sanitize(payload.Description),
		AssignmentType:   payload.AssignmentType,
		PointsPossible:   points,
		DueDate:          payload.DueDate,
		TimeLimitMinutes: payload.TimeLimitMinutes,
	}
	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Str("type", assignment.AssignmentType).
		Msg("assignment created")
	return dto.NewAssignmentResponse(assignment), nil
}

// AddQuizQuestions replaces the answer key of a quiz assignment. Each
// question's correct answer must index into its options.
func (s *assignmentService) AddQuizQuestions(ctx context.Context, assignmentID uint, payload dto.QuizQuestionsRequest, actor Actor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	for _, question := range payload.Questions {
		if question.CorrectAnswer >= len(question.Options) {
			return dto.AssignmentResponse{}, ErrAnswerOutOfRange
		}
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if assignment.AssignmentType != models.AssignmentTypeQuiz {
		return dto.AssignmentResponse{}, ErrNotQuizAssignment
	}

	ref, err := s.assignments.ResolveCourse(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if ref.AuthorID != actor.ID && !actor.IsAdmin() {
		return dto.AssignmentResponse{}, ErrCourseForbidden
	}

	data := models.QuizData{
		Questions:        payload.Questions,
		ShuffleQuestions: payload.ShuffleQuestions,
		ShuffleOptions:   payload.ShuffleOptions,
	}
	if err := assignment.SetQuizData(data); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) ListByLesson(ctx context.Context, lessonID uint) ([]dto.AssignmentResponse, error) {
	if _, err := s.lessons.GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}

	assignments, err := s.assignments.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, dto.NewAssignmentResponse(assignment))
	}
	return responses, nil
}

func (s *assignmentService) Detail(ctx context.Context, assignmentID uint, actor Actor) (dto.AssignmentDetailResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentDetailResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentDetailResponse{}, err
	}

	ref, err := s.assignments.ResolveCourse(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentDetailResponse{}, err
	}

	if ref.AuthorID != actor.ID && !actor.IsAdmin() {
		if _, err := s.enrollments.Get(ctx, ref.CourseID, actor.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.AssignmentDetailResponse{}, ErrNotEnrolled
			}
			return dto.AssignmentDetailResponse{}, err
		}
	}

	detail := dto.AssignmentDetailResponse{
		AssignmentResponse: dto.NewAssignmentResponse(assignment),
		CourseID:           ref.CourseID,
	}

	submission, err := s.submissions.GetByAssignmentAndUser(ctx, assignmentID, actor.ID)
	if err == nil {
		detail.Submission = &dto.SubmissionBrief{
			ID:          submission.ID,
			Status:      submission.Status,
			SubmittedAt: submission.SubmittedAt,
			GradedAt:    submission.GradedAt,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AssignmentDetailResponse{}, err
	}

	return detail, nil
}

func (s *assignmentService) ListMine(ctx context.Context, actor Actor, status string) ([]dto.MyAssignmentResponse, error) {
	rows, err := s.assignments.ListForUser(ctx, actor.ID, status)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MyAssignmentResponse, 0, len(rows))
	for _, row := range rows {
		response := dto.MyAssignmentResponse{
			ID:             row.AssignmentID,
			Title:          row.Title,
			Description:    row.Description,
			AssignmentType: row.AssignmentType,
			PointsPossible: row.PointsPossible,
			DueDate:        row.DueDate,
			LessonID:       row.LessonID,
			LessonTitle:    row.LessonTitle,
			CourseID:       row.CourseID,
			CourseTitle:    row.CourseTitle,
			Status:         models.SubmissionStatusPending,
			SubmissionID:   row.SubmissionID,
			SubmittedAt:    row.SubmittedAt,
			GradedAt:       row.GradedAt,
		}
		if row.Status != nil && *row.Status != "" {
			response.Status = *row.Status
		}
		responses = append(responses, response)
	}
	return responses, nil
}
