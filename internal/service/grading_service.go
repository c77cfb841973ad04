package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/dto"
	"github.com/openlearn/lms-go-api/internal/models"
	"github.com/openlearn/lms-go-api/internal/observability"
	"github.com/openlearn/lms-go-api/internal/repository"
)

// ErrGradingForbidden indicates the caller is neither an admin nor the
// author of the course the submission belongs to.
var ErrGradingForbidden = errors.New("not allowed to grade this submission")

// ErrNothingToGrade indicates the submission has not been handed in yet.
var ErrNothingToGrade = errors.New("submission has not been handed in")

// GradingService covers manual grading and the grade reporting views.
type GradingService interface {
	Grade(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, actor Actor) (dto.GradeResponse, error)
	ListTeaching(ctx context.Context, actor Actor, status string) ([]dto.TeachingSubmissionResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uint, actor Actor) ([]dto.TeachingSubmissionResponse, error)
	MyGrades(ctx context.Context, actor Actor, courseID *uint) ([]dto.DetailedGradeResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	grades      repository.GradeRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, grades repository.GradeRepository, validator *validator.Validate, sanitizer *bluemonday.Policy, activity ActivityRecorder, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: submissions,
		assignments: assignments,
		grades:      grades,
		validator:   validator,
		sanitizer:   sanitizer,
		activity:    activity,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/openlearn/lms-go-api/internal/service/grading"),
		now:         time.Now,
	}
}

// Grade records a manual score. The possible points are snapshotted from
// the assignment at grading time, earned points are clamped into
// [0, possible] and the percentage is always recomputed server-side.
// Re-grading replaces the previous ledger entry.
func (s *gradingService) Grade(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, actor Actor) (dto.GradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.record")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.GradeResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	if submission.Status == models.SubmissionStatusPending {
		return dto.GradeResponse{}, ErrNothingToGrade
	}

	ref, err := s.assignments.ResolveCourse(ctx, submission.AssignmentID)
	if err != nil {
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}
	if !actor.IsAdmin() && ref.AuthorID != actor.ID {
		span.SetStatus(codes.Error, "forbidden")
		return dto.GradeResponse{}, ErrGradingForbidden
	}

	possible := float64(submission.Assignment.PointsPossible)
	if possible <= 0 {
		possible = 100
	}

	earned := payload.PointsEarned
	if earned < 0 {
		earned = 0
	}
	if earned > possible {
		earned = possible
	}

	feedback := s.sanitizer.Sanitize(strings.TrimSpace(payload.Feedback))
	gradedAt := s.now()
	graderID := actor.ID

	grade := models.Grade{
		SubmissionID:   submission.ID,
		GraderID:       &graderID,
		PointsEarned:   earned,
		PointsPossible: possible,
		Percentage:     earned / possible * 100,
		Feedback:       feedback,
		CreatedAt:      gradedAt,
	}

	submission.Status = models.SubmissionStatusGraded
	submission.GradedAt = &gradedAt
	submission.Comments = feedback

	if err := s.grades.RecordGrade(ctx, &grade, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger_write_failed")
		return dto.GradeResponse{}, err
	}

	observability.GradesRecorded().WithLabelValues("manual").Inc()

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "submission.graded",
			EntityType: "submission",
			EntityID:   &submission.ID,
			Metadata: map[string]interface{}{
				"assignment_id": submission.AssignmentID,
				"student_id":    submission.UserID,
				"points_earned": earned,
			},
		})
	}

	span.SetAttributes(
		attribute.Float64("grading.points_earned", earned),
		attribute.Float64("grading.percentage", grade.Percentage),
	)

	return dto.NewGradeResponse(grade), nil
}

// ListTeaching returns the grading inbox. Admins see every course, other
// staff only submissions in courses they authored.
func (s *gradingService) ListTeaching(ctx context.Context, actor Actor, status string) ([]dto.TeachingSubmissionResponse, error) {
	filter := repository.TeachingFilter{Status: status}
	if !actor.IsAdmin() {
		authorID := actor.ID
		filter.AuthorID = &authorID
	}

	rows, err := s.submissions.ListTeaching(ctx, filter)
	if err != nil {
		return nil, err
	}
	return teachingResponses(rows), nil
}

func (s *gradingService) ListByAssignment(ctx context.Context, assignmentID uint, actor Actor) ([]dto.TeachingSubmissionResponse, error) {
	ref, err := s.assignments.ResolveCourse(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if !actor.IsAdmin() && ref.AuthorID != actor.ID {
		return nil, ErrGradingForbidden
	}

	rows, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return teachingResponses(rows), nil
}

func (s *gradingService) MyGrades(ctx context.Context, actor Actor, courseID *uint) ([]dto.DetailedGradeResponse, error) {
	rows, err := s.grades.ListForUser(ctx, actor.ID, courseID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DetailedGradeResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.DetailedGradeResponse{
			GradeResponse: dto.GradeResponse{
				ID:             row.GradeID,
				SubmissionID:   row.SubmissionID,
				GraderID:       row.GraderID,
				PointsEarned:   row.PointsEarned,
				PointsPossible: row.PointsPossible,
				Percentage:     row.Percentage,
				Feedback:       row.Feedback,
				CreatedAt:      row.GradedAt,
			},
			AssignmentID:    row.AssignmentID,
			AssignmentTitle: row.AssignmentName,
			CourseID:        row.CourseID,
			CourseTitle:     row.CourseTitle,
		})
	}
	return responses, nil
}

func teachingResponses(rows []repository.SubmissionJoinRow) []dto.TeachingSubmissionResponse {
	responses := make([]dto.TeachingSubmissionResponse, 0, len(rows))
	for _, row := range rows {
		response := dto.TeachingSubmissionResponse{
			SubmissionID:   row.SubmissionID,
			Status:         row.Status,
			SubmittedAt:    row.SubmittedAt,
			GradedAt:       row.GradedAt,
			StudentID:      row.StudentID,
			StudentName:    row.StudentName,
			StudentEmail:   row.StudentEmail,
			AssignmentID:   row.AssignmentID,
			AssignmentName: row.AssignmentName,
			PointsPossible: row.PointsPossible,
			LessonID:       row.LessonID,
			LessonTitle:    row.LessonTitle,
			CourseID:       row.CourseID,
			CourseTitle:    row.CourseTitle,
			PointsEarned:   row.PointsEarned,
			Percentage:     row.Percentage,
		}
		if row.Feedback != nil {
			response.Feedback = *row.Feedback
		}
		responses = append(responses, response)
	}
	return responses
}
