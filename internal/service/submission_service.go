package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/dto"
	"github.com/openlearn/lms-go-api/internal/models"
	"github.com/openlearn/lms-go-api/internal/observability"
	"github.com/openlearn/lms-go-api/internal/repository"
)

// ErrSubmissionNotFound indicates the submission was not located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrSubmissionForbidden indicates the caller does not own the submission.
var ErrSubmissionForbidden = errors.New("not allowed to access this submission")

// ErrEmptySubmission indicates the payload variant required by the
// assignment type was missing.
var ErrEmptySubmission = errors.New("submission payload is empty for this assignment type")

// ErrAlreadyGraded indicates a graded submission cannot be replaced or
// withdrawn.
var ErrAlreadyGraded = errors.New("submission has already been graded")

// SubmissionService handles the attempt lifecycle: starting, handing in
// (with synchronous quiz auto-grading), withdrawing and listing.
type SubmissionService interface {
	Start(ctx context.Context, assignmentID uint, actor Actor) (dto.StartResponse, error)
	Submit(ctx context.Context, assignmentID uint, payload dto.SubmissionCreateRequest, actor Actor) (dto.SubmissionResponse, error)
	DeleteMine(ctx context.Context, submissionID uint, actor Actor) error
	ListMine(ctx context.Context, actor Actor) ([]dto.MySubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	enrollments repository.EnrollmentRepository
	grades      repository.GradeRepository
	badges      BadgeAwarder
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, enrollments repository.EnrollmentRepository, grades repository.GradeRepository, badges BadgeAwarder, validator *validator.Validate, sanitizer *bluemonday.Policy, activity ActivityRecorder, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		enrollments: enrollments,
		grades:      grades,
		badges:      badges,
		validator:   validator,
		sanitizer:   sanitizer,
		activity:    activity,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/openlearn/lms-go-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) requireEnrollment(ctx context.Context, assignmentID uint, actor Actor) (repository.CourseRef, error) {
	ref, err := s.assignments.ResolveCourse(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.CourseRef{}, ErrAssignmentNotFound
		}
		return repository.CourseRef{}, err
	}

	if _, err := s.enrollments.Get(ctx, ref.CourseID, actor.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.CourseRef{}, ErrNotEnrolled
		}
		return repository.CourseRef{}, err
	}
	return ref, nil
}

// Start opens a pending attempt so time-limited work has a recorded start.
// Starting twice is a no-op that reports the existing attempt.
func (s *submissionService) Start(ctx context.Context, assignmentID uint, actor Actor) (dto.StartResponse, error) {
	if _, err := s.requireEnrollment(ctx, assignmentID, actor); err != nil {
		return dto.StartResponse{}, err
	}

	existing, err := s.submissions.GetByAssignmentAndUser(ctx, assignmentID, actor.ID)
	if err == nil {
		return dto.StartResponse{
			SubmissionID:   existing.ID,
			Status:         existing.Status,
			AlreadyStarted: true,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StartResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: assignmentID,
		UserID:       actor.ID,
		Status:       models.SubmissionStatusPending,
		CreatedAt:    s.now(),
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.StartResponse{}, err
	}

	return dto.StartResponse{
		SubmissionID: submission.ID,
		Status:       submission.Status,
	}, nil
}

func (s *submissionService) Submit(ctx context.Context, assignmentID uint, payload dto.SubmissionCreateRequest, actor Actor) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit")
	span.SetAttributes(
		attribute.Int64("submission.assignment_id", int64(assignmentID)),
		attribute.Int64("submission.user_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.requireEnrollment(ctx, assignmentID, actor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enrollment_check_failed")
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	submission, created, err := s.upsertAttempt(ctx, assignment, payload, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_write_failed")
		return dto.SubmissionResponse{}, err
	}

	if assignment.AssignmentType == models.AssignmentTypeQuiz {
		// A grader failure must not lose the hand-in; the attempt stays
		// submitted and can be graded manually.
		if err := s.autoGrade(ctx, assignment, &submission); err != nil {
			span.RecordError(err)
			s.logger.Error().Err(err).
				Uint("submission_id", submission.ID).
				Uint("assignment_id", assignment.ID).
				Msg("auto-grading failed")
		}
	}

	observability.Submissions().WithLabelValues(assignment.AssignmentType, submission.Status).Inc()

	if s.activity != nil {
		action := "submission.updated"
		if created {
			action = "submission.created"
		}
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     action,
			EntityType: "submission",
			EntityID:   &submission.ID,
			Metadata: map[string]interface{}{
				"assignment_id": assignment.ID,
				"status":        submission.Status,
			},
		})
	}

	span.SetAttributes(attribute.String("submission.status", submission.Status))
	return dto.NewSubmissionResponse(submission), nil
}

// upsertAttempt writes the hand-in: one row per (assignment, user),
// re-submission replaces the payload. Lateness is derived once against the
// due date at hand-in time.
func (s *submissionService) upsertAttempt(ctx context.Context, assignment models.Assignment, payload dto.SubmissionCreateRequest, actor Actor) (models.Submission, bool, error) {
	submission, err := s.submissions.GetByAssignmentAndUser(ctx, assignment.ID, actor.ID)
	created := false
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, false, err
		}
		submission = models.Submission{
			AssignmentID: assignment.ID,
			UserID:       actor.ID,
			CreatedAt:    s.now(),
		}
		created = true
	} else if submission.IsGraded() && assignment.AssignmentType != models.AssignmentTypeQuiz {
		return models.Submission{}, false, ErrAlreadyGraded
	}

	if err := s.applyPayload(&submission, assignment, payload); err != nil {
		return models.Submission{}, false, err
	}

	submittedAt := s.now()
	submission.SubmittedAt = &submittedAt
	if assignment.IsPastDue(submittedAt) {
		submission.Status = models.SubmissionStatusLate
	} else {
		submission.Status = models.SubmissionStatusSubmitted
	}

	if created {
		if err := s.submissions.Create(ctx, &submission); err != nil {
			return models.Submission{}, false, err
		}
	} else {
		if err := s.submissions.Update(ctx, &submission); err != nil {
			return models.Submission{}, false, err
		}
	}

	return submission, created, nil
}

func (s *submissionService) applyPayload(submission *models.Submission, assignment models.Assignment, payload dto.SubmissionCreateRequest) error {
	switch assignment.AssignmentType {
	case models.AssignmentTypeQuiz:
		if len(payload.QuizAnswers) == 0 {
			return ErrEmptySubmission
		}
		answers := make(datatypes.JSONMap, len(payload.QuizAnswers))
		for key, choice := range payload.QuizAnswers {
			answers[key] = choice
		}
		submission.QuizAnswers = answers
	case models.AssignmentTypeEssay:
		if payload.EssayText == "" {
			return ErrEmptySubmission
		}
		submission.EssayText = s.sanitizer.Sanitize(payload.EssayText)
	case models.AssignmentTypeCode:
		if payload.Code == "" {
			return ErrEmptySubmission
		}
		submission.Code = payload.Code
	case models.AssignmentTypeProject:
		if err := submission.SetAttachments(payload.Attachments); err != nil {
			return err
		}
	}
	return nil
}

// autoGrade scores a quiz hand-in against the stored key and records the
// result in the ledger with no grader. An assignment without a key is left
// for manual grading.
func (s *submissionService) autoGrade(ctx context.Context, assignment models.Assignment, submission *models.Submission) error {
	data, err := assignment.DecodeQuizData()
	if err != nil {
		return err
	}
	if len(data.Questions) == 0 {
		return nil
	}

	result := GradeQuiz(data, *submission)
	gradedAt := s.now()

	submission.Status = models.SubmissionStatusGraded
	submission.GradedAt = &gradedAt
	submission.Comments = result.Comment()

	grade := models.Grade{
		SubmissionID:   submission.ID,
		GraderID:       nil,
		PointsEarned:   result.PointsEarned,
		PointsPossible: result.PointsPossible,
		Percentage:     result.Percentage,
		Feedback:       result.Comment(),
		CreatedAt:      gradedAt,
	}
	if err := s.grades.RecordGrade(ctx, &grade, submission); err != nil {
		return err
	}

	observability.GradesRecorded().WithLabelValues("auto").Inc()
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Float64("percentage", result.Percentage).
		Msg("quiz auto-graded")

	if result.Percentage == 100 && s.badges != nil {
		s.badges.Award(ctx, submission.UserID, models.BadgeTopPerformer)
	}

	return nil
}

// DeleteMine withdraws the caller's own ungraded attempt together with any
// ledger row.
func (s *submissionService) DeleteMine(ctx context.Context, submissionID uint, actor Actor) error {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	if submission.UserID != actor.ID {
		return ErrSubmissionForbidden
	}
	if submission.IsGraded() {
		return ErrAlreadyGraded
	}

	return s.submissions.DeleteWithGrade(ctx, submissionID)
}

func (s *submissionService) ListMine(ctx context.Context, actor Actor) ([]dto.MySubmissionResponse, error) {
	rows, err := s.submissions.ListMine(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MySubmissionResponse, 0, len(rows))
	for _, row := range rows {
		response := dto.MySubmissionResponse{
			SubmissionID:   row.SubmissionID,
			Status:         row.Status,
			SubmittedAt:    row.SubmittedAt,
			GradedAt:       row.GradedAt,
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
	return responses, nil
}
