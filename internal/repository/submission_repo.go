package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/models"
)

// SubmissionJoinRow is a submission joined with its assignment, lesson,
// course, student and grade for reporting views.
type SubmissionJoinRow struct {
	SubmissionID   uint
	Status         string
	SubmittedAt    *time.Time
	GradedAt       *time.Time
	StudentID      uint
	StudentName    string
	StudentEmail   string
	AssignmentID   uint
	AssignmentName string
	PointsPossible int
	LessonID       uint
	LessonTitle    string
	CourseID       uint
	CourseTitle    string
	PointsEarned   *float64
	Percentage     *float64
	Feedback       *string
}

// TeachingFilter narrows the grading inbox. AuthorID is nil for admins,
// who see submissions across all courses.
type TeachingFilter struct {
	AuthorID *uint
	Status   string
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByAssignmentAndUser(ctx context.Context, assignmentID, userID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	DeleteWithGrade(ctx context.Context, submissionID uint) error
	ListMine(ctx context.Context, userID uint) ([]SubmissionJoinRow, error)
	ListTeaching(ctx context.Context, filter TeachingFilter) ([]SubmissionJoinRow, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]SubmissionJoinRow, error)
	CountHandedInByUser(ctx context.Context, userID uint) (int64, error)
	CountHandedInByUserInCourse(ctx context.Context, userID, courseID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndUser(ctx context.Context, assignmentID, userID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

// DeleteWithGrade removes a submission together with its grade row in one
// transaction.
func (r *submissionRepository) DeleteWithGrade(ctx context.Context, submissionID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", submissionID).
			Delete(&models.Grade{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Submission{}, submissionID).Error
	})
}

func (r *submissionRepository) joinedQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("submissions").
		Select(`submissions.id AS submission_id,
			submissions.status AS status,
			submissions.submitted_at AS submitted_at,
			submissions.graded_at AS graded_at,
			users.id AS student_id,
			users.name AS student_name,
			users.email AS student_email,
			assignments.id AS assignment_id,
			assignments.title AS assignment_name,
			assignments.points_possible AS points_possible,
			lessons.id AS lesson_id,
			lessons.title AS lesson_title,
			courses.id AS course_id,
			courses.title AS course_title,
			grades.points_earned AS points_earned,
			grades.percentage AS percentage,
			grades.feedback AS feedback`).
		Joins("JOIN users ON users.id = submissions.user_id").
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Joins("JOIN lessons ON lessons.id = assignments.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Joins("JOIN courses ON courses.id = modules.course_id").
		Joins("LEFT JOIN grades ON grades.submission_id = submissions.id")
}

func (r *submissionRepository) ListMine(ctx context.Context, userID uint) ([]SubmissionJoinRow, error) {
	var rows []SubmissionJoinRow
	if err := r.joinedQuery(ctx).
		Where("submissions.user_id = ?", userID).
		Where("submissions.status IN ?", handedInStatuses()).
		Order("COALESCE(submissions.submitted_at, submissions.created_at) DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *submissionRepository) ListTeaching(ctx context.Context, filter TeachingFilter) ([]SubmissionJoinRow, error) {
	query := r.joinedQuery(ctx)

	if filter.AuthorID != nil {
		query = query.Where("courses.author_id = ?", *filter.AuthorID)
	}

	if filter.Status != "" {
		query = query.Where("submissions.status = ?", filter.Status)
	}

	var rows []SubmissionJoinRow
	if err := query.
		Order("COALESCE(submissions.submitted_at, submissions.created_at) DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]SubmissionJoinRow, error) {
	var rows []SubmissionJoinRow
	if err := r.joinedQuery(ctx).
		Where("submissions.assignment_id = ?", assignmentID).
		Order("submissions.submitted_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *submissionRepository) CountHandedInByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Where("status IN ?", handedInStatuses()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *submissionRepository) CountHandedInByUserInCourse(ctx context.Context, userID, courseID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Joins("JOIN lessons ON lessons.id = assignments.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID).
		Where("submissions.user_id = ?", userID).
		Where("submissions.status IN ?", handedInStatuses()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *submissionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func handedInStatuses() []string {
	return []string{
		models.SubmissionStatusSubmitted,
		models.SubmissionStatusGraded,
		models.SubmissionStatusLate,
	}
}
