package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/models"
)

// GradeJoinRow is a grade joined with its assignment and course context
// for gradebook views.
type GradeJoinRow struct {
	GradeID        uint
	SubmissionID   uint
	PointsEarned   float64
	PointsPossible float64
	Percentage     float64
	Feedback       string
	GraderID       *uint
	GradedAt       time.Time
	AssignmentID   uint
	AssignmentName string
	AssignmentType string
	LessonTitle    string
	CourseID       uint
	CourseTitle    string
}

// GradeRepository defines data operations for the grade ledger.
type GradeRepository interface {
	GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error)
	RecordGrade(ctx context.Context, grade *models.Grade, submission *models.Submission) error
	ListForUser(ctx context.Context, userID uint, courseID *uint) ([]GradeJoinRow, error)
	AverageForUserInCourse(ctx context.Context, userID, courseID uint) (float64, error)
	CountForUserInCourse(ctx context.Context, userID, courseID uint) (int64, error)
	AverageForUser(ctx context.Context, userID uint) (float64, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository instantiates the repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&grade).Error; err != nil {
		return models.Grade{}, err
	}
	return grade, nil
}

// RecordGrade upserts the grade row for a submission and persists the
// submission's graded state in the same transaction. Regrading keeps the
// original row but refreshes all fields including created_at, so the
// ledger always reflects the most recent grading pass.
func (r *gradeRepository) RecordGrade(ctx context.Context, grade *models.Grade, submission *models.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Grade
		err := tx.Where("submission_id = ?", grade.SubmissionID).First(&existing).Error
		switch {
		case err == nil:
			existing.GraderID = grade.GraderID
			existing.PointsEarned = grade.PointsEarned
			existing.PointsPossible = grade.PointsPossible
			existing.Percentage = grade.Percentage
			existing.Feedback = grade.Feedback
			existing.CreatedAt = grade.CreatedAt
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			*grade = existing
		case err == gorm.ErrRecordNotFound:
			if err := tx.Create(grade).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return tx.Save(submission).Error
	})
}

func (r *gradeRepository) ListForUser(ctx context.Context, userID uint, courseID *uint) ([]GradeJoinRow, error) {
	query := r.db.WithContext(ctx).Table("grades").
		Select(`grades.id AS grade_id,
			grades.submission_id AS submission_id,
			grades.points_earned AS points_earned,
			grades.points_possible AS points_possible,
			grades.percentage AS percentage,
			grades.feedback AS feedback,
			grades.grader_id AS grader_id,
			grades.created_at AS graded_at,
			assignments.id AS assignment_id,
			assignments.title AS assignment_name,
			assignments.assignment_type AS assignment_type,
			lessons.title AS lesson_title,
			courses.id AS course_id,
			courses.title AS course_title`).
		Joins("JOIN submissions ON submissions.id = grades.submission_id").
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Joins("JOIN lessons ON lessons.id = assignments.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Joins("JOIN courses ON courses.id = modules.course_id").
		Where("submissions.user_id = ?", userID)

	if courseID != nil {
		query = query.Where("courses.id = ?", *courseID)
	}

	var rows []GradeJoinRow
	if err := query.Order("grades.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gradeRepository) AverageForUserInCourse(ctx context.Context, userID, courseID uint) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Table("grades").
		Select("COALESCE(AVG(grades.percentage), 0)").
		Joins("JOIN submissions ON submissions.id = grades.submission_id").
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Joins("JOIN lessons ON lessons.id = assignments.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID).
		Where("submissions.user_id = ?", userID).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *gradeRepository) CountForUserInCourse(ctx context.Context, userID, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("grades").
		Joins("JOIN submissions ON submissions.id = grades.submission_id").
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Joins("JOIN lessons ON lessons.id = assignments.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID).
		Where("submissions.user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *gradeRepository) AverageForUser(ctx context.Context, userID uint) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Table("grades").
		Select("COALESCE(AVG(grades.percentage), 0)").
		Joins("JOIN submissions ON submissions.id = grades.submission_id").
		Where("submissions.user_id = ?", userID).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return avg, nil
}
