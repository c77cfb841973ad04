package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/models"
)

// EnrollmentRepository defines data operations for enrollments and the
// cached progress percentage.
type EnrollmentRepository interface {
	Get(ctx context.Context, courseID, userID uint) (models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateProgress(ctx context.Context, courseID, userID uint, percentage float64) error
	MarkCompleted(ctx context.Context, courseID, userID uint, completedAt time.Time) error
	CountForUser(ctx context.Context, userID uint) (int64, error)
	CountCompletedForUser(ctx context.Context, userID uint) (int64, error)
	AverageProgressForUser(ctx context.Context, userID uint) (float64, error)
	Count(ctx context.Context) (int64, error)
	CountInProgressRange(ctx context.Context, low, high float64) (int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates the repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Get(ctx context.Context, courseID, userID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&enrollment).Error; err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) UpdateProgress(ctx context.Context, courseID, userID uint, percentage float64) error {
	return r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Update("progress_percentage", percentage).Error
}

func (r *enrollmentRepository) MarkCompleted(ctx context.Context, courseID, userID uint, completedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Update("completed_at", completedAt).Error
}

func (r *enrollmentRepository) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *enrollmentRepository) AverageProgressForUser(ctx context.Context, userID uint) (float64, error) {
	var avg float64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Select("COALESCE(AVG(progress_percentage), 0)").
		Where("user_id = ?", userID).
		Scan(&avg).Error; err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *enrollmentRepository) CountCompletedForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *enrollmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *enrollmentRepository) CountInProgressRange(ctx context.Context, low, high float64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("progress_percentage >= ? AND progress_percentage <= ?", low, high).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
