package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/models"
)

// LessonProgressRepository defines data operations for per-lesson
// completion markers.
type LessonProgressRepository interface {
	Get(ctx context.Context, userID, lessonID uint) (models.UserLessonProgress, error)
	MarkCompleted(ctx context.Context, userID, lessonID uint, at time.Time) error
	CountCompletedInCourse(ctx context.Context, userID, courseID uint) (int64, error)
	CountCompletedTotal(ctx context.Context, userID uint) (int64, error)
}

type lessonProgressRepository struct {
	db *gorm.DB
}

// NewLessonProgressRepository instantiates the repository.
func NewLessonProgressRepository(db *gorm.DB) LessonProgressRepository {
	return &lessonProgressRepository{db: db}
}

func (r *lessonProgressRepository) Get(ctx context.Context, userID, lessonID uint) (models.UserLessonProgress, error) {
	var progress models.UserLessonProgress
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&progress).Error; err != nil {
		return models.UserLessonProgress{}, err
	}
	return progress, nil
}

// MarkCompleted upserts the completion marker. Completing an already
// completed lesson only refreshes last_accessed.
func (r *lessonProgressRepository) MarkCompleted(ctx context.Context, userID, lessonID uint, at time.Time) error {
	var progress models.UserLessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&progress).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			progress = models.UserLessonProgress{
				UserID:       userID,
				LessonID:     lessonID,
				Completed:    true,
				CompletedAt:  &at,
				LastAccessed: at,
			}
			return r.db.WithContext(ctx).Create(&progress).Error
		}
		return err
	}

	progress.LastAccessed = at
	if !progress.Completed {
		progress.Completed = true
		progress.CompletedAt = &at
	}
	return r.db.WithContext(ctx).Save(&progress).Error
}

func (r *lessonProgressRepository) CountCompletedInCourse(ctx context.Context, userID, courseID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserLessonProgress{}).
		Joins("JOIN lessons ON lessons.id = user_lesson_progress.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID).
		Where("user_lesson_progress.user_id = ?", userID).
		Where("user_lesson_progress.completed = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *lessonProgressRepository) CountCompletedTotal(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserLessonProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
