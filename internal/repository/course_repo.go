package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/models"
)

// CourseFilter narrows course listings. When ViewerID is set the query is
// restricted to published courses that are public or authored by the
// viewer; admins list without restriction.
type CourseFilter struct {
	Category   string
	Difficulty string
	Status     string
	Search     string
	ViewerID   *uint
}

// CourseRepository defines data operations for courses and their
// denormalized aggregates.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetWithCurriculum(ctx context.Context, id uint) (models.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	RecountEnrollments(ctx context.Context, courseID uint) error
	UpsertReview(ctx context.Context, review *models.Review) error
	RecomputeRating(ctx context.Context, courseID uint) error
	Count(ctx context.Context) (int64, error)
	TopByEnrollment(ctx context.Context, limit int) ([]CourseEnrollmentRow, error)
}

// CourseEnrollmentRow ranks a course by enrollment count.
type CourseEnrollmentRow struct {
	Title    string
	Students int
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) GetWithCurriculum(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).
		Preload("Modules", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("order_index ASC")
		}).
		Preload("Modules.Lessons", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("order_index ASC")
		}).
		First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) List(ctx context.Context, filter CourseFilter) ([]models.Course, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})

	if filter.ViewerID != nil {
		query = query.Where("status = ?", models.CourseStatusPublished).
			Where("is_public = ? OR author_id = ?", true, *filter.ViewerID)
	} else if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var courses []models.Course
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

// RecountEnrollments rewrites enrolled_count from the enrollments table.
// Full recompute instead of a +1 so the counter can never drift.
func (r *courseRepository) RecountEnrollments(ctx context.Context, courseID uint) error {
	return r.db.WithContext(ctx).Model(&models.Course{}).
		Where("id = ?", courseID).
		Update("enrolled_count", r.db.Model(&models.Enrollment{}).
			Select("COUNT(*)").
			Where("course_id = ?", courseID)).Error
}

func (r *courseRepository) UpsertReview(ctx context.Context, review *models.Review) error {
	var existing models.Review
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", review.CourseID, review.UserID).
		First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return r.db.WithContext(ctx).Create(review).Error
		}
		return err
	}

	existing.Rating = review.Rating
	existing.Comment = review.Comment
	*review = existing
	return r.db.WithContext(ctx).Save(&existing).Error
}

// RecomputeRating rewrites rating_avg and rating_count from the reviews
// table in one transaction.
func (r *courseRepository) RecomputeRating(ctx context.Context, courseID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stats struct {
			Avg   float64
			Count int
		}
		if err := tx.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
			Where("course_id = ?", courseID).
			Scan(&stats).Error; err != nil {
			return err
		}

		return tx.Model(&models.Course{}).
			Where("id = ?", courseID).
			Updates(map[string]interface{}{
				"rating_avg":   stats.Avg,
				"rating_count": stats.Count,
			}).Error
	})
}

func (r *courseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Course{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *courseRepository) TopByEnrollment(ctx context.Context, limit int) ([]CourseEnrollmentRow, error) {
	var rows []CourseEnrollmentRow
	if err := r.db.WithContext(ctx).Model(&models.Course{}).
		Select("courses.title AS title, COUNT(enrollments.id) AS students").
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id").
		Group("courses.id").
		Order("students DESC, courses.id DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
