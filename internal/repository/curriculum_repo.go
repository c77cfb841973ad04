package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/models"
)

// ModuleRepository defines data operations for course modules.
type ModuleRepository interface {
	GetByID(ctx context.Context, id uint) (models.Module, error)
	GetWithLessons(ctx context.Context, id uint) (models.Module, error)
	Create(ctx context.Context, module *models.Module) error
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id uint) error
}

type moduleRepository struct {
	db *gorm.DB
}

// NewModuleRepository instantiates the repository.
func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) GetByID(ctx context.Context, id uint) (models.Module, error) {
	var module models.Module
	if err := r.db.WithContext(ctx).First(&module, id).Error; err != nil {
		return models.Module{}, err
	}
	return module, nil
}

func (r *moduleRepository) GetWithLessons(ctx context.Context, id uint) (models.Module, error) {
	var module models.Module
	if err := r.db.WithContext(ctx).
		Preload("Lessons", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("order_index ASC")
		}).
		First(&module, id).Error; err != nil {
		return models.Module{}, err
	}
	return module, nil
}

func (r *moduleRepository) Create(ctx context.Context, module *models.Module) error {
	return r.db.WithContext(ctx).Create(module).Error
}

func (r *moduleRepository) Update(ctx context.Context, module *models.Module) error {
	return r.db.WithContext(ctx).Save(module).Error
}

func (r *moduleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Module{}, id).Error
}

// LessonRepository defines data operations for lessons.
type LessonRepository interface {
	GetByID(ctx context.Context, id uint) (models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id uint) error
	CountInCourse(ctx context.Context, courseID uint) (int64, error)
	CourseOf(ctx context.Context, lessonID uint) (uint, error)
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository instantiates the repository.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) GetByID(ctx context.Context, id uint) (models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return models.Lesson{}, err
	}
	return lesson, nil
}

func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Lesson{}, id).Error
}

func (r *lessonRepository) CountInCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CourseOf resolves the course owning a lesson by walking lesson→module.
func (r *lessonRepository) CourseOf(ctx context.Context, lessonID uint) (uint, error) {
	var courseID uint
	err := r.db.WithContext(ctx).Model(&models.Lesson{}).
		Select("modules.course_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("lessons.id = ?", lessonID).
		Scan(&courseID).Error
	if err != nil {
		return 0, err
	}
	if courseID == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return courseID, nil
}
