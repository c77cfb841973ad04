package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/models"
)

// CourseRef links an assignment to its owning course and author, resolved
// by walking assignment→lesson→module→course.
type CourseRef struct {
	CourseID uint
	AuthorID uint
}

// UserAssignmentRow is one assignment from an enrolled course joined with
// the caller's submission state.
type UserAssignmentRow struct {
	AssignmentID   uint
	Title          string
	Description    string
	AssignmentType string
	PointsPossible int
	DueDate        *time.Time
	LessonID       uint
	LessonTitle    string
	CourseID       uint
	CourseTitle    string
	SubmissionID   *uint
	Status         *string
	SubmittedAt    *time.Time
	GradedAt       *time.Time
}

// AssignmentRepository defines data operations for assignments.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	ListByLesson(ctx context.Context, lessonID uint) ([]models.Assignment, error)
	ResolveCourse(ctx context.Context, assignmentID uint) (CourseRef, error)
	ListForUser(ctx context.Context, userID uint, status string) ([]UserAssignmentRow, error)
	CountInCourse(ctx context.Context, courseID uint) (int64, error)
	CountForUser(ctx context.Context, userID uint) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepository) ListByLesson(ctx context.Context, lessonID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("created_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) ResolveCourse(ctx context.Context, assignmentID uint) (CourseRef, error) {
	var ref CourseRef
	err := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Select("courses.id AS course_id, courses.author_id AS author_id").
		Joins("JOIN lessons ON lessons.id = assignments.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Joins("JOIN courses ON courses.id = modules.course_id").
		Where("assignments.id = ?", assignmentID).
		Scan(&ref).Error
	if err != nil {
		return CourseRef{}, err
	}
	if ref.CourseID == 0 {
		return CourseRef{}, gorm.ErrRecordNotFound
	}
	return ref, nil
}

func (r *assignmentRepository) ListForUser(ctx context.Context, userID uint, status string) ([]UserAssignmentRow, error) {
	query := r.db.WithContext(ctx).Table("enrollments").
		Select(`assignments.id AS assignment_id,
			assignments.title AS title,
			assignments.description AS description,
			assignments.assignment_type AS assignment_type,
			assignments.points_possible AS points_possible,
			assignments.due_date AS due_date,
			assignments.lesson_id AS lesson_id,
			lessons.title AS lesson_title,
			courses.id AS course_id,
			courses.title AS course_title,
			submissions.id AS submission_id,
			submissions.status AS status,
			submissions.submitted_at AS submitted_at,
			submissions.graded_at AS graded_at`).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Joins("JOIN modules ON modules.course_id = courses.id").
		Joins("JOIN lessons ON lessons.module_id = modules.id").
		Joins("JOIN assignments ON assignments.lesson_id = lessons.id").
		Joins("LEFT JOIN submissions ON submissions.assignment_id = assignments.id AND submissions.user_id = enrollments.user_id").
		Where("enrollments.user_id = ?", userID)

	switch status {
	case "":
	case models.SubmissionStatusPending:
		query = query.Where("submissions.id IS NULL OR submissions.status = ?", models.SubmissionStatusPending)
	default:
		query = query.Where("submissions.status = ?", status)
	}

	var rows []UserAssignmentRow
	if err := query.
		Order("assignments.due_date IS NULL, assignments.due_date ASC, assignments.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assignmentRepository) CountInCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Joins("JOIN lessons ON lessons.id = assignments.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForUser counts distinct assignments across all courses the user is
// enrolled in.
func (r *assignmentRepository) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("enrollments").
		Joins("JOIN modules ON modules.course_id = enrollments.course_id").
		Joins("JOIN lessons ON lessons.module_id = modules.id").
		Joins("JOIN assignments ON assignments.lesson_id = lessons.id").
		Where("enrollments.user_id = ?", userID).
		Distinct("assignments.id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
