package dto

import (
	"time"

	"github.com/openlearn/lms-go-api/internal/models"
)

// ModuleCreateRequest describes a new module within a course.
type ModuleCreateRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" validate:"gte=0"`
}

// ModuleUpdateRequest captures partial module edits.
type ModuleUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	OrderIndex  *int    `json:"order_index" validate:"omitempty,gte=0"`
}

// ModuleResponse serializes a module, optionally with its lessons.
type ModuleResponse struct {
	ID          uint             `json:"id"`
	CourseID    uint             `json:"course_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	OrderIndex  int              `json:"order_index"`
	CreatedAt   time.Time        `json:"created_at"`
	Lessons     []LessonResponse `json:"lessons"`
}

// NewModuleResponse converts a Module model into a DTO.
func NewModuleResponse(model models.Module) ModuleResponse {
	lessons := make([]LessonResponse, 0, len(model.Lessons))
	for _, lesson := range model.Lessons {
		lessons = append(lessons, NewLessonResponse(lesson))
	}

	return ModuleResponse{
		ID:          model.ID,
		CourseID:    model.CourseID,
		Title:       model.Title,
		Description: model.Description,
		OrderIndex:  model.OrderIndex,
		CreatedAt:   model.CreatedAt,
		Lessons:     lessons,
	}
}

// LessonCreateRequest describes a new lesson within a module.
type LessonCreateRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Content         string `json:"content"`
	VideoURL        string `json:"video_url" validate:"omitempty,url"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,gt=0"`
	OrderIndex      int    `json:"order_index" validate:"gte=0"`
}

// LessonResponse serializes a lesson.
type LessonResponse struct {
	ID              uint      `json:"id"`
	ModuleID        uint      `json:"module_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	VideoURL        string    `json:"video_url,omitempty"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	OrderIndex      int       `json:"order_index"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewLessonResponse converts a Lesson model into a DTO.
func NewLessonResponse(model models.Lesson) LessonResponse {
	return LessonResponse{
		ID:              model.ID,
		ModuleID:        model.ModuleID,
		Title:           model.Title,
		Content:         model.Content,
		VideoURL:        model.VideoURL,
		DurationMinutes: model.DurationMinutes,
		OrderIndex:      model.OrderIndex,
		CreatedAt:       model.CreatedAt,
	}
}
