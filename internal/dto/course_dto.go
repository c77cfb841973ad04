package dto

import (
	"time"

	"github.com/openlearn/lms-go-api/internal/models"
)

// CourseCreateRequest describes the payload for authoring a course. New
// courses always start in draft.
type CourseCreateRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"omitempty,max=128"`
	Difficulty  string `json:"difficulty_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	IsPublic    bool   `json:"is_public"`
}

// CourseUpdateRequest captures partial course edits, including the
// draft→published transition.
type CourseUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=128"`
	Difficulty  *string `json:"difficulty_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	IsPublic    *bool   `json:"is_public"`
	Status      *string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	Category   string `query:"category"`
	Difficulty string `query:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Status     string `query:"status" validate:"omitempty,oneof=draft published archived"`
	Search     string `query:"search"`
}

// CourseResponse serializes a course, optionally with its curriculum.
type CourseResponse struct {
	ID            uint             `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Difficulty    string           `json:"difficulty_level"`
	Status        string           `json:"status"`
	AuthorID      uint             `json:"author_id"`
	IsPublic      bool             `json:"is_public"`
	EnrolledCount int              `json:"enrolled_count"`
	RatingAvg     float64          `json:"rating_avg"`
	RatingCount   int              `json:"rating_count"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Modules       []ModuleResponse `json:"modules,omitempty"`
}

// NewCourseResponse converts a Course model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	response := CourseResponse{
		ID:            model.ID,
		Title:         model.Title,
		Description:   model.Description,
		Category:      model.Category,
		Difficulty:    model.Difficulty,
		Status:        model.Status,
		AuthorID:      model.AuthorID,
		IsPublic:      model.IsPublic,
		EnrolledCount: model.EnrolledCount,
		RatingAvg:     model.RatingAvg,
		RatingCount:   model.RatingCount,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}

	if len(model.Modules) > 0 {
		modules := make([]ModuleResponse, 0, len(model.Modules))
		for _, module := range model.Modules {
			modules = append(modules, NewModuleResponse(module))
		}
		response.Modules = modules
	}

	return response
}

// NewCourseResponseSlice converts course models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}

// EnrollmentResponse serializes an enrollment with its cached progress.
type EnrollmentResponse struct {
	ID                 uint       `json:"id"`
	CourseID           uint       `json:"course_id"`
	UserID             uint       `json:"user_id"`
	EnrolledAt         time.Time  `json:"enrolled_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	ProgressPercentage float64    `json:"progress_percentage"`
}

// NewEnrollmentResponse converts an Enrollment model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:                 model.ID,
		CourseID:           model.CourseID,
		UserID:             model.UserID,
		EnrolledAt:         model.EnrolledAt,
		CompletedAt:        model.CompletedAt,
		ProgressPercentage: model.ProgressPercentage,
	}
}

// ReviewRequest rates a course from 1 to 5.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}
