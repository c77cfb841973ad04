package dto

import (
	"time"

	"github.com/openlearn/lms-go-api/internal/models"
)

// AssignmentCreateRequest describes gradeable work attached to a lesson.
// Quiz questions are added separately once the assignment exists.
type AssignmentCreateRequest struct {
	Title            string     `json:"title" validate:"required,max=200"`
	Description      string     `json:"description" validate:"required"`
	AssignmentType   string     `json:"assignment_type" validate:"required,oneof=quiz essay code project"`
	PointsPossible   int        `json:"points_possible" validate:"omitempty,gte=1,lte=1000"`
	DueDate          *time.Time `json:"due_date"`
	TimeLimitMinutes *int       `json:"time_limit_minutes" validate:"omitempty,gt=0"`
}

// QuizQuestionsRequest attaches the answer key to a quiz assignment.
type QuizQuestionsRequest struct {
	Questions        []models.QuizQuestion `json:"questions" validate:"required,min=1,dive"`
	ShuffleQuestions bool                  `json:"shuffle_questions"`
	ShuffleOptions   bool                  `json:"shuffle_options"`
}

// AssignmentResponse serializes an assignment. The answer key is never
// exposed through this DTO.
type AssignmentResponse struct {
	ID               uint       `json:"id"`
	LessonID         uint       `json:"lesson_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	AssignmentType   string     `json:"assignment_type"`
	PointsPossible   int        `json:"points_possible"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	TimeLimitMinutes *int       `json:"time_limit_minutes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:               model.ID,
		LessonID:         model.LessonID,
		Title:            model.Title,
		Description:      model.Description,
		AssignmentType:   model.AssignmentType,
		PointsPossible:   model.PointsPossible,
		DueDate:          model.DueDate,
		TimeLimitMinutes: model.TimeLimitMinutes,
		CreatedAt:        model.CreatedAt,
	}
}

// SubmissionBrief summarizes the caller's own submission on assignment
// detail views.
type SubmissionBrief struct {
	ID          uint       `json:"id"`
	Status      string     `json:"status"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	GradedAt    *time.Time `json:"graded_at,omitempty"`
}

// AssignmentDetailResponse is an assignment plus course linkage and the
// caller's submission, if any.
type AssignmentDetailResponse struct {
	AssignmentResponse
	CourseID   uint             `json:"course_id"`
	Submission *SubmissionBrief `json:"submission"`
}

// MyAssignmentResponse lists an assignment from an enrolled course together
// with the caller's submission state. Status is pending when no submission
// row exists yet.
type MyAssignmentResponse struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AssignmentType string     `json:"assignment_type"`
	PointsPossible int        `json:"points_possible"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	LessonID       uint       `json:"lesson_id"`
	LessonTitle    string     `json:"lesson_title"`
	CourseID       uint       `json:"course_id"`
	CourseTitle    string     `json:"course_title"`
	Status         string     `json:"status"`
	SubmissionID   *uint      `json:"submission_id,omitempty"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	GradedAt       *time.Time `json:"graded_at,omitempty"`
}
