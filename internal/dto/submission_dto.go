package dto

import (
	"time"

	"github.com/openlearn/lms-go-api/internal/models"
)

// SubmissionCreateRequest carries the type-specific submission payload.
// Exactly one variant is expected depending on the assignment type: the
// answer map for quizzes, essay text for essays, code for code work, and an
// optional attachment list for projects.
type SubmissionCreateRequest struct {
	QuizAnswers map[string]int `json:"quiz_answers" validate:"omitempty,dive,gte=0"`
	EssayText   string         `json:"essay_text"`
	Code        string         `json:"code"`
	Attachments []string       `json:"attachments" validate:"omitempty,dive,max=512"`
}

// SubmissionResponse is returned after submitting or fetching an attempt.
type SubmissionResponse struct {
	ID           uint           `json:"id"`
	AssignmentID uint           `json:"assignment_id"`
	UserID       uint           `json:"user_id"`
	Status       string         `json:"status"`
	QuizAnswers  map[string]int `json:"quiz_answers,omitempty"`
	EssayText    string         `json:"essay_text,omitempty"`
	Code         string         `json:"code,omitempty"`
	Attachments  []string       `json:"attachments,omitempty"`
	SubmittedAt  *time.Time     `json:"submitted_at,omitempty"`
	GradedAt     *time.Time     `json:"graded_at,omitempty"`
	Comments     string         `json:"comments,omitempty"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		UserID:       model.UserID,
		Status:       model.Status,
		EssayText:    model.EssayText,
		Code:         model.Code,
		Attachments:  model.AttachmentList(),
		SubmittedAt:  model.SubmittedAt,
		GradedAt:     model.GradedAt,
		Comments:     model.Comments,
	}

	if len(model.QuizAnswers) > 0 {
		answers := make(map[string]int, len(model.QuizAnswers))
		for key := range model.QuizAnswers {
			if choice, ok := model.AnswerFor(key); ok {
				answers[key] = choice
			}
		}
		response.QuizAnswers = answers
	}

	return response
}

// StartResponse reports the outcome of starting an assignment attempt.
type StartResponse struct {
	SubmissionID   uint   `json:"submission_id"`
	Status         string `json:"status"`
	AlreadyStarted bool   `json:"already_started"`
}

// MySubmissionResponse joins one of the caller's submissions with its
// assignment, lesson, course and grade.
type MySubmissionResponse struct {
	SubmissionID   uint       `json:"submission_id"`
	Status         string     `json:"status"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	GradedAt       *time.Time `json:"graded_at,omitempty"`
	AssignmentID   uint       `json:"assignment_id"`
	AssignmentName string     `json:"assignment_title"`
	PointsPossible int        `json:"points_possible"`
	LessonID       uint       `json:"lesson_id"`
	LessonTitle    string     `json:"lesson_title"`
	CourseID       uint       `json:"course_id"`
	CourseTitle    string     `json:"course_title"`
	PointsEarned   *float64   `json:"points_earned,omitempty"`
	Percentage     *float64   `json:"percentage,omitempty"`
	Feedback       string     `json:"feedback,omitempty"`
}

// TeachingSubmissionResponse is one row of the teacher/admin grading inbox.
type TeachingSubmissionResponse struct {
	SubmissionID   uint       `json:"submission_id"`
	Status         string     `json:"status"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	GradedAt       *time.Time `json:"graded_at,omitempty"`
	StudentID      uint       `json:"student_id"`
	StudentName    string     `json:"student_name"`
	StudentEmail   string     `json:"student_email"`
	AssignmentID   uint       `json:"assignment_id"`
	AssignmentName string     `json:"assignment_title"`
	PointsPossible int        `json:"points_possible"`
	LessonID       uint       `json:"lesson_id"`
	LessonTitle    string     `json:"lesson_title"`
	CourseID       uint       `json:"course_id"`
	CourseTitle    string     `json:"course_title"`
	PointsEarned   *float64   `json:"points_earned,omitempty"`
	Percentage     *float64   `json:"percentage,omitempty"`
	Feedback       string     `json:"feedback,omitempty"`
}
