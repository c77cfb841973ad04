package dto

import (
	"time"

	"github.com/openlearn/lms-go-api/internal/models"
)

// GradeSubmissionRequest is the manual grading payload. The percentage is
// always recomputed server-side and never accepted from the caller.
type GradeSubmissionRequest struct {
	PointsEarned float64 `json:"points_earned" validate:"gte=0"`
	Feedback     string  `json:"feedback" validate:"omitempty,max=5000"`
}

// GradeResponse serializes one ledger entry.
type GradeResponse struct {
	ID             uint      `json:"id"`
	SubmissionID   uint      `json:"submission_id"`
	GraderID       *uint     `json:"grader_id,omitempty"`
	PointsEarned   float64   `json:"points_earned"`
	PointsPossible float64   `json:"points_possible"`
	Percentage     float64   `json:"percentage"`
	Feedback       string    `json:"feedback,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewGradeResponse converts a Grade model into a DTO.
func NewGradeResponse(model models.Grade) GradeResponse {
	return GradeResponse{
		ID:             model.ID,
		SubmissionID:   model.SubmissionID,
		GraderID:       model.GraderID,
		PointsEarned:   model.PointsEarned,
		PointsPossible: model.PointsPossible,
		Percentage:     model.Percentage,
		Feedback:       model.Feedback,
		CreatedAt:      model.CreatedAt,
	}
}

// NewGradeResponseSlice converts grade models into DTOs.
func NewGradeResponseSlice(grades []models.Grade) []GradeResponse {
	responses := make([]GradeResponse, 0, len(grades))
	for _, grade := range grades {
		responses = append(responses, NewGradeResponse(grade))
	}
	return responses
}

// DetailedGradeResponse is a ledger entry joined with assignment and course
// titles for reporting views.
type DetailedGradeResponse struct {
	GradeResponse
	AssignmentID    uint   `json:"assignment_id"`
	AssignmentTitle string `json:"assignment_title"`
	CourseID        uint   `json:"course_id"`
	CourseTitle     string `json:"course_title"`
}
