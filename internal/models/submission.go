package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Submission states. late is derived once at submission time; grading moves
// any state to graded.
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusGraded    = "graded"
	SubmissionStatusLate      = "late"
)

// Submission is a student's attempt at one assignment, unique per
// (assignment, user). Exactly one payload variant is populated depending on
// the assignment type: QuizAnswers for quizzes, EssayText for essays, Code
// for code work, Attachments for projects.
type Submission struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	AssignmentID uint              `gorm:"not null;uniqueIndex:idx_submission_assignment_user" json:"assignment_id"`
	UserID       uint              `gorm:"not null;uniqueIndex:idx_submission_assignment_user" json:"user_id"`
	Status       string            `gorm:"size:32;not null;default:pending" json:"status"`
	QuizAnswers  datatypes.JSONMap `gorm:"type:json" json:"quiz_answers,omitempty"`
	EssayText    string            `gorm:"type:text" json:"essay_text,omitempty"`
	Code         string            `gorm:"type:text" json:"code,omitempty"`
	Attachments  datatypes.JSON    `gorm:"type:json" json:"-"`
	SubmittedAt  *time.Time        `json:"submitted_at,omitempty"`
	GradedAt     *time.Time        `json:"graded_at,omitempty"`
	Comments     string            `gorm:"type:text" json:"comments,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Assignment   Assignment        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User         User              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsGraded reports whether a Grade row has been attached.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// AttachmentList decodes the stored attachment URLs.
func (s Submission) AttachmentList() []string {
	if len(s.Attachments) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(s.Attachments, &list); err != nil {
		return nil
	}
	return list
}

// SetAttachments serializes attachment URLs into the JSON column. A nil
// slice clears the column.
func (s *Submission) SetAttachments(urls []string) error {
	if urls == nil {
		s.Attachments = nil
		return nil
	}
	raw, err := json.Marshal(urls)
	if err != nil {
		return err
	}
	s.Attachments = datatypes.JSON(raw)
	return nil
}

// AnswerFor returns the chosen option for a stringified question index.
// JSON numbers arrive as float64; other shapes report no answer.
func (s Submission) AnswerFor(questionKey string) (int, bool) {
	raw, ok := s.QuizAnswers[questionKey]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	default:
		return 0, false
	}
}
