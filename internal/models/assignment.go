package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Assignment types. The type decides which submission payload variant is
// required and whether the auto-grader runs.
const (
	AssignmentTypeQuiz    = "quiz"
	AssignmentTypeEssay   = "essay"
	AssignmentTypeCode    = "code"
	AssignmentTypeProject = "project"
)

// QuizQuestion is a single multiple-choice question. CorrectAnswer indexes
// into Options.
type QuizQuestion struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectAnswer int      `json:"correct_answer" validate:"gte=0"`
	Points        int      `json:"points"`
}

// QuizData is the answer key stored on a quiz assignment.
type QuizData struct {
	Questions        []QuizQuestion `json:"questions" validate:"required,min=1,dive"`
	ShuffleQuestions bool           `json:"shuffle_questions"`
	ShuffleOptions   bool           `json:"shuffle_options"`
}

// Assignment is gradeable work attached to a lesson. QuizData is only set
// for quiz-type assignments.
type Assignment struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	LessonID         uint           `gorm:"not null;index" json:"lesson_id"`
	Title            string         `gorm:"size:255;not null" json:"title"`
	Description      string         `gorm:"type:text;not null" json:"description"`
	AssignmentType   string         `gorm:"size:32;not null" json:"assignment_type"`
	QuizData         datatypes.JSON `gorm:"type:json" json:"-"`
	PointsPossible   int            `gorm:"not null;default:100" json:"points_possible"`
	DueDate          *time.Time     `json:"due_date,omitempty"`
	TimeLimitMinutes *int           `json:"time_limit_minutes,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	Lesson           Lesson         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsPastDue reports whether the deadline has already passed at reference.
// Assignments without a due date are never past due.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}

// DecodeQuizData unmarshals the stored answer key. An empty column decodes
// to a QuizData with no questions.
func (a Assignment) DecodeQuizData() (QuizData, error) {
	var data QuizData
	if len(a.QuizData) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(a.QuizData, &data); err != nil {
		return QuizData{}, err
	}
	return data, nil
}

// SetQuizData serializes the answer key into the JSON column.
func (a *Assignment) SetQuizData(data QuizData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	a.QuizData = datatypes.JSON(raw)
	return nil
}
