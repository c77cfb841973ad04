package models

import "time"

// Grade is the authoritative score for a submission, unique per submission.
// PointsPossible is a snapshot taken at grading time and may diverge from
// the assignment's current value. A nil GraderID marks an auto-grade.
// CreatedAt doubles as "last graded at": re-grading refreshes it.
type Grade struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	SubmissionID   uint       `gorm:"not null;uniqueIndex" json:"submission_id"`
	GraderID       *uint      `json:"grader_id,omitempty"`
	PointsEarned   float64    `gorm:"not null" json:"points_earned"`
	PointsPossible float64    `gorm:"not null" json:"points_possible"`
	Percentage     float64    `gorm:"not null" json:"percentage"`
	Feedback       string     `gorm:"type:text" json:"feedback,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	Submission     Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
