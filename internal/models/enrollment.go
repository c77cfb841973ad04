package models

import "time"

// Enrollment records a user's registration in a course. ProgressPercentage
// is a cache: it is rewritten by full recompute after every lesson
// completion, never adjusted incrementally.
type Enrollment struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	CourseID           uint       `gorm:"not null;uniqueIndex:idx_enrollment_course_user" json:"course_id"`
	UserID             uint       `gorm:"not null;uniqueIndex:idx_enrollment_course_user" json:"user_id"`
	EnrolledAt         time.Time  `gorm:"autoCreateTime" json:"enrolled_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	ProgressPercentage float64    `gorm:"not null;default:0" json:"progress_percentage"`
	Course             Course     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User               User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
