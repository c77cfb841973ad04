package models

import "time"

// Review is one user's rating of a course, unique per (course, user). The
// course rating aggregates are recomputed from reviews on every write.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_review_course_user" json:"course_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_review_course_user" json:"user_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment,omitempty"`
	ReviewedAt time.Time `gorm:"autoCreateTime" json:"reviewed_at"`
	Course     Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
