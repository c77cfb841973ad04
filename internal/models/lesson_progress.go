package models

import "time"

// UserLessonProgress marks one lesson as visited/completed for one user,
// unique per (user, lesson). Completion drives the enrollment progress
// recompute.
type UserLessonProgress struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_progress_user_lesson" json:"user_id"`
	LessonID     uint       `gorm:"not null;uniqueIndex:idx_progress_user_lesson" json:"lesson_id"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	LastAccessed time.Time  `gorm:"autoCreateTime" json:"last_accessed"`
	User         User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Lesson       Lesson     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// TableName overrides gorm's pluralization for this join-style table.
func (UserLessonProgress) TableName() string {
	return "user_lesson_progress"
}
