package models

import "time"

// Lesson is an ordered child of a module with optional video metadata.
type Lesson struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ModuleID        uint      `gorm:"not null;index" json:"module_id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	VideoURL        string    `gorm:"size:512" json:"video_url,omitempty"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	OrderIndex      int       `gorm:"not null;default:0" json:"order_index"`
	CreatedAt       time.Time `json:"created_at"`
	Module          Module    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
