package models

import "time"

// Course lifecycle states. Publishing is one-directional: there is no
// unpublish transition.
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

// Difficulty levels accepted for a course.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Course is the top-level unit of study. enrolled_count and the rating
// aggregates are denormalized and always rewritten by full recompute.
type Course struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Category      string    `gorm:"size:128" json:"category"`
	Difficulty    string    `gorm:"size:32;not null;default:beginner" json:"difficulty_level"`
	Status        string    `gorm:"size:32;not null;default:draft" json:"status"`
	AuthorID      uint      `gorm:"not null;index" json:"author_id"`
	IsPublic      bool      `gorm:"not null;default:false" json:"is_public"`
	EnrolledCount int       `gorm:"not null;default:0" json:"enrolled_count"`
	RatingAvg     float64   `gorm:"not null;default:0" json:"rating_avg"`
	RatingCount   int       `gorm:"not null;default:0" json:"rating_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Author        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Modules       []Module  `json:"modules,omitempty"`
}

// IsVisibleTo reports whether a non-staff reader may see the course without
// an enrollment check.
func (c Course) IsVisibleTo(userID uint) bool {
	if c.AuthorID == userID {
		return true
	}
	return c.Status == CourseStatusPublished && c.IsPublic
}
