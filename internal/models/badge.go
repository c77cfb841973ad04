package models

import "time"

// Built-in badge names awarded by the platform.
const (
	BadgeTopPerformer    = "Top performer"
	BadgeFirstSteps      = "First steps"
	BadgeCourseCompleter = "Course completer"
)

// Badge is a catalog entry for a named achievement. Awards reference the
// catalog by exact name; unknown names are never created implicitly.
type Badge struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IconURL     string `gorm:"size:512" json:"icon_url,omitempty"`
}

// UserBadge is a monotonic grant record: once written for a (user, badge)
// pair it is never duplicated or removed.
type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID  uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	EarnedAt time.Time `gorm:"autoCreateTime" json:"earned_at"`
	User     User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Badge    Badge     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"badge"`
}
