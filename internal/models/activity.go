package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is a best-effort audit entry (enrollments, submissions,
// grades, badge awards). Writes are never allowed to fail a user-facing
// operation.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole  string            `gorm:"size:32" json:"actor_role"`
	Action     string            `gorm:"size:128;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
