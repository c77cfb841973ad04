package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/models"
)

// ActivityFeedRow is an audit entry joined with the actor's display name.
type ActivityFeedRow struct {
	ActorName string
	Action    string
	CreatedAt time.Time
}

// ActivityRepository defines data operations for the audit trail.
type ActivityRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error)
	ListRecentWithActor(ctx context.Context, limit int) ([]ActivityFeedRow, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository instantiates the repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *activityRepository) ListRecentWithActor(ctx context.Context, limit int) ([]ActivityFeedRow, error) {
	var rows []ActivityFeedRow
	if err := r.db.WithContext(ctx).Table("activity_logs").
		Select("users.name AS actor_name, activity_logs.action AS action, activity_logs.created_at AS created_at").
		Joins("JOIN users ON users.id = activity_logs.actor_id").
		Order("activity_logs.created_at DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
