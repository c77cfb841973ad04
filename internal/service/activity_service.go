package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/openlearn/lms-go-api/internal/models"
	"github.com/openlearn/lms-go-api/internal/repository"
)

// Actor identifies who performs an operation, as established by the
// authentication middleware.
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// IsStaff reports whether the actor may author courses and grade work.
func (a Actor) IsStaff() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleTeacher
}

// ActivityEntry describes one audit event to record.
type ActivityEntry struct {
	ActorID    uint
	ActorRole  string
	Action     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// ActivityRecorder persists audit events. Recording is best effort; callers
// ignore the returned error for user-facing flows.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (models.ActivityLog, error)
}

// ActivityService records and lists audit events.
type ActivityService interface {
	ActivityRecorder
	RecentFeed(ctx context.Context, limit int) ([]repository.ActivityFeedRow, error)
}

type activityService struct {
	repo   repository.ActivityRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewActivityService constructs the activity service.
func NewActivityService(repo repository.ActivityRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
		now:    time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (models.ActivityLog, error) {
	row := models.ActivityLog{
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		CreatedAt:  s.now(),
	}
	if len(entry.Metadata) > 0 {
		row.Metadata = entry.Metadata
	}

	if err := s.repo.Create(ctx, &row); err != nil {
		s.logger.Warn().Err(err).Str("action", entry.Action).Msg("failed to record activity")
		return models.ActivityLog{}, err
	}
	return row, nil
}

func (s *activityService) RecentFeed(ctx context.Context, limit int) ([]repository.ActivityFeedRow, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListRecentWithActor(ctx, limit)
}
