package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/dto"
	"github.com/openlearn/lms-go-api/internal/models"
	"github.com/openlearn/lms-go-api/internal/observability"
	"github.com/openlearn/lms-go-api/internal/repository"
)

// BadgeAwarder grants badges by catalog name. Awards are idempotent and
// best-effort: unknown names and duplicate grants are silent no-ops, and
// infrastructure errors are logged rather than propagated, so a failed
// award can never fail the operation that earned it.
type BadgeAwarder interface {
	Award(ctx context.Context, userID uint, badgeName string)
}

// BadgeService exposes the badge catalog and per-user awards.
type BadgeService interface {
	BadgeAwarder
	ListForUser(ctx context.Context, userID uint) ([]dto.UserBadgeResponse, error)
	SeedCatalog(ctx context.Context) error
}

type badgeService struct {
	repo   repository.BadgeRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewBadgeService constructs the badge service.
func NewBadgeService(repo repository.BadgeRepository, logger zerolog.Logger) BadgeService {
	return &badgeService{
		repo:   repo,
		logger: logger.With().Str("component", "badge_service").Logger(),
		now:    time.Now,
	}
}

func (s *badgeService) Award(ctx context.Context, userID uint, badgeName string) {
	badge, err := s.repo.GetByName(ctx, badgeName)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("badge", badgeName).Msg("badge lookup failed")
		}
		return
	}

	held, err := s.repo.Has(ctx, userID, badge.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("badge", badgeName).Uint("user_id", userID).Msg("badge ownership check failed")
		return
	}
	if held {
		return
	}

	award := models.UserBadge{
		UserID:   userID,
		BadgeID:  badge.ID,
		EarnedAt: s.now(),
	}
	if err := s.repo.Grant(ctx, &award); err != nil {
		s.logger.Warn().Err(err).Str("badge", badgeName).Uint("user_id", userID).Msg("badge grant failed")
		return
	}

	observability.BadgesAwarded().WithLabelValues(badgeName).Inc()
	s.logger.Info().Str("badge", badgeName).Uint("user_id", userID).Msg("badge awarded")
}

func (s *badgeService) ListForUser(ctx context.Context, userID uint) ([]dto.UserBadgeResponse, error) {
	awards, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserBadgeResponse, 0, len(awards))
	for _, award := range awards {
		responses = append(responses, dto.NewUserBadgeResponse(award))
	}
	return responses, nil
}

// SeedCatalog inserts the built-in badges if they are missing.
func (s *badgeService) SeedCatalog(ctx context.Context) error {
	return s.repo.Seed(ctx, []models.Badge{
		{Name: models.BadgeFirstSteps, Description: "Completed a first course"},
		{Name: models.BadgeCourseCompleter, Description: "Completed a course from start to finish"},
		{Name: models.BadgeTopPerformer, Description: "Scored a perfect result on a quiz"},
	})
}
