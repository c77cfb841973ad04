package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/models"
)

// BadgeRepository defines data operations for the badge catalog and
// per-user awards.
type BadgeRepository interface {
	GetByName(ctx context.Context, name string) (models.Badge, error)
	Has(ctx context.Context, userID, badgeID uint) (bool, error)
	Grant(ctx context.Context, award *models.UserBadge) error
	ListForUser(ctx context.Context, userID uint) ([]models.UserBadge, error)
	Seed(ctx context.Context, badges []models.Badge) error
}

type badgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository instantiates the repository.
func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) GetByName(ctx context.Context, name string) (models.Badge, error) {
	var badge models.Badge
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&badge).Error; err != nil {
		return models.Badge{}, err
	}
	return badge, nil
}

func (r *badgeRepository) Has(ctx context.Context, userID, badgeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *badgeRepository) Grant(ctx context.Context, award *models.UserBadge) error {
	return r.db.WithContext(ctx).Create(award).Error
}

func (r *badgeRepository) ListForUser(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	var awards []models.UserBadge
	if err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&awards).Error; err != nil {
		return nil, err
	}
	return awards, nil
}

// Seed inserts catalog badges that do not exist yet, matched by name.
func (r *badgeRepository) Seed(ctx context.Context, badges []models.Badge) error {
	for i := range badges {
		var existing models.Badge
		err := r.db.WithContext(ctx).
			Where("name = ?", badges[i].Name).
			First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := r.db.WithContext(ctx).Create(&badges[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
