package dto

import (
	"time"

	"github.com/openlearn/lms-go-api/internal/models"
)

// BadgeResponse serializes a catalog entry.
type BadgeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url,omitempty"`
}

// UserBadgeResponse is a granted badge with its award time.
type UserBadgeResponse struct {
	Badge    BadgeResponse `json:"badge"`
	EarnedAt time.Time     `json:"earned_at"`
}

// NewUserBadgeResponse converts a UserBadge with preloaded Badge into a DTO.
func NewUserBadgeResponse(model models.UserBadge) UserBadgeResponse {
	return UserBadgeResponse{
		Badge: BadgeResponse{
			ID:          model.Badge.ID,
			Name:        model.Badge.Name,
			Description: model.Badge.Description,
			IconURL:     model.Badge.IconURL,
		},
		EarnedAt: model.EarnedAt,
	}
}
