package repository

import (
	"context"

	"github.com/google/uuid"

	"habitflow/internal/domain/entity"
)

// ExperienceRepository defines the interface for XP profiles and the
// XP-to-level lookup tables.
type ExperienceRepository interface {
	// GetProfile retrieves a user's XP profile. A user with no profile row
	// reads as zero XP at level 1.
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.UserExperience, error)

	// UpdateProfile persists a user's XP total and level
	UpdateProfile(ctx context.Context, userID uuid.UUID, experiencePoints, currentLevel int) error

	// GetLevels retrieves the level table ordered by level number
	GetLevels(ctx context.Context) ([]*entity.Level, error)

	// GetXPActionValue returns the XP value of an active action key,
	// or 0 when the action is unknown or inactive
	GetXPActionValue(ctx context.Context, actionKey string) (int, error)
}
