package repository

import (
	"context"

	"github.com/google/uuid"

	"habitflow/internal/domain/entity"
)

// HabitRepository defines the interface for habit persistence.
type HabitRepository interface {
	// Create creates a new habit
	Create(ctx context.Context, habit *entity.Habit) error

	// GetByID retrieves a habit by ID
	GetByID(ctx context.Context, habitID uuid.UUID) (*entity.Habit, error)

	// GetByIDAndUserID retrieves a habit by ID and user ID (for authorization)
	GetByIDAndUserID(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)

	// GetByUserID retrieves all habits for a user
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error)

	// CountByUserID returns the number of habits a user has
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)

	// Update updates the editable fields of a habit
	Update(ctx context.Context, habit *entity.Habit) error

	// UpdateProgress updates the daily counter and streak state in one write
	UpdateProgress(ctx context.Context, habitID uuid.UUID, progressCount, streak, longestStreak int, lastPeriodKey *string) error

	// UpdateFrequency persists a reconciled frequency configuration
	UpdateFrequency(ctx context.Context, habitID uuid.UUID, frequencyType entity.FrequencyType, frequencyOption entity.FrequencyOption) error

	// Delete deletes a habit
	Delete(ctx context.Context, habitID uuid.UUID) error

	// ListUserIDs returns the distinct users that own at least one habit
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}
