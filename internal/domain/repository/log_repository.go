package repository

import (
	"context"

	"github.com/google/uuid"

	"habitflow/internal/domain/entity"
)

// HabitLogRepository defines the interface for per-day progress records.
// Dates are YYYY-MM-DD strings in the reference timezone.
type HabitLogRepository interface {
	// Create creates a new log entry
	Create(ctx context.Context, log *entity.HabitLog) error

	// GetByHabitAndDate retrieves the log for a habit on a date.
	// Returns (nil, nil) when no log exists.
	GetByHabitAndDate(ctx context.Context, habitID uuid.UUID, date string) (*entity.HabitLog, error)

	// Update overwrites the value and completed flag of a log entry
	Update(ctx context.Context, logID uuid.UUID, value int, completed bool) error

	// QueryRange retrieves logs for a habit within [start, end] inclusive
	QueryRange(ctx context.Context, habitID uuid.UUID, start, end string, completedOnly bool) ([]*entity.HabitLog, error)

	// CountCompletedInRange counts completed logs within [start, end] inclusive
	CountCompletedInRange(ctx context.Context, habitID uuid.UUID, start, end string) (int, error)

	// LatestDateKeyForUser returns the most recent log date across all of a
	// user's habits, or "" when the user has never logged progress
	LatestDateKeyForUser(ctx context.Context, userID uuid.UUID) (string, error)
}
