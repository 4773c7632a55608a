package entity

import (
	"time"

	"github.com/google/uuid"
)

// HabitLog is the per-day progress record of a habit. At most one log exists
// per (habit, date); subsequent progress on the same date updates it in place.
type HabitLog struct {
	ID      uuid.UUID
	HabitID uuid.UUID

	// Date in format "YYYY-MM-DD" (reference timezone)
	Date string

	// Value is the accumulated occurrence count recorded that date.
	Value int

	// Completed is true iff the date's accumulated value met the habit's goal
	// at the time of the last write.
	Completed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
