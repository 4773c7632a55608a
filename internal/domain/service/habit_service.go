package service

import (
	"context"

	"github.com/google/uuid"

	"habitflow/internal/domain/entity"
)

// CreateHabitParams carries the caller-supplied fields of a new habit.
type CreateHabitParams struct {
	Name            string
	Icon            *string
	Unit            *string
	GoalValue       int
	FrequencyType   entity.FrequencyType
	FrequencyOption entity.FrequencyOption
	FrequencyDetail *entity.FrequencyDetail
}

// UpdateHabitParams carries optional habit updates; nil fields are untouched.
type UpdateHabitParams struct {
	Name            *string
	Icon            *string
	Unit            *string
	GoalValue       *int
	FrequencyType   *entity.FrequencyType
	FrequencyOption *entity.FrequencyOption
	FrequencyDetail *entity.FrequencyDetail
}

// HabitService defines the interface for habit business logic.
type HabitService interface {
	// CreateHabit creates a new habit for the user
	CreateHabit(ctx context.Context, userID uuid.UUID, params CreateHabitParams) (*entity.Habit, error)

	// GetHabit retrieves one of the user's habits
	GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)

	// ListHabits retrieves all habits for a user
	ListHabits(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error)

	// UpdateHabit updates a habit's editable fields
	UpdateHabit(ctx context.Context, habitID, userID uuid.UUID, params UpdateHabitParams) (*entity.Habit, error)

	// DeleteHabit deletes a habit
	DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error

	// LogProgress records a progress delta for today, updating the daily log
	// entry and, for daily-cadence habits, the immediate streak
	LogProgress(ctx context.Context, habitID, userID uuid.UUID, delta int) (*entity.Habit, error)

	// GetHabitHistory retrieves a habit's log entries within [start, end]
	GetHabitHistory(ctx context.Context, habitID, userID uuid.UUID, start, end string) ([]*entity.HabitLog, error)
}

// StreakEngine runs the day-boundary state machine over a user's habits.
type StreakEngine interface {
	// RunDailyTick resets daily counters and recomputes streaks for every
	// habit of the user. Per-habit failures are logged, not fatal.
	RunDailyTick(ctx context.Context, userID uuid.UUID) error
}

// ExperienceService grants XP for engine-detected milestones and reports
// level progression. Check* methods are triggered by state transitions in the
// core and return nil when nothing was granted.
type ExperienceService interface {
	// Grant awards the XP configured for actionKey to the user
	Grant(ctx context.Context, userID uuid.UUID, actionKey string) (*entity.XPGrant, error)

	// GetProfile returns the user's XP total and level
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.UserExperience, error)

	// GetLevelInfo returns the user's position within the level table
	GetLevelInfo(ctx context.Context, userID uuid.UUID) (*entity.LevelInfo, error)

	// CheckStreakMilestone grants XP when streak is exactly 7, 14 or 30
	CheckStreakMilestone(ctx context.Context, userID, habitID uuid.UUID, streak int) (*entity.XPGrant, error)

	// CheckDailyGoal grants XP once per day when every habit due today is complete
	CheckDailyGoal(ctx context.Context, userID uuid.UUID) (*entity.XPGrant, error)

	// CheckFirstHabitCreated grants XP when the user's first habit was just created
	CheckFirstHabitCreated(ctx context.Context, userID uuid.UUID) (*entity.XPGrant, error)

	// CheckComeback grants XP once per day when the user returns after three
	// or more days without logging any progress
	CheckComeback(ctx context.Context, userID uuid.UUID) (*entity.XPGrant, error)

	// CheckWeeklyGoal grants XP once per week when every week-cadence habit
	// has met its weekly requirement
	CheckWeeklyGoal(ctx context.Context, userID uuid.UUID) (*entity.XPGrant, error)
}
