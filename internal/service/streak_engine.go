package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"habitflow/internal/domain/entity"
	"habitflow/internal/domain/repository"
	"habitflow/internal/domain/service"
	"habitflow/pkg/calendar"
)

// StreakEngine is the day-boundary state machine. Once per calendar day it
// resets every habit's daily counter and settles streaks for the period that
// just closed: daily habits against yesterday's log, weekly and monthly
// habits against the previous week or month at their boundary.
type StreakEngine struct {
	habits      repository.HabitRepository
	logs        repository.HabitLogRepository
	eval        *RecurrenceEvaluator
	experience  service.ExperienceService
	corrections *CorrectionWorker
	cal         *calendar.Calendar
	concurrency int
}

// NewStreakEngine creates a new streak engine. experience and corrections may
// be nil; the corresponding side effects are then skipped.
func NewStreakEngine(
	habits repository.HabitRepository,
	logs repository.HabitLogRepository,
	eval *RecurrenceEvaluator,
	experience service.ExperienceService,
	corrections *CorrectionWorker,
	cal *calendar.Calendar,
) *StreakEngine {
	return &StreakEngine{
		habits:      habits,
		logs:        logs,
		eval:        eval,
		experience:  experience,
		corrections: corrections,
		cal:         cal,
		concurrency: 4,
	}
}

// SetConcurrency overrides the per-tick habit fan-out limit.
func (e *StreakEngine) SetConcurrency(n int) {
	if n > 0 {
		e.concurrency = n
	}
}

// RunDailyTick processes all habits of the user for the new day. Habits are
// independent (habit, date) key spaces, so they run concurrently with a small
// limit. A failure on one habit is logged and must not block the others.
func (e *StreakEngine) RunDailyTick(ctx context.Context, userID uuid.UUID) error {
	habits, err := e.habits.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list habits for tick: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, habit := range habits {
		habit := habit
		g.Go(func() error {
			if err := e.tickHabit(ctx, habit); err != nil {
				log.Printf("[TICK] habit %s (%s): %v", habit.ID, habit.Name, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// tickHabit applies the new-day transition to one habit.
func (e *StreakEngine) tickHabit(ctx context.Context, habit *entity.Habit) error {
	if habit.ReconcileFrequency() && e.corrections != nil {
		e.corrections.Enqueue(habit.ID, habit.FrequencyType, habit.FrequencyOption)
	}

	incremented := false

	switch habit.FrequencyType {
	case entity.FrequencyDaily:
		if err := e.settleDaily(ctx, habit); err != nil {
			return err
		}
	case entity.FrequencyWeekly:
		inc, err := e.settlePeriod(ctx, habit)
		if err != nil {
			return err
		}
		incremented = inc
	case entity.FrequencyMonthly:
		inc, err := e.settlePeriod(ctx, habit)
		if err != nil {
			return err
		}
		incremented = inc
	}
	// flexible and unknown types carry no streak to settle

	if habit.Streak > habit.LongestStreak {
		habit.LongestStreak = habit.Streak
	}

	// The daily counter resets even when the habit was not due: "not due"
	// affects streak continuation only, never freezes the counter.
	habit.ProgressCount = 0

	if err := e.habits.UpdateProgress(ctx, habit.ID, habit.ProgressCount, habit.Streak, habit.LongestStreak, habit.LastPeriodKey); err != nil {
		return fmt.Errorf("failed to persist tick result: %w", err)
	}

	if incremented && e.experience != nil {
		if _, err := e.experience.CheckStreakMilestone(ctx, habit.UserID, habit.ID, habit.Streak); err != nil {
			log.Printf("[XP] milestone check failed for habit %s: %v", habit.ID, err)
		}
	}

	return nil
}

// settleDaily settles a daily-cadence habit against yesterday. Completion
// already moved the streak at logging time, so a completed yesterday leaves
// it untouched; a due-but-missed yesterday resets it; a not-due yesterday
// changes nothing.
func (e *StreakEngine) settleDaily(ctx context.Context, habit *entity.Habit) error {
	yesterday := e.cal.Yesterday()

	due, err := e.eval.IsDueOn(ctx, habit, yesterday)
	if err != nil {
		return err
	}
	if !due {
		return nil
	}

	entry, err := e.logs.GetByHabitAndDate(ctx, habit.ID, e.cal.DateKey(yesterday))
	if err != nil {
		return fmt.Errorf("failed to look up yesterday's log: %w", err)
	}

	if entry == nil || !entry.Completed {
		habit.Streak = 0
	}
	return nil
}

// settlePeriod settles a weekly or monthly habit at its period boundary. The
// evaluation runs only on the first day of a new period, and the habit's
// last-period key makes re-running it a no-op: logs of a closed period do not
// change, so applying the same key twice must never double-increment.
func (e *StreakEngine) settlePeriod(ctx context.Context, habit *entity.Habit) (bool, error) {
	today := e.cal.Today()
	yesterday := e.cal.Yesterday()

	var start, end time.Time
	var key string

	switch {
	case habit.IsWeekly():
		if e.cal.DayOfWeek(today) != 1 { // Monday
			return false, nil
		}
		start, end = e.cal.WeekStart(yesterday), e.cal.WeekEnd(yesterday)
		key = e.cal.WeekKey(yesterday)
	case habit.IsMonthly():
		if e.cal.DayOfMonth(today) != 1 {
			return false, nil
		}
		start, end = e.cal.MonthStart(yesterday), e.cal.MonthEnd(yesterday)
		key = e.cal.MonthKey(yesterday)
	default:
		return false, nil
	}

	if habit.LastPeriodKey != nil && *habit.LastPeriodKey == key {
		return false, nil
	}

	complete, err := e.eval.IsPeriodComplete(ctx, habit, start, end)
	if err != nil {
		return false, err
	}

	if complete {
		habit.Streak++
	} else {
		habit.Streak = 0
	}
	habit.LastPeriodKey = &key

	return complete, nil
}
