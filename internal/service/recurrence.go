package service

import (
	"context"
	"fmt"
	"time"

	"habitflow/internal/domain/entity"
	"habitflow/internal/domain/repository"
	"habitflow/pkg/calendar"
)

// RecurrenceEvaluator decides whether a habit is due on a date and whether a
// period's accumulated completions satisfy the configured goal. It only
// touches storage for the count-per-period options, which depend on how many
// completions the current period already holds.
type RecurrenceEvaluator struct {
	logs repository.HabitLogRepository
	cal  *calendar.Calendar
}

// NewRecurrenceEvaluator creates a new recurrence evaluator.
func NewRecurrenceEvaluator(logs repository.HabitLogRepository, cal *calendar.Calendar) *RecurrenceEvaluator {
	return &RecurrenceEvaluator{logs: logs, cal: cal}
}

// IsDueOn reports whether the habit is due on the given date. Malformed or
// unknown configuration reads as due: hiding a habit is worse than showing
// one too often.
func (e *RecurrenceEvaluator) IsDueOn(ctx context.Context, habit *entity.Habit, date time.Time) (bool, error) {
	switch habit.FrequencyType {
	case entity.FrequencyDaily, entity.FrequencyFlexible:
		return true, nil

	case entity.FrequencyWeekly:
		switch habit.FrequencyOption {
		case entity.OptionWeekDays:
			dayOfWeek := e.cal.DayOfWeek(date)
			for _, day := range habit.FrequencyDetail.WeekdayNumbers() {
				if day == dayOfWeek {
					return true, nil
				}
			}
			return false, nil
		case entity.OptionWeekCount:
			return e.isCountStillOpen(ctx, habit, e.cal.WeekStart(date), e.cal.WeekEnd(date))
		default:
			return true, nil
		}

	case entity.FrequencyMonthly:
		switch habit.FrequencyOption {
		case entity.OptionMonthDays:
			dayOfMonth := e.cal.DayOfMonth(date)
			if habit.FrequencyDetail == nil {
				return false, nil
			}
			for _, day := range habit.FrequencyDetail.MonthDays {
				if day == dayOfMonth {
					return true, nil
				}
			}
			return false, nil
		case entity.OptionMonthCount:
			return e.isCountStillOpen(ctx, habit, e.cal.MonthStart(date), e.cal.MonthEnd(date))
		default:
			return true, nil
		}

	default:
		return true, nil
	}
}

// isCountStillOpen reports whether the habit's per-period requirement has not
// been met yet within [start, end]. Once the required count is reached the
// habit stops being due for the remainder of the period.
func (e *RecurrenceEvaluator) isCountStillOpen(ctx context.Context, habit *entity.Habit, start, end time.Time) (bool, error) {
	completed, err := e.logs.CountCompletedInRange(ctx, habit.ID, e.cal.DateKey(start), e.cal.DateKey(end))
	if err != nil {
		return false, fmt.Errorf("failed to count completed logs: %w", err)
	}
	return completed < habit.Counter(), nil
}

// IsPeriodComplete reports whether the habit's goal was satisfied within
// [start, end]. Specific-days options require every configured day completed;
// count options require the configured counter. Other options cannot be
// judged complete and report false.
func (e *RecurrenceEvaluator) IsPeriodComplete(ctx context.Context, habit *entity.Habit, start, end time.Time) (bool, error) {
	completed, err := e.logs.CountCompletedInRange(ctx, habit.ID, e.cal.DateKey(start), e.cal.DateKey(end))
	if err != nil {
		return false, fmt.Errorf("failed to count completed logs: %w", err)
	}

	switch habit.FrequencyOption {
	case entity.OptionWeekDays:
		required := 0
		if habit.FrequencyDetail != nil {
			required = len(habit.FrequencyDetail.WeekDays)
		}
		return required > 0 && completed >= required, nil

	case entity.OptionMonthDays:
		required := 0
		if habit.FrequencyDetail != nil {
			required = len(habit.FrequencyDetail.MonthDays)
		}
		return required > 0 && completed >= required, nil

	case entity.OptionWeekCount, entity.OptionMonthCount:
		required := habit.Counter()
		return required > 0 && completed >= required, nil

	default:
		return false, nil
	}
}

// WeekCompletedDays counts completed logs in the week containing today.
func (e *RecurrenceEvaluator) WeekCompletedDays(ctx context.Context, habit *entity.Habit) (int, error) {
	today := e.cal.Today()
	return e.logs.CountCompletedInRange(ctx, habit.ID, e.cal.DateKey(e.cal.WeekStart(today)), e.cal.DateKey(e.cal.WeekEnd(today)))
}
