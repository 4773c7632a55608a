package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitflow/internal/domain/entity"
)

func newTestEngine(date string) (*StreakEngine, *memHabitRepo, *memLogRepo) {
	cal := newTestCalendar(date)
	habits := newMemHabitRepo()
	logs := newMemLogRepo()
	eval := NewRecurrenceEvaluator(logs, cal)
	engine := NewStreakEngine(habits, logs, eval, nil, nil, cal)
	return engine, habits, logs
}

func TestDailyTickResetsMissedStreak(t *testing.T) {
	engine, habits, _ := newTestEngine("2026-09-01")

	userID := uuid.New()
	habit := &entity.Habit{
		ID: uuid.New(), UserID: userID, Name: "Run",
		GoalValue: 1, ProgressCount: 0, Streak: 5, LongestStreak: 8,
		FrequencyType: entity.FrequencyDaily, FrequencyOption: entity.OptionAll,
	}
	habits.put(habit)

	require.NoError(t, engine.RunDailyTick(context.Background(), userID))

	got := habits.get(habit.ID)
	assert.Equal(t, 0, got.Streak)
	assert.Equal(t, 8, got.LongestStreak)
	assert.Equal(t, 0, got.ProgressCount)
}

func TestDailyTickKeepsCompletedStreak(t *testing.T) {
	engine, habits, logs := newTestEngine("2026-09-01")

	userID := uuid.New()
	habit := &entity.Habit{
		ID: uuid.New(), UserID: userID, Name: "Run",
		GoalValue: 1, ProgressCount: 1, Streak: 5, LongestStreak: 5,
		FrequencyType: entity.FrequencyDaily, FrequencyOption: entity.OptionAll,
	}
	habits.put(habit)
	logs.seed(habit.ID, "2026-08-31", 1, true)

	require.NoError(t, engine.RunDailyTick(context.Background(), userID))

	got := habits.get(habit.ID)
	assert.Equal(t, 5, got.Streak)
	assert.Equal(t, 0, got.ProgressCount)
}

func TestTickResetsCounterForFlexibleHabits(t *testing.T) {
	engine, habits, _ := newTestEngine("2026-09-01")

	userID := uuid.New()
	habit := &entity.Habit{
		ID: uuid.New(), UserID: userID, Name: "Stretch",
		GoalValue: 3, ProgressCount: 2, Streak: 4, LongestStreak: 4,
		FrequencyType: entity.FrequencyFlexible, FrequencyOption: entity.OptionAll,
	}
	habits.put(habit)

	require.NoError(t, engine.RunDailyTick(context.Background(), userID))

	got := habits.get(habit.ID)
	assert.Equal(t, 4, got.Streak, "flexible cadence carries no streak to settle")
	assert.Equal(t, 0, got.ProgressCount)
}

func TestTickLeavesUnknownFrequencyTypeAlone(t *testing.T) {
	engine, habits, _ := newTestEngine("2026-09-01")

	userID := uuid.New()
	habit := &entity.Habit{
		ID: uuid.New(), UserID: userID, Name: "Mystery",
		GoalValue: 1, ProgressCount: 1, Streak: 3, LongestStreak: 3,
		FrequencyType: "lunar", FrequencyOption: entity.OptionAll,
	}
	habits.put(habit)

	require.NoError(t, engine.RunDailyTick(context.Background(), userID))

	got := habits.get(habit.ID)
	assert.Equal(t, 3, got.Streak)
	assert.Equal(t, "lunar", string(got.FrequencyType))
	assert.Equal(t, 0, got.ProgressCount)
}

func TestWeeklyTickIncrementsOnCompleteWeek(t *testing.T) {
	// Monday 2026-09-07; the closed week is Aug 31 - Sep 6.
	engine, habits, logs := newTestEngine("2026-09-07")

	userID := uuid.New()
	habit := &entity.Habit{
		ID: uuid.New(), UserID: userID, Name: "Gym",
		GoalValue: 1, Streak: 2, LongestStreak: 2,
		FrequencyType:   entity.FrequencyWeekly,
		FrequencyOption: entity.OptionWeekDays,
		FrequencyDetail: &entity.FrequencyDetail{WeekDays: []string{"L", "M", "V"}},
	}
	habits.put(habit)
	logs.seed(habit.ID, "2026-08-31", 1, true)
	logs.seed(habit.ID, "2026-09-01", 1, true)
	logs.seed(habit.ID, "2026-09-04", 1, true)

	require.NoError(t, engine.RunDailyTick(context.Background(), userID))

	got := habits.get(habit.ID)
	assert.Equal(t, 3, got.Streak)
	assert.Equal(t, 3, got.LongestStreak)
	require.NotNil(t, got.LastPeriodKey)
	assert.Equal(t, "2026-W36", *got.LastPeriodKey)
}

func TestWeeklyTickResetsOnIncompleteWeek(t *testing.T) {
	engine, habits, logs := newTestEngine("2026-09-07")

	userID := uuid.New()
	habit := &entity.Habit{
		ID: uuid.New(), UserID: userID, Name: "Gym",
		GoalValue: 1, Streak: 2, LongestStreak: 4,
		FrequencyType:   entity.FrequencyWeekly,
		FrequencyOption: entity.OptionWeekDays,
		FrequencyDetail: &entity.FrequencyDetail{WeekDays: []string{"L", "M", "V"}},
	}
	habits.put(habit)
	// Only 2 of the 3 configured days were completed.
	logs.seed(habit.ID, "2026-08-31", 1, true)
	logs.seed(habit.ID, "2026-09-04", 1, true)

	require.NoError(t, engine.RunDailyTick(context.Background(), userID))

	got := habits.get(habit.ID)
	assert.Equal(t, 0, got.Streak)
	assert.Equal(t, 4, got.LongestStreak)
}

func TestWeeklyTickIsIdempotent(t *testing.T) {
	engine, habits, logs := newTestEngine("2026-09-07")

	userID := uuid.New()
	habit := &entity.Habit{
		ID: uuid.New(), UserID: userID, Name: "Gym",
		GoalValue: 1, Streak: 2, LongestStreak: 2,
		FrequencyType:   entity.FrequencyWeekly,
		FrequencyOption: entity.OptionWeekCount,
		FrequencyDetail: &entity.FrequencyDetail{Counter: 2},
	}
	habits.put(habit)
	logs.seed(habit.ID, "2026-09-02", 1, true)
	logs.seed(habit.ID, "2026-09-03", 1, true)

	require.NoError(t, engine.RunDailyTick(context.Background(), userID))
	require.NoError(t, engine.RunDailyTick(context.Background(), userID))
	require.NoError(t, engine.RunDailyTick(context.Background(), userID))

	got := habits.get(habit.ID)
	assert.Equal(t, 3, got.Streak, "repeated ticks on the same boundary must not double-increment")
}

func TestWeeklyTickOnlyRunsOnMonday(t *testing.T) {
	// Wednesday: no weekly settlement.
	engine, habits, _ := newTestEngine("2026-09-02")

	userID := uuid.New()
	habit := &entity.Habit{
		ID: uuid.New(), UserID: userID, Name: "Gym",
		GoalValue: 1, ProgressCount: 1, Streak: 2, LongestStreak: 2,
		FrequencyType:   entity.FrequencyWeekly,
		FrequencyOption: entity.OptionWeekCount,
		FrequencyDetail: &entity.FrequencyDetail{Counter: 2},
	}
	habits.put(habit)

	require.NoError(t, engine.RunDailyTick(context.Background(), userID))

	got := habits.get(habit.ID)
	assert.Equal(t, 2, got.Streak)
	assert.Nil(t, got.LastPeriodKey)
	assert.Equal(t, 0, got.ProgressCount, "the daily counter resets regardless of the boundary")
}

func TestMonthlyTickCountRequirement(t *testing.T) {
	// September 1st: the closed month is August.
	engine, habits, logs := newTestEngine("2026-09-01")

	userID := uuid.New()
	habit := &entity.Habit{
		ID: uuid.New(), UserID: userID, Name: "Swim",
		GoalValue: 1, Streak: 1, LongestStreak: 1,
		FrequencyType:   entity.FrequencyMonthly,
		FrequencyOption: entity.OptionMonthCount,
		FrequencyDetail: &entity.FrequencyDetail{Counter: 10},
	}
	habits.put(habit)
	// 9 of 10 required completions in August.
	for day := 1; day <= 9; day++ {
		logs.seed(habit.ID, time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), 1, true)
	}

	require.NoError(t, engine.RunDailyTick(context.Background(), userID))

	got := habits.get(habit.ID)
	assert.Equal(t, 0, got.Streak)
	require.NotNil(t, got.LastPeriodKey)
	assert.Equal(t, "2026-08", *got.LastPeriodKey)
}

func TestMonthlyTickIncrementsOnCompleteMonth(t *testing.T) {
	engine, habits, logs := newTestEngine("2026-09-01")

	userID := uuid.New()
	habit := &entity.Habit{
		ID: uuid.New(), UserID: userID, Name: "Swim",
		GoalValue: 1, Streak: 1, LongestStreak: 1,
		FrequencyType:   entity.FrequencyMonthly,
		FrequencyOption: entity.OptionMonthCount,
		FrequencyDetail: &entity.FrequencyDetail{Counter: 10},
	}
	habits.put(habit)
	for day := 1; day <= 10; day++ {
		logs.seed(habit.ID, time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), 1, true)
	}

	require.NoError(t, engine.RunDailyTick(context.Background(), userID))

	got := habits.get(habit.ID)
	assert.Equal(t, 2, got.Streak)
	assert.Equal(t, 2, got.LongestStreak)
}

func TestTickEnqueuesFrequencyCorrection(t *testing.T) {
	cal := newTestCalendar("2026-09-02")
	habits := newMemHabitRepo()
	logs := newMemLogRepo()
	eval := NewRecurrenceEvaluator(logs, cal)
	corrections := NewCorrectionWorker(habits, 8)
	engine := NewStreakEngine(habits, logs, eval, nil, corrections, cal)

	userID := uuid.New()
	habit := &entity.Habit{
		ID: uuid.New(), UserID: userID, Name: "Broken",
		GoalValue: 1, FrequencyType: entity.FrequencyWeekly, FrequencyOption: entity.OptionMonthDays,
		FrequencyDetail: &entity.FrequencyDetail{MonthDays: []int{5}},
	}
	habits.put(habit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go corrections.Run(ctx)

	require.NoError(t, engine.RunDailyTick(context.Background(), userID))

	assert.Eventually(t, func() bool {
		got := habits.get(habit.ID)
		return got.FrequencyType == entity.FrequencyDaily
	}, 2*time.Second, 10*time.Millisecond, "the downgraded pairing must be persisted in the background")
}

func TestWeeklyMilestoneGrantsXP(t *testing.T) {
	cal := newTestCalendar("2026-09-07")
	habits := newMemHabitRepo()
	logs := newMemLogRepo()
	profiles := newMemExperienceRepo()
	publisher := &recordingPublisher{}
	eval := NewRecurrenceEvaluator(logs, cal)
	experience := NewExperienceService(profiles, habits, logs, eval, newMemMarkers(), publisher, cal)
	engine := NewStreakEngine(habits, logs, eval, experience, nil, cal)

	userID := uuid.New()
	habit := &entity.Habit{
		ID: uuid.New(), UserID: userID, Name: "Gym",
		GoalValue: 1, Streak: 6, LongestStreak: 6,
		FrequencyType:   entity.FrequencyWeekly,
		FrequencyOption: entity.OptionWeekCount,
		FrequencyDetail: &entity.FrequencyDetail{Counter: 1},
	}
	habits.put(habit)
	logs.seed(habit.ID, "2026-09-03", 1, true)

	require.NoError(t, engine.RunDailyTick(context.Background(), userID))

	got := habits.get(habit.ID)
	assert.Equal(t, 7, got.Streak)

	profile, err := profiles.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 70, profile.ExperiencePoints)
	assert.Equal(t, []int{7}, publisher.milestones)
}
