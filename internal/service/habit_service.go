package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"habitflow/internal/domain/entity"
	"habitflow/internal/domain/repository"
	"habitflow/internal/domain/service"
	"habitflow/pkg/calendar"
)

type habitService struct {
	habits     repository.HabitRepository
	logs       repository.HabitLogRepository
	experience service.ExperienceService
	cal        *calendar.Calendar
	progressMu *keyedMutex
}

// NewHabitService creates a new habit service. experience may be nil when XP
// side effects are not wired (tests exercising progress logic alone).
func NewHabitService(
	habits repository.HabitRepository,
	logs repository.HabitLogRepository,
	experience service.ExperienceService,
	cal *calendar.Calendar,
) service.HabitService {
	return &habitService{
		habits:     habits,
		logs:       logs,
		experience: experience,
		cal:        cal,
		progressMu: newKeyedMutex(),
	}
}

func (s *habitService) CreateHabit(ctx context.Context, userID uuid.UUID, params service.CreateHabitParams) (*entity.Habit, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	goal := params.GoalValue
	if goal < 1 {
		goal = 1
	}

	frequencyType := params.FrequencyType
	if frequencyType == "" {
		frequencyType = entity.FrequencyDaily
	}
	frequencyOption := params.FrequencyOption
	if frequencyOption == "" {
		frequencyOption = entity.OptionAll
	}

	now := time.Now().UTC()
	habit := &entity.Habit{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            params.Name,
		Icon:            params.Icon,
		Unit:            params.Unit,
		GoalValue:       goal,
		ProgressCount:   0,
		FrequencyType:   frequencyType,
		FrequencyOption: frequencyOption,
		FrequencyDetail: params.FrequencyDetail,
		Streak:          0,
		LongestStreak:   0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// A malformed pairing is corrected up front rather than persisted.
	habit.ReconcileFrequency()

	if err := s.habits.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	if s.experience != nil {
		if _, err := s.experience.CheckFirstHabitCreated(ctx, userID); err != nil {
			log.Printf("[XP] first habit check failed for user %s: %v", userID, err)
		}
	}

	return habit, nil
}

func (s *habitService) GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	return s.habits.GetByIDAndUserID(ctx, habitID, userID)
}

func (s *habitService) ListHabits(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error) {
	return s.habits.GetByUserID(ctx, userID)
}

func (s *habitService) UpdateHabit(ctx context.Context, habitID, userID uuid.UUID, params service.UpdateHabitParams) (*entity.Habit, error) {
	habit, err := s.habits.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		habit.Name = *params.Name
	}
	if params.Icon != nil {
		habit.Icon = params.Icon
	}
	if params.Unit != nil {
		habit.Unit = params.Unit
	}
	if params.GoalValue != nil {
		if *params.GoalValue < 1 {
			return nil, fmt.Errorf("goal_value must be positive")
		}
		habit.GoalValue = *params.GoalValue
		if habit.ProgressCount > habit.GoalValue {
			habit.ProgressCount = habit.GoalValue
		}
	}
	if params.FrequencyType != nil {
		habit.FrequencyType = *params.FrequencyType
	}
	if params.FrequencyOption != nil {
		habit.FrequencyOption = *params.FrequencyOption
	}
	if params.FrequencyDetail != nil {
		habit.FrequencyDetail = params.FrequencyDetail
	}

	habit.ReconcileFrequency()
	habit.UpdatedAt = time.Now().UTC()

	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	return habit, nil
}

func (s *habitService) DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error {
	// Verify ownership
	if _, err := s.habits.GetByIDAndUserID(ctx, habitID, userID); err != nil {
		return err
	}
	return s.habits.Delete(ctx, habitID)
}

// LogProgress records a progress delta for today. The read-modify-write of
// the day's log entry is a critical section per (habit, date); concurrent
// calls serialize on the keyed mutex so no increment is lost.
func (s *habitService) LogProgress(ctx context.Context, habitID, userID uuid.UUID, delta int) (*entity.Habit, error) {
	today := s.cal.DateKey(s.cal.Today())

	unlock := s.progressMu.Lock(habitID.String() + ":" + today)
	defer unlock()

	habit, err := s.habits.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	goal := habit.Goal()
	newCount := habit.ProgressCount + delta
	if newCount < 0 {
		newCount = 0
	}
	if newCount > goal {
		newCount = goal
	}
	isComplete := newCount >= goal

	existing, err := s.logs.GetByHabitAndDate(ctx, habitID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to look up today's log: %w", err)
	}

	wasComplete := existing != nil && existing.Completed

	if existing != nil {
		if err := s.logs.Update(ctx, existing.ID, existing.Value+delta, isComplete); err != nil {
			return nil, fmt.Errorf("failed to update habit log: %w", err)
		}
	} else {
		entry := &entity.HabitLog{
			ID:        uuid.New(),
			HabitID:   habitID,
			Date:      today,
			Value:     delta,
			Completed: isComplete,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if err := s.logs.Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to create habit log: %w", err)
		}
	}

	habit.ProgressCount = newCount

	// Daily cadence moves its streak at the moment of completion; weekly and
	// monthly cadences only move at the period-end tick.
	if habit.IsDaily() {
		if isComplete && !wasComplete {
			habit.Streak++
			if habit.Streak > habit.LongestStreak {
				habit.LongestStreak = habit.Streak
			}
		} else if !isComplete && wasComplete {
			habit.Streak--
			if habit.Streak < 0 {
				habit.Streak = 0
			}
		}
	}

	if err := s.habits.UpdateProgress(ctx, habitID, habit.ProgressCount, habit.Streak, habit.LongestStreak, habit.LastPeriodKey); err != nil {
		return nil, fmt.Errorf("failed to persist habit progress: %w", err)
	}

	if s.experience != nil && isComplete && !wasComplete {
		if _, err := s.experience.CheckStreakMilestone(ctx, userID, habitID, habit.Streak); err != nil {
			log.Printf("[XP] milestone check failed for habit %s: %v", habitID, err)
		}
		if _, err := s.experience.CheckDailyGoal(ctx, userID); err != nil {
			log.Printf("[XP] daily goal check failed for user %s: %v", userID, err)
		}
		if _, err := s.experience.CheckWeeklyGoal(ctx, userID); err != nil {
			log.Printf("[XP] weekly goal check failed for user %s: %v", userID, err)
		}
	}

	return habit, nil
}

func (s *habitService) GetHabitHistory(ctx context.Context, habitID, userID uuid.UUID, start, end string) ([]*entity.HabitLog, error) {
	// Verify ownership
	if _, err := s.habits.GetByIDAndUserID(ctx, habitID, userID); err != nil {
		return nil, err
	}
	return s.logs.QueryRange(ctx, habitID, start, end, false)
}
