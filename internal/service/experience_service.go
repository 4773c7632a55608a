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

// Action keys the engine grants XP for.
const (
	ActionFirstHabitCreated = "first_habit_created"
	ActionAllHabitsDaily    = "all_habits_daily"
	ActionWeeklyGoalMet     = "weekly_goal_met"
	ActionComeback          = "comeback"
)

// streakMilestones maps streak lengths to their XP action keys.
var streakMilestones = map[int]string{
	7:  "streak_7",
	14: "streak_14",
	30: "streak_30",
}

// comebackThresholdDays is the inactivity span that counts as a comeback.
const comebackThresholdDays = 3

type experienceService struct {
	profiles repository.ExperienceRepository
	habits   repository.HabitRepository
	logs     repository.HabitLogRepository
	eval     *RecurrenceEvaluator
	markers  repository.MarkerStorage
	events   service.EventPublisher
	cal      *calendar.Calendar
}

// NewExperienceService creates a new experience service. events may be nil;
// grants are then not published.
func NewExperienceService(
	profiles repository.ExperienceRepository,
	habits repository.HabitRepository,
	logs repository.HabitLogRepository,
	eval *RecurrenceEvaluator,
	markers repository.MarkerStorage,
	events service.EventPublisher,
	cal *calendar.Calendar,
) service.ExperienceService {
	return &experienceService{
		profiles: profiles,
		habits:   habits,
		logs:     logs,
		eval:     eval,
		markers:  markers,
		events:   events,
		cal:      cal,
	}
}

// Grant awards the XP configured for actionKey. Unknown or inactive actions
// grant nothing and are not errors: the action table is data, not code.
func (s *experienceService) Grant(ctx context.Context, userID uuid.UUID, actionKey string) (*entity.XPGrant, error) {
	xpValue, err := s.profiles.GetXPActionValue(ctx, actionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to look up xp action %q: %w", actionKey, err)
	}
	if xpValue <= 0 {
		return nil, nil
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load xp profile: %w", err)
	}

	levels, err := s.profiles.GetLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load level table: %w", err)
	}

	totalXP := profile.ExperiencePoints + xpValue
	newLevel := levelForXP(levels, totalXP)

	if err := s.profiles.UpdateProfile(ctx, userID, totalXP, newLevel); err != nil {
		return nil, fmt.Errorf("failed to persist xp grant: %w", err)
	}

	grant := &entity.XPGrant{
		UserID:        userID,
		ActionKey:     actionKey,
		XPGranted:     xpValue,
		TotalXP:       totalXP,
		PreviousLevel: profile.CurrentLevel,
		CurrentLevel:  newLevel,
		LeveledUp:     newLevel > profile.CurrentLevel,
		GrantedAt:     time.Now().UTC(),
	}

	log.Printf("[XP] +%d for %q | user %s | total %d | level %d", xpValue, actionKey, userID, totalXP, newLevel)

	if s.events != nil {
		if err := s.events.PublishXPGranted(ctx, grant); err != nil {
			log.Printf("[XP] failed to publish grant event: %v", err)
		}
	}

	return grant, nil
}

// levelForXP returns the highest level whose requirement is met, or 1.
func levelForXP(levels []*entity.Level, xp int) int {
	level := 1
	for _, l := range levels {
		if xp >= l.XPRequired && l.Number > level {
			level = l.Number
		}
	}
	return level
}

func (s *experienceService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.UserExperience, error) {
	return s.profiles.GetProfile(ctx, userID)
}

func (s *experienceService) GetLevelInfo(ctx context.Context, userID uuid.UUID) (*entity.LevelInfo, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	levels, err := s.profiles.GetLevels(ctx)
	if err != nil {
		return nil, err
	}

	current := levelForXP(levels, profile.ExperiencePoints)

	var currentLevel, nextLevel *entity.Level
	for _, l := range levels {
		if l.Number == current {
			currentLevel = l
		}
		if l.Number == current+1 {
			nextLevel = l
		}
	}

	info := &entity.LevelInfo{
		CurrentLevel: current,
		NextLevel:    current,
		IsMaxLevel:   nextLevel == nil,
	}
	if currentLevel != nil {
		info.CurrentLevelXP = currentLevel.XPRequired
	}
	info.NextLevelXP = info.CurrentLevelXP
	if nextLevel != nil {
		info.NextLevel = nextLevel.Number
		info.NextLevelXP = nextLevel.XPRequired
	}

	info.XPInCurrentLevel = profile.ExperiencePoints - info.CurrentLevelXP
	info.XPNeededForNext = info.NextLevelXP - info.CurrentLevelXP
	if info.XPNeededForNext > 0 {
		info.ProgressPercentage = info.XPInCurrentLevel * 100 / info.XPNeededForNext
	} else {
		info.ProgressPercentage = 100
	}

	return info, nil
}

func (s *experienceService) CheckStreakMilestone(ctx context.Context, userID, habitID uuid.UUID, streak int) (*entity.XPGrant, error) {
	actionKey, ok := streakMilestones[streak]
	if !ok {
		return nil, nil
	}

	grant, err := s.Grant(ctx, userID, actionKey)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishStreakMilestone(ctx, userID, habitID, streak); err != nil {
			log.Printf("[XP] failed to publish milestone event: %v", err)
		}
	}

	return grant, nil
}

// CheckDailyGoal grants once per day when every habit due today is complete.
func (s *experienceService) CheckDailyGoal(ctx context.Context, userID uuid.UUID) (*entity.XPGrant, error) {
	today := s.cal.Today()
	todayKey := s.cal.DateKey(today)

	latchKey := fmt.Sprintf("xp:all_daily:%s", userID)
	if done, err := s.latched(ctx, latchKey, todayKey); err != nil || done {
		return nil, err
	}

	habits, err := s.habits.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	dueCount := 0
	for _, habit := range habits {
		due, err := s.eval.IsDueOn(ctx, habit, today)
		if err != nil {
			return nil, err
		}
		if !due {
			continue
		}
		dueCount++
		if habit.ProgressCount < habit.Goal() {
			return nil, nil
		}
	}
	if dueCount == 0 {
		return nil, nil
	}

	if err := s.markers.Set(ctx, latchKey, todayKey); err != nil {
		return nil, fmt.Errorf("failed to latch daily goal: %w", err)
	}

	return s.Grant(ctx, userID, ActionAllHabitsDaily)
}

func (s *experienceService) CheckFirstHabitCreated(ctx context.Context, userID uuid.UUID) (*entity.XPGrant, error) {
	count, err := s.habits.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count habits: %w", err)
	}
	if count != 1 {
		return nil, nil
	}
	return s.Grant(ctx, userID, ActionFirstHabitCreated)
}

// CheckComeback grants once per day when the user's most recent log is three
// or more days old.
func (s *experienceService) CheckComeback(ctx context.Context, userID uuid.UUID) (*entity.XPGrant, error) {
	today := s.cal.Today()
	todayKey := s.cal.DateKey(today)

	latchKey := fmt.Sprintf("xp:comeback:%s", userID)
	if done, err := s.latched(ctx, latchKey, todayKey); err != nil || done {
		return nil, err
	}
	if err := s.markers.Set(ctx, latchKey, todayKey); err != nil {
		return nil, fmt.Errorf("failed to latch comeback check: %w", err)
	}

	latest, err := s.logs.LatestDateKeyForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest log: %w", err)
	}
	if latest == "" {
		return nil, nil
	}

	lastDate, err := time.ParseInLocation(calendar.DateKeyLayout, latest, s.cal.Location())
	if err != nil {
		return nil, fmt.Errorf("malformed log date %q: %w", latest, err)
	}

	inactiveDays := int(today.Sub(lastDate).Hours() / 24)
	if inactiveDays < comebackThresholdDays {
		return nil, nil
	}

	log.Printf("[XP] comeback detected for user %s: %d days inactive", userID, inactiveDays)
	return s.Grant(ctx, userID, ActionComeback)
}

// CheckWeeklyGoal grants once per ISO week when every week-cadence habit has
// met its weekly requirement.
func (s *experienceService) CheckWeeklyGoal(ctx context.Context, userID uuid.UUID) (*entity.XPGrant, error) {
	weekKey := s.cal.WeekKey(s.cal.Today())

	latchKey := fmt.Sprintf("xp:weekly_goal:%s", userID)
	if done, err := s.latched(ctx, latchKey, weekKey); err != nil || done {
		return nil, err
	}

	habits, err := s.habits.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	weekly := 0
	for _, habit := range habits {
		var required int
		switch habit.FrequencyOption {
		case entity.OptionWeekDays:
			if habit.FrequencyDetail != nil {
				required = len(habit.FrequencyDetail.WeekDays)
			}
		case entity.OptionWeekCount:
			required = habit.Counter()
		default:
			continue
		}
		if required == 0 {
			continue
		}
		weekly++

		completed, err := s.eval.WeekCompletedDays(ctx, habit)
		if err != nil {
			return nil, err
		}
		if completed < required {
			return nil, nil
		}
	}
	if weekly == 0 {
		return nil, nil
	}

	if err := s.markers.Set(ctx, latchKey, weekKey); err != nil {
		return nil, fmt.Errorf("failed to latch weekly goal: %w", err)
	}

	return s.Grant(ctx, userID, ActionWeeklyGoalMet)
}

// latched reports whether the marker under key already holds value.
func (s *experienceService) latched(ctx context.Context, key, value string) (bool, error) {
	stored, err := s.markers.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read xp latch: %w", err)
	}
	return stored == value, nil
}
