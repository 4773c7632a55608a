package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"habitflow/internal/domain/entity"
	"habitflow/internal/domain/repository"
	"habitflow/pkg/calendar"
)

// newTestCalendar returns a calendar frozen at noon of the given date in the
// reference timezone.
func newTestCalendar(date string) *calendar.Calendar {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		panic(err)
	}
	day, err := time.ParseInLocation(calendar.DateKeyLayout, date, loc)
	if err != nil {
		panic(err)
	}
	fixed := day.Add(12 * time.Hour)
	cal, err := calendar.NewWithClock("America/Argentina/Buenos_Aires", func() time.Time { return fixed })
	if err != nil {
		panic(err)
	}
	return cal
}

// memHabitRepo is an in-memory habit repository.
type memHabitRepo struct {
	mu     sync.Mutex
	habits map[uuid.UUID]*entity.Habit
}

func newMemHabitRepo() *memHabitRepo {
	return &memHabitRepo{habits: make(map[uuid.UUID]*entity.Habit)}
}

func (r *memHabitRepo) put(h *entity.Habit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *h
	r.habits[h.ID] = &cp
}

func (r *memHabitRepo) get(id uuid.UUID) *entity.Habit {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.habits[id]; ok {
		cp := *h
		return &cp
	}
	return nil
}

func (r *memHabitRepo) Create(ctx context.Context, habit *entity.Habit) error {
	r.put(habit)
	return nil
}

func (r *memHabitRepo) GetByID(ctx context.Context, habitID uuid.UUID) (*entity.Habit, error) {
	if h := r.get(habitID); h != nil {
		return h, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memHabitRepo) GetByIDAndUserID(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	h := r.get(habitID)
	if h == nil || h.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return h, nil
}

func (r *memHabitRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Habit
	for _, h := range r.habits {
		if h.UserID == userID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memHabitRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	habits, _ := r.GetByUserID(ctx, userID)
	return len(habits), nil
}

func (r *memHabitRepo) Update(ctx context.Context, habit *entity.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.habits[habit.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *habit
	r.habits[habit.ID] = &cp
	return nil
}

func (r *memHabitRepo) UpdateProgress(ctx context.Context, habitID uuid.UUID, progressCount, streak, longestStreak int, lastPeriodKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.habits[habitID]
	if !ok {
		return repository.ErrNotFound
	}
	h.ProgressCount = progressCount
	h.Streak = streak
	h.LongestStreak = longestStreak
	h.LastPeriodKey = lastPeriodKey
	return nil
}

func (r *memHabitRepo) UpdateFrequency(ctx context.Context, habitID uuid.UUID, frequencyType entity.FrequencyType, frequencyOption entity.FrequencyOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.habits[habitID]
	if !ok {
		return repository.ErrNotFound
	}
	h.FrequencyType = frequencyType
	h.FrequencyOption = frequencyOption
	return nil
}

func (r *memHabitRepo) Delete(ctx context.Context, habitID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.habits[habitID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.habits, habitID)
	return nil
}

func (r *memHabitRepo) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, h := range r.habits {
		if !seen[h.UserID] {
			seen[h.UserID] = true
			out = append(out, h.UserID)
		}
	}
	return out, nil
}

// memLogRepo is an in-memory habit log repository keyed by (habit, date).
type memLogRepo struct {
	mu   sync.Mutex
	logs map[uuid.UUID]*entity.HabitLog
	// owner lets LatestDateKeyForUser join logs back to users
	owner map[uuid.UUID]uuid.UUID // habitID -> userID
}

func newMemLogRepo() *memLogRepo {
	return &memLogRepo{
		logs:  make(map[uuid.UUID]*entity.HabitLog),
		owner: make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *memLogRepo) setOwner(habitID, userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owner[habitID] = userID
}

// seed inserts a completed or incomplete log for a habit and date.
func (r *memLogRepo) seed(habitID uuid.UUID, date string, value int, completed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := &entity.HabitLog{
		ID:        uuid.New(),
		HabitID:   habitID,
		Date:      date,
		Value:     value,
		Completed: completed,
	}
	r.logs[l.ID] = l
}

func (r *memLogRepo) Create(ctx context.Context, habitLog *entity.HabitLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *habitLog
	r.logs[habitLog.ID] = &cp
	return nil
}

func (r *memLogRepo) GetByHabitAndDate(ctx context.Context, habitID uuid.UUID, date string) (*entity.HabitLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.logs {
		if l.HabitID == habitID && l.Date == date {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memLogRepo) Update(ctx context.Context, logID uuid.UUID, value int, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[logID]
	if !ok {
		return repository.ErrNotFound
	}
	l.Value = value
	l.Completed = completed
	return nil
}

func (r *memLogRepo) QueryRange(ctx context.Context, habitID uuid.UUID, fromDate, toDate string, completedOnly bool) ([]*entity.HabitLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.HabitLog
	for _, l := range r.logs {
		if l.HabitID != habitID || l.Date < fromDate || l.Date > toDate {
			continue
		}
		if completedOnly && !l.Completed {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memLogRepo) CountCompletedInRange(ctx context.Context, habitID uuid.UUID, fromDate, toDate string) (int, error) {
	logs, _ := r.QueryRange(ctx, habitID, fromDate, toDate, true)
	return len(logs), nil
}

func (r *memLogRepo) LatestDateKeyForUser(ctx context.Context, userID uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := ""
	for _, l := range r.logs {
		if r.owner[l.HabitID] == userID && l.Date > latest {
			latest = l.Date
		}
	}
	return latest, nil
}

// memExperienceRepo is an in-memory XP store with a fixed action table.
type memExperienceRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*entity.UserExperience
	levels   []*entity.Level
	actions  map[string]int
}

func newMemExperienceRepo() *memExperienceRepo {
	return &memExperienceRepo{
		profiles: make(map[uuid.UUID]*entity.UserExperience),
		levels: []*entity.Level{
			{Number: 1, Name: "Beginner", XPRequired: 0},
			{Number: 2, Name: "Apprentice", XPRequired: 100},
			{Number: 3, Name: "Adept", XPRequired: 250},
		},
		actions: map[string]int{
			"first_habit_created": 25,
			"all_habits_daily":    50,
			"weekly_goal_met":     75,
			"comeback":            40,
			"streak_7":            70,
			"streak_14":           140,
			"streak_30":           300,
		},
	}
}

func (r *memExperienceRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.UserExperience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return &entity.UserExperience{UserID: userID, ExperiencePoints: 0, CurrentLevel: 1}, nil
}

func (r *memExperienceRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, experiencePoints, currentLevel int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[userID] = &entity.UserExperience{
		UserID:           userID,
		ExperiencePoints: experiencePoints,
		CurrentLevel:     currentLevel,
	}
	return nil
}

func (r *memExperienceRepo) GetLevels(ctx context.Context) ([]*entity.Level, error) {
	return r.levels, nil
}

func (r *memExperienceRepo) GetXPActionValue(ctx context.Context, actionKey string) (int, error) {
	return r.actions[actionKey], nil
}

// memMarkers is an in-memory marker storage.
type memMarkers struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemMarkers() *memMarkers {
	return &memMarkers{data: make(map[string]string)}
}

func (m *memMarkers) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memMarkers) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// recordingPublisher records published events for assertions.
type recordingPublisher struct {
	mu         sync.Mutex
	grants     []*entity.XPGrant
	milestones []int
}

func (p *recordingPublisher) PublishXPGranted(ctx context.Context, grant *entity.XPGrant) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grants = append(p.grants, grant)
	return nil
}

func (p *recordingPublisher) PublishStreakMilestone(ctx context.Context, userID, habitID uuid.UUID, streak int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.milestones = append(p.milestones, streak)
	return nil
}
