package entity

import (
	"time"

	"github.com/google/uuid"
)

// FrequencyType represents the cadence of a habit.
type FrequencyType string

const (
	FrequencyDaily    FrequencyType = "daily"
	FrequencyWeekly   FrequencyType = "weekly"
	FrequencyMonthly  FrequencyType = "monthly"
	FrequencyFlexible FrequencyType = "flexible"
)

// FrequencyOption refines the cadence within a frequency type.
type FrequencyOption string

const (
	OptionAll        FrequencyOption = "all"
	OptionWeekDays   FrequencyOption = "specific_days_week"
	OptionMonthDays  FrequencyOption = "specific_days_month"
	OptionWeekCount  FrequencyOption = "count_per_week"
	OptionMonthCount FrequencyOption = "count_per_month"
)

// FrequencyDetail is the variant payload of a frequency option. Exactly one
// field is meaningful for a given option; the rest stay empty. Stored as JSONB.
type FrequencyDetail struct {
	WeekDays  []string `json:"week_days,omitempty"`  // letter tokens: D L M X J V S
	MonthDays []int    `json:"month_days,omitempty"` // day numbers 1-31
	Counter   int      `json:"counter,omitempty"`    // required completions per period
}

// letterDays maps the letter-day tokens to weekday numbers, Sunday=0.
var letterDays = map[string]int{
	"D": 0, "L": 1, "M": 2, "X": 3, "J": 4, "V": 5, "S": 6,
}

// WeekdayNumbers converts the configured letter tokens to weekday numbers.
// Unrecognized letters are dropped, not errors.
func (d *FrequencyDetail) WeekdayNumbers() []int {
	if d == nil {
		return nil
	}
	days := make([]int, 0, len(d.WeekDays))
	for _, letter := range d.WeekDays {
		if n, ok := letterDays[letter]; ok {
			days = append(days, n)
		}
	}
	return days
}

// Habit represents a user's habit with its recurrence configuration and
// streak state.
type Habit struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// Basic info
	Name string
	Icon *string
	Unit *string

	// Daily goal
	GoalValue     int // target occurrences per day, >= 1
	ProgressCount int // accumulated today, always within [0, GoalValue]

	// Recurrence configuration
	FrequencyType   FrequencyType
	FrequencyOption FrequencyOption
	FrequencyDetail *FrequencyDetail

	// Streak state
	Streak        int
	LongestStreak int

	// Period key of the last closed week/month already applied to the streak.
	// Guards the period-boundary evaluation against re-running.
	LastPeriodKey *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDaily returns true if the habit uses daily cadence.
func (h *Habit) IsDaily() bool {
	return h.FrequencyType == FrequencyDaily
}

// IsWeekly returns true if the habit uses weekly cadence.
func (h *Habit) IsWeekly() bool {
	return h.FrequencyType == FrequencyWeekly
}

// IsMonthly returns true if the habit uses monthly cadence.
func (h *Habit) IsMonthly() bool {
	return h.FrequencyType == FrequencyMonthly
}

// Goal returns the goal value, defaulting to 1 for unset records.
func (h *Habit) Goal() int {
	if h.GoalValue < 1 {
		return 1
	}
	return h.GoalValue
}

// Counter returns the configured per-period completion requirement.
func (h *Habit) Counter() int {
	if h.FrequencyDetail == nil {
		return 0
	}
	return h.FrequencyDetail.Counter
}

// validOptions lists the frequency options accepted per frequency type. Daily
// accepts every option kind: variants without a fixed weekly/monthly cadence
// collapse to daily bookkeeping.
var validOptions = map[FrequencyType][]FrequencyOption{
	FrequencyDaily:    {OptionAll, OptionWeekDays, OptionMonthDays, OptionWeekCount, OptionMonthCount},
	FrequencyWeekly:   {OptionAll, OptionWeekDays, OptionWeekCount},
	FrequencyMonthly:  {OptionAll, OptionMonthDays, OptionMonthCount},
	FrequencyFlexible: {OptionAll},
}

// HasValidOption reports whether the habit's option is a member of the valid
// set for its frequency type. Unknown types report true: the evaluator treats
// them as fail-open and reconciliation leaves them alone.
func (h *Habit) HasValidOption() bool {
	options, ok := validOptions[h.FrequencyType]
	if !ok {
		return true
	}
	for _, option := range options {
		if option == h.FrequencyOption {
			return true
		}
	}
	return false
}

// ReconcileFrequency corrects an invalid type/option pairing by downgrading
// the type to daily, which accepts every option kind. Returns true when a
// correction was applied. Never an error: malformed configuration must not
// hide a habit.
func (h *Habit) ReconcileFrequency() bool {
	if h.HasValidOption() {
		return false
	}
	h.FrequencyType = FrequencyDaily
	return true
}
