package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeekdayNumbers(t *testing.T) {
	detail := &FrequencyDetail{WeekDays: []string{"L", "V"}}
	assert.Equal(t, []int{1, 5}, detail.WeekdayNumbers())

	// Unknown letters are dropped, not errors.
	detail = &FrequencyDetail{WeekDays: []string{"L", "Q", "D"}}
	assert.Equal(t, []int{1, 0}, detail.WeekdayNumbers())

	var nilDetail *FrequencyDetail
	assert.Nil(t, nilDetail.WeekdayNumbers())
}

func TestGoalDefaultsToOne(t *testing.T) {
	habit := &Habit{GoalValue: 0}
	assert.Equal(t, 1, habit.Goal())

	habit.GoalValue = 5
	assert.Equal(t, 5, habit.Goal())
}

func TestHasValidOption(t *testing.T) {
	tests := []struct {
		name   string
		ftype  FrequencyType
		option FrequencyOption
		valid  bool
	}{
		{"daily accepts all", FrequencyDaily, OptionAll, true},
		{"daily accepts week count", FrequencyDaily, OptionWeekCount, true},
		{"weekly accepts week days", FrequencyWeekly, OptionWeekDays, true},
		{"weekly rejects month days", FrequencyWeekly, OptionMonthDays, false},
		{"monthly accepts month count", FrequencyMonthly, OptionMonthCount, true},
		{"monthly rejects week days", FrequencyMonthly, OptionWeekDays, false},
		{"flexible rejects counters", FrequencyFlexible, OptionWeekCount, false},
		{"unknown type reports valid", "lunar", OptionWeekDays, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			habit := &Habit{FrequencyType: tt.ftype, FrequencyOption: tt.option}
			assert.Equal(t, tt.valid, habit.HasValidOption())
		})
	}
}

func TestReconcileFrequencyDowngradesToDaily(t *testing.T) {
	habit := &Habit{FrequencyType: FrequencyWeekly, FrequencyOption: OptionMonthDays}

	assert.True(t, habit.ReconcileFrequency())
	assert.Equal(t, FrequencyDaily, habit.FrequencyType)
	assert.Equal(t, OptionMonthDays, habit.FrequencyOption)

	// Already valid: untouched.
	assert.False(t, habit.ReconcileFrequency())
}

func TestReconcileFrequencyLeavesUnknownTypesAlone(t *testing.T) {
	habit := &Habit{FrequencyType: "lunar", FrequencyOption: OptionAll}

	assert.False(t, habit.ReconcileFrequency())
	assert.Equal(t, FrequencyType("lunar"), habit.FrequencyType)
}
