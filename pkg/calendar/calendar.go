package calendar

import (
	"fmt"
	"time"
)

// DateKeyLayout is the storage format for calendar dates.
const DateKeyLayout = "2006-01-02"

// Calendar provides date arithmetic anchored to a single reference timezone.
// All "today" and day-boundary computations in the engine go through it, so
// every caller agrees on when a day starts. The clock is injectable for tests.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// New creates a calendar for the given IANA timezone name.
func New(timezone string) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Calendar{loc: loc, now: time.Now}, nil
}

// NewWithClock creates a calendar with a fixed clock function.
func NewWithClock(timezone string, now func() time.Time) (*Calendar, error) {
	cal, err := New(timezone)
	if err != nil {
		return nil, err
	}
	cal.now = now
	return cal, nil
}

// Location returns the reference timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Today returns the current date at midnight in the reference timezone.
func (c *Calendar) Today() time.Time {
	return c.Truncate(c.now().In(c.loc))
}

// Yesterday returns the calendar day before today. AddDate performs calendar
// subtraction, which stays correct across DST transitions where a fixed -24h
// would not.
func (c *Calendar) Yesterday() time.Time {
	return c.Today().AddDate(0, 0, -1)
}

// Truncate normalizes an instant to midnight of its calendar day in the
// reference timezone.
func (c *Calendar) Truncate(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// WeekStart returns the Monday of the ISO week containing date.
func (c *Calendar) WeekStart(date time.Time) time.Time {
	d := c.Truncate(date)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return d.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday of the ISO week containing date.
func (c *Calendar) WeekEnd(date time.Time) time.Time {
	return c.WeekStart(date).AddDate(0, 0, 6)
}

// MonthStart returns the first day of the month containing date.
func (c *Calendar) MonthStart(date time.Time) time.Time {
	d := c.Truncate(date)
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, c.loc)
}

// MonthEnd returns the last day of the month containing date. Day zero of the
// following month normalizes to it, which handles variable month lengths and
// leap years.
func (c *Calendar) MonthEnd(date time.Time) time.Time {
	d := c.Truncate(date)
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, c.loc)
}

// DayOfWeek returns the weekday of date with Sunday=0, matching the letter-day
// encoding D=0, L=1, M=2, X=3, J=4, V=5, S=6.
func (c *Calendar) DayOfWeek(date time.Time) int {
	return int(c.Truncate(date).Weekday())
}

// DayOfMonth returns the day number (1-31) of date.
func (c *Calendar) DayOfMonth(date time.Time) int {
	return c.Truncate(date).Day()
}

// DateKey returns the YYYY-MM-DD storage key for date.
func (c *Calendar) DateKey(date time.Time) string {
	return c.Truncate(date).Format(DateKeyLayout)
}

// WeekKey returns a key identifying the ISO week containing date, e.g.
// "2026-W36". The ISO year can differ from the calendar year near January 1.
func (c *Calendar) WeekKey(date time.Time) string {
	year, week := c.Truncate(date).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MonthKey returns a key identifying the month containing date, e.g. "2026-09".
func (c *Calendar) MonthKey(date time.Time) string {
	return c.Truncate(date).Format("2006-01")
}
