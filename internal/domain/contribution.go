// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// DateLayout is the calendar-day key format used throughout the pipeline.
const DateLayout = "2006-01-02"

// ContributionDay holds the aggregated activity for a single calendar day.
// It is the core domain entity of this application.
type ContributionDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// Snapshot is the document written to the metadata store after a
// successful run.
type Snapshot struct {
	Contributions []ContributionDay `json:"github_contributions"`
	LastUpdated   int64             `json:"last_updated"`
}

// RateLimit is the remaining upstream request quota at the start of a run.
type RateLimit struct {
	Remaining int
	ResetAt   time.Time
}

// Window is the trailing 365-day period a run aggregates over, inclusive
// of both endpoints. It is captured once at run start and passed by value
// so every component agrees on the boundaries.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds the window ending on the calendar day of now (UTC).
func NewWindow(now time.Time) Window {
	end := now.UTC().Truncate(24 * time.Hour)
	return Window{Start: end.AddDate(0, 0, -365), End: end}
}

// Contains reports whether the calendar day of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	day := t.UTC().Truncate(24 * time.Hour)
	return !day.Before(w.Start) && !day.After(w.End)
}

// Calendar is an ordered day -> count mapping covering every day of a
// window. It is created fresh per run and mutated only through Record
// and Increment.
type Calendar struct {
	window Window
	counts map[string]int
}

// NewCalendar initializes every day of the window to a zero count.
func NewCalendar(w Window) *Calendar {
	counts := make(map[string]int, 366)
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		counts[d.Format(DateLayout)] = 0
	}
	return &Calendar{window: w, counts: counts}
}

// Increment adds one contribution to the given day. Days outside the
// window are ignored.
func (c *Calendar) Increment(day string) {
	if _, ok := c.counts[day]; ok {
		c.counts[day]++
	}
}

// Record normalizes an event and, when it qualifies, counts it against
// its calendar day.
func (c *Calendar) Record(ev Event) {
	if day, ok := Normalize(ev, c.window); ok {
		c.Increment(day)
	}
}

// Max returns the highest single-day count across the window.
func (c *Calendar) Max() int {
	values := make([]float64, 0, len(c.counts))
	for _, n := range c.counts {
		values = append(values, float64(n))
	}
	max, err := stats.Max(values)
	if err != nil {
		return 0
	}
	return int(max)
}

// Days returns one classified entry per calendar day, sorted ascending
// by date.
func (c *Calendar) Days() []ContributionDay {
	max := c.Max()
	days := make([]ContributionDay, 0, len(c.counts))
	for date, count := range c.counts {
		days = append(days, ContributionDay{
			Date:  date,
			Count: count,
			Level: Level(count, max),
		})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}
