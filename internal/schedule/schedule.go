// Package schedule builds the day-by-day study plan. Everything here is a
// pure function of its arguments; "today" comes from the injected clock.
package schedule

import (
	"math"
	"strconv"
	"strings"
	"time"

	"studyplan/internal/clock"
	"studyplan/internal/model"
)

// Builder produces schedules for a fixed topic list.
type Builder struct {
	Topics []string
	Clock  clock.Clock
}

// NewBuilder returns a Builder over topics. A nil clk uses the local
// machine clock.
func NewBuilder(topics []string, clk clock.Clock) *Builder {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Builder{Topics: topics, Clock: clk}
}

// Build returns one entry per topic starting at startDate ("YYYY-MM-DD").
// An empty or unparsable startDate falls back to today at midnight.
// hour and minute are not range-checked; they roll over like time.Date.
func (b *Builder) Build(startDate string, hour, minute int) model.Schedule {
	day0 := ParseStartDate(startDate, b.Clock.Now())
	return Build(day0, hour, minute, b.Topics)
}

// Build computes the schedule for day0 (truncated to midnight in its own
// location). It is the single place day-offset arithmetic happens.
func Build(day0 time.Time, hour, minute int, topics []string) model.Schedule {
	y, m, d := day0.Date()
	loc := day0.Location()

	out := make(model.Schedule, len(topics))
	for i, topic := range topics {
		out[i] = model.Entry{
			Index:   i,
			Topic:   topic,
			Date:    time.Date(y, m, d+i, 0, 0, 0, 0, loc),
			StartAt: time.Date(y, m, d+i, hour, minute, 0, 0, loc),
		}
	}
	return out
}

// ParseStartDate parses "YYYY-MM-DD" in now's location. Fields must be
// integers; out-of-range month/day values roll over (2024-02-30 becomes
// 2024-03-01). Anything else yields midnight of now's day.
func ParseStartDate(s string, now time.Time) time.Time {
	today := clock.Midnight(now)

	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return today
	}
	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return today
		}
		fields[i] = n
	}
	return time.Date(fields[0], time.Month(fields[1]), fields[2], 0, 0, 0, 0, now.Location())
}

// CurrentIndex is the entry "in progress" at now: the one before the first
// entry that has not started yet. Before the plan starts it is 0; after the
// last reminder it stays on the last day.
func CurrentIndex(s model.Schedule, now time.Time) int {
	if len(s) == 0 {
		return 0
	}
	for i, e := range s {
		if now.Before(e.StartAt) {
			return max(0, i-1)
		}
	}
	return len(s) - 1
}

// ProgressPercent rounds the share of completed days to a whole percent.
// Duplicates and indices outside [0,n) are ignored.
func ProgressPercent(completed []int, n int) int {
	if n <= 0 {
		return 0
	}
	seen := make(map[int]struct{}, len(completed))
	for _, i := range completed {
		if i >= 0 && i < n {
			seen[i] = struct{}{}
		}
	}
	return int(math.Round(float64(len(seen)) / float64(n) * 100))
}
