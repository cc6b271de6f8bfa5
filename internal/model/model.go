package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Entry is one day of the plan.
type Entry struct {
	// Index is the 0-based day offset from the start date.
	Index int
	Topic string

	// Date is the entry's calendar day at local midnight.
	Date time.Time
	// StartAt is Date combined with the configured reminder hour/minute.
	StartAt time.Time
}

// Schedule is the ordered list of entries, one per topic.
type Schedule []Entry

// Event is a VEVENT decoded from a calendar document.
type Event struct {
	UID string

	Summary     string
	Description string

	Start time.Time
	End   time.Time

	HasAlarm bool
}

// Stable storage keys for State. They match the keys the browser page used,
// so existing exports of local storage can be imported as-is.
const (
	KeyStartDate = "plannerStartYmd"
	KeyTime      = "plannerTime"
	KeyCompleted = "plannerCompleted"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// State is the per-user state persisted between sessions. Empty fields mean
// "not chosen yet" and are resolved to defaults by the planner.
type State struct {
	StartDate string `json:"plannerStartYmd,omitempty"`
	Time      string `json:"plannerTime,omitempty"`
	Completed []int  `json:"plannerCompleted"`
}

// IsDone reports whether day index i is marked completed.
func (s State) IsDone(i int) bool {
	return slices.Contains(s.Completed, i)
}

// Toggle flips the completion flag for day index i.
func (s *State) Toggle(i int) {
	if s.IsDone(i) {
		s.Completed = slices.DeleteFunc(s.Completed, func(v int) bool { return v == i })
		return
	}
	s.Completed = append(s.Completed, i)
}

// ParseClock parses "HH:MM" into hour and minute. Both parts must be
// integers; hour in [0,23], minute in [0,59].
func ParseClock(s string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("time %q: expected HH:MM", s)
	}
	hour, err = strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("time %q: invalid hour: %w", s, err)
	}
	minute, err = strconv.Atoi(ms)
	if err != nil {
		return 0, 0, fmt.Errorf("time %q: invalid minute: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q: out of range", s)
	}
	return hour, minute, nil
}

// FormatClock renders hour and minute as zero-padded "HH:MM".
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
