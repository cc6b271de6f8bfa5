package ics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"studyplan/internal/clock"
	"studyplan/internal/schedule"
)

const (
	defaultEventDuration = 30 * time.Minute
	defaultUIDDomain     = "studyplan.local"
	productID            = "-//studyplan//Study Planner//EN"

	// Floating local date-time: no trailing Z and no TZID, so calendar
	// applications place the event at the same wall-clock time wherever
	// they are.
	floatingLayout = "20060102T150405"
)

// Encoder renders a study plan as an iCalendar document.
type Encoder struct {
	Topics []string
	// Name is exposed as the calendar name (NAME / X-WR-CALNAME).
	Name string
	// Duration of each study session. Zero means 30 minutes.
	Duration time.Duration
	// Alarm adds a DISPLAY alarm to every event, AlarmLead before start.
	Alarm     bool
	AlarmLead time.Duration
	// UIDDomain is the right-hand side of every UID.
	UIDDomain string
	Clock     clock.Clock
}

// NewEncoder returns an Encoder with default duration, alarm and UID domain.
func NewEncoder(topics []string, name string, clk clock.Clock) *Encoder {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Encoder{
		Topics:    topics,
		Name:      name,
		Duration:  defaultEventDuration,
		Alarm:     true,
		UIDDomain: defaultUIDDomain,
		Clock:     clk,
	}
}

// Generate returns the calendar document for a plan starting on startDate's
// calendar day with a daily session at hour:minute local time. The session
// times come from schedule.Build, so they always agree with the on-screen
// plan.
func (e *Encoder) Generate(startDate time.Time, hour, minute int) string {
	return e.Calendar(startDate, hour, minute).Serialize(ical.WithNewLineWindows)
}

// Calendar builds the document without serializing it.
func (e *Encoder) Calendar(startDate time.Time, hour, minute int) *ical.Calendar {
	dur := e.Duration
	if dur <= 0 {
		dur = defaultEventDuration
	}
	domain := e.UIDDomain
	if domain == "" {
		domain = defaultUIDDomain
	}
	stamp := e.Clock.Now()

	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ical.MethodPublish)
	if e.Name != "" {
		cal.SetName(normalizeText(e.Name))
	}

	// One namespace per document: UIDs are unique per index and per export.
	run := uuid.New()
	total := len(e.Topics)

	for _, entry := range schedule.Build(startDate, hour, minute, e.Topics) {
		uid := uuid.NewSHA1(run, []byte(strconv.Itoa(entry.Index))).String() + "@" + domain

		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(stamp)
		start := wallClock(entry.Date, hour, minute)
		ev.SetProperty(ical.ComponentPropertyDtStart, start.Format(floatingLayout))
		ev.SetProperty(ical.ComponentPropertyDtEnd, start.Add(dur).Format(floatingLayout))
		ev.SetSummary(normalizeText(Title(entry.Index, entry.Topic)))
		ev.SetDescription(normalizeText(fmt.Sprintf("Study session %d of %d: %s", entry.Index+1, total, entry.Topic)))

		if e.Alarm {
			alarm := ev.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(triggerBefore(e.AlarmLead))
			alarm.SetDescription(normalizeText(Title(entry.Index, entry.Topic)))
		}
	}

	return cal
}

// wallClock places hour:minute on day's calendar date in UTC, which has no
// DST gaps, so floating times keep the configured wall-clock value.
func wallClock(day time.Time, hour, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, time.UTC)
}

// Title is the event summary for day index i.
func Title(i int, topic string) string {
	return fmt.Sprintf("Day %d: %s", i+1, topic)
}

// EscapeText applies the TEXT escaping used on serialization: backslash,
// semicolon, comma and newline. CR and CRLF count as newlines.
func EscapeText(s string) string {
	return ical.ToText(normalizeText(s))
}

// normalizeText folds CRLF and lone CR into LF; the serializer only knows
// how to escape LF.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// triggerBefore formats a negative DURATION trigger in whole minutes.
func triggerBefore(lead time.Duration) string {
	minutes := int(lead / time.Minute)
	if minutes <= 0 {
		return "PT0M"
	}
	return fmt.Sprintf("-PT%dM", minutes)
}
