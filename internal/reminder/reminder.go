// Package reminder fires a callback once per day at a fixed local time.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/teambition/rrule-go"

	"studyplan/internal/clock"
	appLog "studyplan/internal/log"
)

// Handle identifies one armed daily reminder.
type Handle int

// Scheduler runs daily reminders on a cron runner.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[Handle]cron.EntryID
	next    Handle
	running bool
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	lg := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(lg),
			cron.WithChain(cron.Recover(lg)),
		),
		entries: make(map[Handle]cron.EntryID),
	}
}

// Start begins dispatching. Reminders armed before Start wait for it.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
}

// ScheduleDaily arms onFire for every day at hour:minute local time.
func (s *Scheduler) ScheduleDaily(hour, minute int, onFire func()) (Handle, error) {
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid reminder hour %d", hour)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid reminder minute %d", minute)
	}
	if onFire == nil {
		return 0, fmt.Errorf("reminder callback is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.cron.Schedule(dailySchedule{hour: hour, minute: minute}, cron.FuncJob(onFire))
	s.next++
	h := s.next
	s.entries[h] = id

	appLog.Info("reminder scheduled", "handle", int(h), "at", fmt.Sprintf("%02d:%02d", hour, minute))
	return h, nil
}

// Cancel disarms h. Unknown or already cancelled handles are ignored.
func (s *Scheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[h]
	if !ok {
		return
	}
	s.cron.Remove(id)
	delete(s.entries, h)
	appLog.Info("reminder cancelled", "handle", int(h))
}

// Next reports when h fires next. The zero time is returned for unknown
// handles or before Start.
func (s *Scheduler) Next(h Handle) time.Time {
	s.mu.Lock()
	id, ok := s.entries[h]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Len is the number of armed reminders.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stop cancels every reminder and stops the runner. The returned context is
// done once running callbacks have returned.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	for h, id := range s.entries {
		s.cron.Remove(id)
		delete(s.entries, h)
	}
	s.running = false
	return s.cron.Stop()
}

// NextFire is the first hour:minute instant strictly after now, in now's
// location.
func NextFire(now time.Time, hour, minute int) time.Time {
	return dailySchedule{hour: hour, minute: minute}.Next(now)
}

// dailySchedule is FREQ=DAILY;BYHOUR=h;BYMINUTE=m;BYSECOND=0 anchored at the
// start of the day being asked about.
type dailySchedule struct {
	hour, minute int
}

func (d dailySchedule) Next(t time.Time) time.Time {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Dtstart:  clock.Midnight(t),
		Byhour:   []int{d.hour},
		Byminute: []int{d.minute},
		Bysecond: []int{0},
	})
	if err != nil {
		appLog.Error("reminder rule invalid", err, "hour", d.hour, "minute", d.minute)
		return time.Time{}
	}
	return rule.After(t, false)
}

// cronLogger forwards cron's own logging into the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
