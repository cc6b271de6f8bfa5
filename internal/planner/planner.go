// Package planner ties the schedule, storage, reminders and notifications
// together. It is the only place that reads the clock for "today".
package planner

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"studyplan/internal/clock"
	"studyplan/internal/config"
	"studyplan/internal/ics"
	appLog "studyplan/internal/log"
	"studyplan/internal/metrics"
	"studyplan/internal/model"
	"studyplan/internal/notify"
	"studyplan/internal/reminder"
	"studyplan/internal/schedule"
	"studyplan/internal/storage"
	"studyplan/internal/topics"
)

var (
	ErrInvalidTime     = errors.New("invalid reminder time")
	ErrInvalidDate     = errors.New("invalid start date")
	ErrIndexOutOfRange = errors.New("day index out of range")
)

const (
	displayLayout = "Mon, Jan 2, 2006"
	notifyTimeout = 30 * time.Second
)

// Day is one entry of the plan as presented to users.
type Day struct {
	Index   int       `json:"index"`
	Number  int       `json:"day"`
	Topic   string    `json:"topic"`
	Date    string    `json:"date"`
	Display string    `json:"display_date"`
	StartAt time.Time `json:"start_at"`
	Done    bool      `json:"done"`
	Current bool      `json:"current"`
}

// View is everything the page shows, computed from one clock reading.
type View struct {
	Title         string        `json:"title"`
	StartDate     string        `json:"start_date"`
	Time          string        `json:"time"`
	Hour          int           `json:"hour"`
	Minute        int           `json:"minute"`
	CurrentIndex  int           `json:"current_index"`
	Today         Day           `json:"today"`
	Days          []Day         `json:"days"`
	Completed     int           `json:"completed"`
	Total         int           `json:"total"`
	Progress      int           `json:"progress_percent"`
	Quote         string        `json:"quote"`
	ExportURL     string        `json:"export_url"`
	Notifications notify.Status `json:"notifications"`
	NextReminder  *time.Time    `json:"next_reminder,omitempty"`
}

// Planner is safe for concurrent use.
type Planner struct {
	mu sync.Mutex

	title         string
	topics        []string
	quotes        []string
	defaultHour   int
	defaultMinute int
	export        config.ExportConfig

	store     storage.Store
	clock     clock.Clock
	notifier  notify.Notifier
	reminders *reminder.Scheduler
	metrics   *metrics.Metrics

	status notify.Status
	handle reminder.Handle
	armed  bool
}

type Option func(*Planner)

func WithClock(c clock.Clock) Option {
	return func(p *Planner) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithNotifier sets the reminder channel. A nil notifier leaves
// notifications unsupported.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Planner) { p.notifier = n }
}

func WithReminders(s *reminder.Scheduler) Option {
	return func(p *Planner) { p.reminders = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Planner) { p.metrics = m }
}

// New builds a planner over cfg and store.
func New(cfg *config.Config, store storage.Store, opts ...Option) *Planner {
	p := &Planner{
		title:         cfg.Title,
		topics:        slices.Clone(cfg.Topics),
		quotes:        slices.Clone(cfg.Quotes),
		defaultHour:   cfg.DefaultHour,
		defaultMinute: cfg.DefaultMinute,
		export:        cfg.Export,
		store:         store,
		clock:         clock.Real{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.notifier == nil {
		p.status = notify.StatusUnsupported
	} else {
		p.status = notify.StatusDefault
	}
	return p
}

func (p *Planner) Title() string { return p.title }

func (p *Planner) Topics() []string { return slices.Clone(p.topics) }

// Quote picks a motivational quote; equal seeds give equal quotes.
func (p *Planner) Quote(seed uint64) string {
	return topics.PickQuote(p.quotes, seed)
}

// ExportFilename is the attachment name for calendar downloads.
func (p *Planner) ExportFilename() string { return p.export.Filename }

// DefaultTime is the reminder time used until one is chosen.
func (p *Planner) DefaultTime() (hour, minute int) {
	return p.defaultHour, p.defaultMinute
}

// State returns the stored state as-is.
func (p *Planner) State() model.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.Load()
}

// View computes the page for the stored state. seed picks the quote.
func (p *Planner) View(seed uint64) View {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	st := p.store.Load()
	hour, minute := p.timeOf(st)
	plan := schedule.NewBuilder(p.topics, clock.Fixed(now)).Build(st.StartDate, hour, minute)
	start := schedule.ParseStartDate(st.StartDate, now)

	v := View{
		Title:         p.title,
		StartDate:     start.Format(model.DateLayout),
		Time:          model.FormatClock(hour, minute),
		Hour:          hour,
		Minute:        minute,
		CurrentIndex:  schedule.CurrentIndex(plan, now),
		Total:         len(plan),
		Progress:      schedule.ProgressPercent(st.Completed, len(plan)),
		Quote:         p.Quote(seed),
		ExportURL:     fmt.Sprintf("/api/ics?start=%s&hour=%d&minute=%d", start.Format(model.DateLayout), hour, minute),
		Notifications: p.status,
	}

	v.Days = make([]Day, len(plan))
	for i, e := range plan {
		d := Day{
			Index:   e.Index,
			Number:  e.Index + 1,
			Topic:   e.Topic,
			Date:    e.Date.Format(model.DateLayout),
			Display: e.Date.Format(displayLayout),
			StartAt: e.StartAt,
			Done:    st.IsDone(e.Index),
			Current: e.Index == v.CurrentIndex,
		}
		if d.Done {
			v.Completed++
		}
		v.Days[i] = d
	}
	if len(v.Days) > 0 {
		v.Today = v.Days[v.CurrentIndex]
	}
	if p.armed && p.reminders != nil {
		if next := p.reminders.Next(p.handle); !next.IsZero() {
			v.NextReminder = &next
		}
	}

	p.metrics.SetProgress(v.Progress)
	return v
}

// SetStart stores the plan's first day ("YYYY-MM-DD"). An empty value
// clears it so the plan starts today.
func (p *Planner) SetStart(ymd string) error {
	if ymd != "" {
		if _, err := time.Parse(model.DateLayout, ymd); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, ymd)
		}
	}
	return p.update(func(st *model.State) error {
		st.StartDate = ymd
		return nil
	}, true)
}

// SetTime stores the daily reminder time ("HH:MM").
func (p *Planner) SetTime(hhmm string) error {
	if _, _, err := model.ParseClock(hhmm); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	return p.update(func(st *model.State) error {
		st.Time = hhmm
		return nil
	}, true)
}

// SetState replaces the whole stored state after validating it.
func (p *Planner) SetState(next model.State) error {
	if next.StartDate != "" {
		if _, err := time.Parse(model.DateLayout, next.StartDate); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, next.StartDate)
		}
	}
	if next.Time != "" {
		if _, _, err := model.ParseClock(next.Time); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTime, err)
		}
	}
	completed := make([]int, 0, len(next.Completed))
	for _, i := range next.Completed {
		if i < 0 || i >= len(p.topics) {
			return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
		}
		if !slices.Contains(completed, i) {
			completed = append(completed, i)
		}
	}
	next.Completed = completed

	return p.update(func(st *model.State) error {
		*st = next
		return nil
	}, true)
}

// Toggle flips day index and reports whether it is now done.
func (p *Planner) Toggle(index int) (bool, error) {
	if index < 0 || index >= len(p.topics) {
		return false, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	var done bool
	err := p.update(func(st *model.State) error {
		st.Toggle(index)
		done = st.IsDone(index)
		return nil
	}, false)
	if err != nil {
		return false, err
	}
	p.metrics.RecordToggle(done)
	return done, nil
}

// ToggleToday flips the current day and returns its index.
func (p *Planner) ToggleToday() (int, bool, error) {
	if len(p.topics) == 0 {
		return 0, false, fmt.Errorf("%w: empty plan", ErrIndexOutOfRange)
	}
	var index int
	var done bool
	err := p.update(func(st *model.State) error {
		now := p.clock.Now()
		hour, minute := p.timeOf(*st)
		plan := schedule.NewBuilder(p.topics, clock.Fixed(now)).Build(st.StartDate, hour, minute)
		index = schedule.CurrentIndex(plan, now)
		st.Toggle(index)
		done = st.IsDone(index)
		return nil
	}, false)
	if err != nil {
		return 0, false, err
	}
	p.metrics.RecordToggle(done)
	return index, done, nil
}

// Reset clears all progress.
func (p *Planner) Reset() error {
	err := p.update(func(st *model.State) error {
		st.Completed = nil
		return nil
	}, false)
	if err != nil {
		return err
	}
	p.metrics.RecordReset()
	return nil
}

// Export renders the calendar for an explicit start and time. An empty or
// malformed start means today. source labels the export metric.
func (p *Planner) Export(start string, hour, minute int, source string) string {
	now := p.clock.Now()
	enc := ics.NewEncoder(p.topics, p.title, clock.Fixed(now))
	enc.Duration = time.Duration(p.export.EventMinutes) * time.Minute
	enc.Alarm = p.export.Alarm
	enc.AlarmLead = time.Duration(p.export.AlarmMinutesBefore) * time.Minute
	if p.export.UIDDomain != "" {
		enc.UIDDomain = p.export.UIDDomain
	}

	doc := enc.Generate(schedule.ParseStartDate(start, now), hour, minute)
	p.metrics.RecordExport(source)
	appLog.Debug("calendar exported", "start", start, "hour", hour, "minute", minute, "source", source)
	return doc
}

// NotificationStatus reports the last known permission.
func (p *Planner) NotificationStatus() notify.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// EnableNotifications asks the notifier for permission and, once granted,
// arms the daily reminder at the stored time.
func (p *Planner) EnableNotifications(ctx context.Context) (notify.Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.notifier == nil {
		p.status = notify.StatusUnsupported
		return p.status, nil
	}
	st, err := p.notifier.RequestPermission(ctx)
	if err != nil {
		return p.status, fmt.Errorf("request notification permission: %w", err)
	}
	p.status = st
	appLog.Info("notification permission", "status", string(st))

	if st != notify.StatusGranted {
		p.disarmLocked()
		return st, nil
	}
	if err := p.armLocked(p.store.Load()); err != nil {
		return st, err
	}
	return st, nil
}

// Close cancels the pending reminder.
func (p *Planner) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disarmLocked()
}

// update loads, mutates and saves the state under the lock. When rearm is
// set and reminders are on, the reminder follows the new time.
func (p *Planner) update(mutate func(*model.State) error, rearm bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.store.Load()
	if err := mutate(&st); err != nil {
		return err
	}
	if err := p.store.Save(st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if rearm && p.status == notify.StatusGranted {
		return p.armLocked(st)
	}
	return nil
}

func (p *Planner) timeOf(st model.State) (int, int) {
	if st.Time != "" {
		if h, m, err := model.ParseClock(st.Time); err == nil {
			return h, m
		}
	}
	return p.defaultHour, p.defaultMinute
}

func (p *Planner) armLocked(st model.State) error {
	if p.reminders == nil {
		return nil
	}
	p.disarmLocked()

	hour, minute := p.timeOf(st)
	h, err := p.reminders.ScheduleDaily(hour, minute, p.fire)
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}
	p.handle = h
	p.armed = true
	return nil
}

func (p *Planner) disarmLocked() {
	if !p.armed || p.reminders == nil {
		return
	}
	p.reminders.Cancel(p.handle)
	p.armed = false
}

// fire sends today's reminder. The day is computed at fire time, not when
// the reminder was armed.
func (p *Planner) fire() {
	msg, ok := p.reminderMessage()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := p.notifier.Notify(ctx, msg); err != nil {
		appLog.Error("reminder delivery failed", err, "title", msg.Title)
		p.metrics.RecordReminder("failed")
		return
	}
	p.metrics.RecordReminder("sent")
}

func (p *Planner) reminderMessage() (notify.Message, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.notifier == nil || p.status != notify.StatusGranted || len(p.topics) == 0 {
		return notify.Message{}, false
	}
	now := p.clock.Now()
	st := p.store.Load()
	hour, minute := p.timeOf(st)
	plan := schedule.NewBuilder(p.topics, clock.Fixed(now)).Build(st.StartDate, hour, minute)
	idx := schedule.CurrentIndex(plan, now)
	return notify.NewMessage(idx, plan[idx].Topic), true
}
