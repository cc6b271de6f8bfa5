// Package notify delivers the daily study reminder.
package notify

import (
	"context"
	"fmt"

	"studyplan/internal/config"
	appLog "studyplan/internal/log"
)

// Status is the notification permission state.
type Status string

const (
	StatusDefault     Status = "default"
	StatusGranted     Status = "granted"
	StatusDenied      Status = "denied"
	StatusUnsupported Status = "unsupported"
)

// ReminderBody is the fixed body of every reminder.
const ReminderBody = "Time to study today's topic!"

// Message is one notification.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NewMessage builds the reminder for day index (0-based).
func NewMessage(index int, topic string) Message {
	return Message{
		Title: fmt.Sprintf("Day %d: %s", index+1, topic),
		Body:  ReminderBody,
	}
}

// Notifier asks for permission once and then delivers messages.
// A denied or unsupported permission is reported as a Status, not an error.
type Notifier interface {
	RequestPermission(ctx context.Context) (Status, error)
	Notify(ctx context.Context, msg Message) error
}

// New returns the notifier for cfg.Driver, or nil for "none".
func New(cfg config.NotificationsConfig) Notifier {
	switch cfg.Driver {
	case "webhook":
		return NewWebhookNotifier(cfg.WebhookURL)
	case "none":
		return nil
	default:
		return LogNotifier{}
	}
}

// LogNotifier writes reminders to the application log.
type LogNotifier struct{}

func (LogNotifier) RequestPermission(context.Context) (Status, error) {
	return StatusGranted, nil
}

func (LogNotifier) Notify(_ context.Context, msg Message) error {
	appLog.Info("reminder", "title", msg.Title, "body", msg.Body)
	return nil
}
