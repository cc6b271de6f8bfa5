// Package cli holds the studyplan subcommands. Each command's Run receives a
// *Context built once by main from the loaded configuration.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"studyplan/internal/clock"
	"studyplan/internal/config"
	appLog "studyplan/internal/log"
	"studyplan/internal/metrics"
	"studyplan/internal/notify"
	"studyplan/internal/planner"
	"studyplan/internal/reminder"
	"studyplan/internal/storage"
)

// Context is shared by all commands.
type Context struct {
	Ctx       context.Context
	Config    *config.Config
	Planner   *planner.Planner
	Metrics   *metrics.Metrics
	Reminders *reminder.Scheduler
	Out       io.Writer

	store storage.Store
}

// Setup loads the config at path, initialises logging and wires the planner.
// The caller must Close the returned Context.
func Setup(ctx context.Context, path string, debug bool) (*Context, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	level := appLog.ParseLevel(cfg.Log.Level)
	if debug {
		level = appLog.LevelDebug
	}
	if err := appLog.Init(appLog.Options{Level: level, File: cfg.Log.File}); err != nil {
		return nil, fmt.Errorf("failed to initialise logging: %w", err)
	}

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	m := metrics.New()
	rem := reminder.New(time.Local)
	p := planner.New(cfg, store,
		planner.WithClock(clock.Real{}),
		planner.WithNotifier(notify.New(cfg.Notifications)),
		planner.WithReminders(rem),
		planner.WithMetrics(m),
	)

	appLog.Debug("effective config",
		"config_path", path,
		"listen", cfg.Listen,
		"storage_driver", cfg.Storage.Driver,
		"storage_path", cfg.Storage.Path,
		"notifications", cfg.Notifications.Driver,
		"topic_count", len(cfg.Topics),
	)

	return &Context{
		Ctx:       ctx,
		Config:    cfg,
		Planner:   p,
		Metrics:   m,
		Reminders: rem,
		Out:       os.Stdout,
		store:     store,
	}, nil
}

// Close cancels reminders and releases storage.
func (c *Context) Close() error {
	if c.Planner != nil {
		c.Planner.Close()
	}
	if c.Reminders != nil {
		<-c.Reminders.Stop().Done()
	}
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
