package cli

import (
	appLog "studyplan/internal/log"
	"studyplan/internal/notify"
	"studyplan/internal/web"
)

type ServeCmd struct {
	Listen   string `help:"HTTP listen address (overrides config if set)."`
	NoNotify bool   `help:"Do not arm the daily reminder on startup."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	if c.Listen != "" {
		ctx.Config.Listen = c.Listen
	}

	ctx.Reminders.Start()
	if !c.NoNotify {
		st, err := ctx.Planner.EnableNotifications(ctx.Ctx)
		if err != nil {
			appLog.Error("failed to enable notifications", err)
		} else if st != notify.StatusGranted {
			appLog.Warn("daily reminder not armed", "status", string(st))
		}
	}

	srv := web.NewServer(ctx.Config, ctx.Planner, ctx.Metrics)
	return srv.ListenAndServe(ctx.Ctx)
}
