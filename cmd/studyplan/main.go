package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"studyplan/internal/cli"
	appLog "studyplan/internal/log"
)

const version = "0.1.0"

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"~/.config/studyplan/config.yaml"`
	Debug   bool   `help:"Enable debug logging."`

	Serve    cli.ServeCmd    `cmd:"" help:"Run the web UI, API and daily reminder." default:"withargs"`
	Export   cli.ExportCmd   `cmd:"" help:"Write the plan as an iCalendar file."`
	Plan     cli.PlanCmd     `cmd:"" help:"Show the plan with progress."`
	Toggle   cli.ToggleCmd   `cmd:"" help:"Mark a day as done or not done."`
	Reset    cli.ResetCmd    `cmd:"" help:"Clear all progress."`
	Set      cli.SetCmd      `cmd:"" help:"Change the start date or reminder time."`
	Quote    cli.QuoteCmd    `cmd:"" help:"Print a motivational quote."`
	Inspect  cli.InspectCmd  `cmd:"" help:"List the events of a calendar file."`
	Snapshot cli.SnapshotCmd `cmd:"" help:"Save a PNG of the running web UI."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("studyplan"),
		kong.Description("20-day study planner with calendar export and daily reminders"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	appCtx, err := cli.Setup(ctx, CLI.Config, CLI.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	appLog.Debug("studyplan starting", "version", version, "command", kctx.Command())

	runErr := kctx.Run(appCtx)
	if err := appCtx.Close(); err != nil {
		appLog.Error("cleanup failed", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
