package cli

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"studyplan/internal/capture"
	"studyplan/internal/ics"
)

type QuoteCmd struct {
	Seed string `help:"Seed for a reproducible pick."`
}

func (c *QuoteCmd) Run(ctx *Context) error {
	seed := rand.Uint64()
	if c.Seed != "" {
		n, err := strconv.ParseUint(c.Seed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", c.Seed, err)
		}
		seed = n
	}
	fmt.Fprintln(ctx.Out, ctx.Planner.Quote(seed))
	return nil
}

type InspectCmd struct {
	File string `arg:"" type:"existingfile" help:"Calendar file to read."`
}

func (c *InspectCmd) Run(ctx *Context) error {
	body, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}
	events, err := ics.Decode(body)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "%d events\n", len(events))
	for _, ev := range events {
		alarm := ""
		if ev.HasAlarm {
			alarm = " (alarm)"
		}
		fmt.Fprintf(ctx.Out, "%s  %s-%s  %s%s\n",
			ev.Start.Format("2006-01-02"), ev.Start.Format("15:04"), ev.End.Format("15:04"), ev.Summary, alarm)
	}
	return nil
}

type SnapshotCmd struct {
	URL     string        `help:"Page to capture. Defaults to the configured listen address."`
	Output  string        `short:"o" help:"PNG output path." type:"path" default:"./data/plan.png"`
	Width   int           `help:"Viewport width in pixels."`
	Height  int           `help:"Viewport height in pixels."`
	Timeout time.Duration `help:"Capture timeout." default:"30s"`
}

func (c *SnapshotCmd) Run(ctx *Context) error {
	url := c.URL
	if url == "" {
		url = "http://" + ctx.Config.Listen + "/"
	}
	err := capture.Snapshot(ctx.Ctx, capture.Options{
		URL:        url,
		OutputPath: c.Output,
		Width:      c.Width,
		Height:     c.Height,
		Timeout:    c.Timeout,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Wrote %s\n", c.Output)
	return nil
}
