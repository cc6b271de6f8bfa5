package cli

import (
	"fmt"
)

type ToggleCmd struct {
	Day int `arg:"" optional:"" help:"Day number (1-based). Defaults to today."`
}

func (c *ToggleCmd) Run(ctx *Context) error {
	var (
		index int
		done  bool
		err   error
	)
	if c.Day == 0 {
		index, done, err = ctx.Planner.ToggleToday()
	} else {
		index = c.Day - 1
		done, err = ctx.Planner.Toggle(index)
	}
	if err != nil {
		return err
	}

	state := "not done"
	if done {
		state = "done"
	}
	fmt.Fprintf(ctx.Out, "Day %d marked as %s\n", index+1, state)
	return nil
}

type ResetCmd struct{}

func (c *ResetCmd) Run(ctx *Context) error {
	if err := ctx.Planner.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "Progress reset")
	return nil
}

type SetCmd struct {
	Start string `help:"First day of the plan (YYYY-MM-DD)."`
	Time  string `help:"Daily reminder time (HH:MM)."`
}

func (c *SetCmd) Run(ctx *Context) error {
	if c.Start == "" && c.Time == "" {
		return fmt.Errorf("nothing to set, use --start and/or --time")
	}
	if c.Start != "" {
		if err := ctx.Planner.SetStart(c.Start); err != nil {
			return err
		}
	}
	if c.Time != "" {
		if err := ctx.Planner.SetTime(c.Time); err != nil {
			return err
		}
	}
	v := ctx.Planner.View(0)
	fmt.Fprintf(ctx.Out, "Plan starts %s, daily at %s\n", v.StartDate, v.Time)
	return nil
}
