package cli

import (
	"fmt"
	"io"
	"os"

	"studyplan/internal/model"
)

type ExportCmd struct {
	Start  string `help:"First day (YYYY-MM-DD). Defaults to the saved start date, or today."`
	Hour   int    `help:"Session hour, 0-23. Defaults to the saved reminder time." default:"-1"`
	Minute int    `help:"Session minute, 0-59. Defaults to the saved reminder time." default:"-1"`
	Output string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	v := ctx.Planner.View(0)

	start := c.Start
	if start == "" {
		start = v.StartDate
	}
	hour, minute := v.Hour, v.Minute
	if c.Hour >= 0 {
		hour = c.Hour
	}
	if c.Minute >= 0 {
		minute = c.Minute
	}
	if hour > 23 || minute > 59 {
		return fmt.Errorf("invalid time %s", model.FormatClock(hour, minute))
	}

	doc := ctx.Planner.Export(start, hour, minute, "cli")

	if c.Output == "" || c.Output == "-" {
		_, err := io.WriteString(ctx.Out, doc)
		return err
	}
	if err := os.WriteFile(c.Output, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Output, err)
	}
	fmt.Fprintf(ctx.Out, "Wrote %d days to %s\n", v.Total, c.Output)
	return nil
}
