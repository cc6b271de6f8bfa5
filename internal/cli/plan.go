package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))
)

type PlanCmd struct{}

func (c *PlanCmd) Run(ctx *Context) error {
	v := ctx.Planner.View(0)

	fmt.Fprintln(ctx.Out, titleStyle.Render(v.Title))
	fmt.Fprintf(ctx.Out, "Starts %s, daily at %s. %d/%d done (%d%%)\n\n",
		v.StartDate, v.Time, v.Completed, v.Total, v.Progress)

	for _, d := range v.Days {
		status := pendingStyle.Render("[ ]")
		if d.Done {
			status = doneStyle.Render("[x]")
		}
		line := fmt.Sprintf("Day %2d  %s", d.Number, d.Topic)
		if d.Current {
			line = currentStyle.Render(line + "  <- today")
		}
		fmt.Fprintf(ctx.Out, "%s %s  %s\n", status, dateStyle.Render(d.Date), line)
	}
	return nil
}
