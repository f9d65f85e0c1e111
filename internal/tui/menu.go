package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/profile"
)

var menuColumns = []table.Column{
	{Title: "#", Width: 2},
	{Title: "Lesson", Width: 24},
	{Title: "Type", Width: 13},
	{Title: "Goal", Width: 12},
	{Title: "Time", Width: 5},
	{Title: "Done", Width: 4},
}

func newMenu(items []model.Lesson, p profile.Profile) table.Model {
	t := table.New(
		table.WithColumns(menuColumns),
		table.WithRows(menuRows(items, p)),
		table.WithHeight(len(items)+1),
		table.WithFocused(true),
	)
	t.SetStyles(menuStyles())
	return t
}

func menuRows(items []model.Lesson, p profile.Profile) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, l := range items {
		goal := goalLabel(l)
		if goal == "" {
			goal = "-"
		}
		limit := "-"
		if l.TimeLimitSec > 0 {
			limit = fmt.Sprintf("%ds", l.TimeLimitSec)
		}
		done := ""
		if p.HasCompleted(l.ID) {
			done = "✓"
		}
		rows = append(rows, table.Row{l.ID, l.Title, string(l.Type), goal, limit, done})
	}
	return rows
}

func menuStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#3A3A3A")).
		Bold(true)
	return styles
}
