package ui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-focused Bubbles table sized to its rows.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+2), // header and its bottom border
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is focused, so the cursor row must look like any other.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// HostTableRow summarises one host of the inventory.
type HostTableRow struct {
	Host        string
	Folders     int
	LastUpdated time.Time
}

// RenderHostTable renders the per-host inventory summary.
func RenderHostTable(rows []HostTableRow, now time.Time) string {
	if len(rows) == 0 {
		return "No hosts in inventory"
	}

	hostWidth := len("HOST")
	for _, r := range rows {
		if w := lipgloss.Width(r.Host); w > hostWidth {
			hostWidth = w
		}
	}

	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row{r.Host, strconv.Itoa(r.Folders), formatAge(now.Sub(r.LastUpdated))}
	}

	t := NewTable([]TableColumn{
		{Title: "HOST", Width: hostWidth + 2},
		{Title: "APPS", Width: 6},
		{Title: "UPDATED", Width: 12},
	}, tableRows)
	return t.View()
}

// formatAge renders how long ago a refresh happened, coarsely.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return strconv.Itoa(int(d/time.Minute)) + "m ago"
	case d < 48*time.Hour:
		return strconv.Itoa(int(d/time.Hour)) + "h ago"
	default:
		return strconv.Itoa(int(d/(24*time.Hour))) + "d ago"
	}
}
