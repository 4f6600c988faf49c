package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column
type Column struct {
	Title string
	Width int
	Align lipgloss.Position
}

// Table renders a simple table
type Table struct {
	Columns       []Column
	HeaderStyle   lipgloss.Style
	RowStyle      lipgloss.Style
	SelectedStyle lipgloss.Style
}

// NewTable creates a new table with the given columns
func NewTable(columns []Column) *Table {
	return &Table{
		Columns: columns,
		HeaderStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#06B6D4")).
			Padding(0, 1),
		RowStyle: lipgloss.NewStyle().
			Padding(0, 1),
		SelectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(lipgloss.Color("#F9FAFB")).
			Padding(0, 1),
	}
}

// RenderHeader renders the table header
func (t *Table) RenderHeader() string {
	cells := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		cells = append(cells, t.HeaderStyle.Render(pad(col.Title, col)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// RenderRow renders a single row
func (t *Table) RenderRow(values []string, selected bool) string {
	style := t.RowStyle
	if selected {
		style = t.SelectedStyle
	}

	cells := make([]string, 0, len(t.Columns))
	for i, col := range t.Columns {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		cells = append(cells, style.Render(pad(value, col)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// RenderSeparator renders a separator line
func (t *Table) RenderSeparator() string {
	totalWidth := 0
	for _, col := range t.Columns {
		totalWidth += col.Width + 2 // +2 for padding
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Render(strings.Repeat("─", totalWidth))
}

// pad aligns value within the column using its visible width, so values
// that already carry ANSI styling line up
func pad(value string, col Column) string {
	padding := col.Width - lipgloss.Width(value)
	if padding <= 0 {
		return value
	}

	switch col.Align {
	case lipgloss.Right:
		return strings.Repeat(" ", padding) + value
	case lipgloss.Center:
		left := padding / 2
		return strings.Repeat(" ", left) + value + strings.Repeat(" ", padding-left)
	default:
		return value + strings.Repeat(" ", padding)
	}
}

// HistoryColumns returns the run history columns adapted to the terminal width
func HistoryColumns(width int) []Column {
	const (
		timeWidth    = 8
		speedWidth   = 16
		pingWidth    = 8
		qualityWidth = 10
		minServer    = 10
		maxServer    = 28
	)

	fixed := timeWidth + 2*speedWidth + pingWidth + qualityWidth + 12 // 12 for padding
	serverWidth := width - fixed
	if serverWidth < minServer {
		serverWidth = minServer
	}
	if serverWidth > maxServer {
		serverWidth = maxServer
	}

	return []Column{
		{Title: "Time", Width: timeWidth, Align: lipgloss.Left},
		{Title: "Download", Width: speedWidth, Align: lipgloss.Right},
		{Title: "Upload", Width: speedWidth, Align: lipgloss.Right},
		{Title: "Ping", Width: pingWidth, Align: lipgloss.Right},
		{Title: "Quality", Width: qualityWidth, Align: lipgloss.Left},
		{Title: "Server", Width: serverWidth, Align: lipgloss.Left},
	}
}
