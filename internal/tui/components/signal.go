package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// signalGlyphs are the four bars of a signal indicator, shortest first
var signalGlyphs = []rune{'▂', '▄', '▆', '█'}

// SignalBars renders a four-bar indicator with the first n bars lit
func SignalBars(n int, lit lipgloss.Style) string {
	off := lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))

	var b strings.Builder
	for i, g := range signalGlyphs {
		if i < n {
			b.WriteString(lit.Render(string(g)))
		} else {
			b.WriteString(off.Render(string(g)))
		}
	}
	return b.String()
}

// ProgressBar renders pct (0-100) as a bar of the given width
func ProgressBar(pct, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := pct * width / 100
	done := lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))
	todo := lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))

	return done.Render(strings.Repeat("█", filled)) + todo.Render(strings.Repeat("░", width-filled))
}
