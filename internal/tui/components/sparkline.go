package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters from lowest to highest
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var (
	sparkNormalColor = lipgloss.Color("#06B6D4") // Cyan
	sparkMissColor   = lipgloss.Color("#6B7280") // Gray
)

// Sparkline renders the most recent width values scaled between zero and
// their maximum. Values of zero or less mark runs with nothing measured.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}

	if len(values) > width {
		values = values[len(values)-width:]
	}

	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}

	normalStyle := lipgloss.NewStyle().Foreground(sparkNormalColor)
	missStyle := lipgloss.NewStyle().Foreground(sparkMissColor)

	var result strings.Builder
	for _, v := range values {
		if v <= 0 {
			result.WriteString(missStyle.Render("·"))
			continue
		}
		idx := int(v / max * 7)
		if idx > 7 {
			idx = 7
		}
		result.WriteString(normalStyle.Render(string(sparkBlocks[idx])))
	}

	if padding := width - len(values); padding > 0 {
		result.WriteString(strings.Repeat(" ", padding))
	}

	return result.String()
}
