package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ChartConfig configures bar chart rendering
type ChartConfig struct {
	Width      int    // Total width including Y-axis labels
	Height     int    // Plot rows
	YAxisWidth int    // Width of Y-axis label area
	Unit       string // Appended to the top Y label
}

// DefaultChartConfig returns sensible defaults
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      60,
		Height:     6,
		YAxisWidth: 9,
		Unit:       "Mbps",
	}
}

var (
	chartAxisStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	chartBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
)

// eighths are partial block heights used for the top cell of each bar
var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// BarChart renders one column per value, newest on the right, scaled to a
// rounded maximum so the Y labels read cleanly
func BarChart(values []float64, cfg ChartConfig) string {
	if cfg.Height < 1 {
		cfg.Height = 1
	}
	plotWidth := cfg.Width - cfg.YAxisWidth - 1
	if plotWidth < 4 {
		plotWidth = 4
	}
	if len(values) > plotWidth {
		values = values[len(values)-plotWidth:]
	}

	max := 0.0
	for _, v := range values {
		max = math.Max(max, v)
	}
	top := niceNum(max)

	rows := make([]string, 0, cfg.Height+1)
	for row := 0; row < cfg.Height; row++ {
		// Each row covers one band of the scale, row 0 is the top band
		bandLow := top * float64(cfg.Height-row-1) / float64(cfg.Height)
		bandSize := top / float64(cfg.Height)

		var line strings.Builder
		for _, v := range values {
			fill := (v - bandLow) / bandSize
			idx := int(math.Round(math.Max(0, math.Min(1, fill)) * 8))
			line.WriteRune(eighths[idx])
		}

		label := ""
		switch row {
		case 0:
			label = formatAxis(top) + " " + cfg.Unit
		case cfg.Height - 1:
			label = "0"
		}
		label = fmt.Sprintf("%*s", cfg.YAxisWidth, truncate(label, cfg.YAxisWidth))

		rows = append(rows, chartAxisStyle.Render(label+"│")+chartBarStyle.Render(line.String()))
	}

	rows = append(rows, chartAxisStyle.Render(strings.Repeat(" ", cfg.YAxisWidth)+"└"+strings.Repeat("─", plotWidth)))
	return strings.Join(rows, "\n")
}

// niceNum rounds x up to 1, 2, 5 or 10 times a power of ten
func niceNum(x float64) float64 {
	if x <= 0 {
		return 1
	}
	exp := math.Floor(math.Log10(x))
	f := x / math.Pow(10, exp)

	var nice float64
	switch {
	case f <= 1:
		nice = 1
	case f <= 2:
		nice = 2
	case f <= 5:
		nice = 5
	default:
		nice = 10
	}
	return nice * math.Pow(10, exp)
}

func formatAxis(v float64) string {
	if v >= 1000 {
		return fmt.Sprintf("%.0fk", v/1000)
	}
	if v < 1 {
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.0f", v)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width]
}
