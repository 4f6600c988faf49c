package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/wellsgz/linkcheck/internal/quality"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorWarning   = lipgloss.Color("#F59E0B") // Yellow
	ColorDanger    = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorBgLight   = lipgloss.Color("#374151") // Lighter background
	ColorText      = lipgloss.Color("#F9FAFB") // Light text
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorPrimary).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(12)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	// Marks figures that are placeholders rather than measurements
	SimulatedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	GoodStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarnStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	BadStyle  = lipgloss.NewStyle().Foreground(ColorDanger)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	PanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)
)

// TierStyle returns the colour for a quality tier
func TierStyle(tier quality.Tier) lipgloss.Style {
	switch tier {
	case quality.TierGood:
		return GoodStyle
	case quality.TierFair:
		return WarnStyle
	default:
		return BadStyle
	}
}

// PingStyle returns the appropriate style based on latency value
func PingStyle(ms float64) lipgloss.Style {
	switch {
	case ms < 50:
		return GoodStyle
	case ms < 200:
		return WarnStyle
	default:
		return BadStyle
	}
}

// FormatPing formats a latency value with color; zero renders as a dash
func FormatPing(ms float64) string {
	if ms <= 0 {
		return SimulatedStyle.Render("--")
	}
	return PingStyle(ms).Render(fmt.Sprintf("%.0f ms", ms))
}

// FormatMbps formats a throughput figure, flagging simulated values
func FormatMbps(mbps float64, measured bool) string {
	text := fmt.Sprintf("%.0f Mbps", mbps)
	if !measured {
		return SimulatedStyle.Render(text + " (est.)")
	}
	return ValueStyle.Render(text)
}
