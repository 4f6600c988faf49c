package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/wellsgz/linkcheck/internal/quality"
	"github.com/wellsgz/linkcheck/internal/runner"
	"github.com/wellsgz/linkcheck/internal/tui/components"
)

// View renders the current view
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(m.renderError())
		b.WriteString("\n\n")
	}

	switch m.currentView {
	case HistoryView:
		b.WriteString(m.renderHistoryView())
	default:
		b.WriteString(m.renderDashboard())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

// renderError renders an error message
func (m Model) renderError() string {
	return lipgloss.NewStyle().
		Foreground(ColorDanger).
		Background(lipgloss.Color("#3F1F1F")).
		Padding(0, 1).
		Width(max(m.width-2, 10)).
		Render("Error: " + m.err.Error())
}

// renderHeader renders the application header
func (m Model) renderHeader() string {
	title := TitleStyle.Render(" linkcheck ")
	subtitle := SubtitleStyle.Render("Network Quality Check · " + m.currentView.String())

	info := ""
	if m.apiAddr != "" {
		info = fmt.Sprintf("API: %s", m.apiAddr)
	}
	if !m.focused {
		info = strings.TrimSpace(info + "  paused (unfocused)")
	}
	right := lipgloss.NewStyle().Foreground(ColorMuted).Render(info)

	left := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", subtitle)

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if spacing < 1 {
		spacing = 1
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, left, strings.Repeat(" ", spacing), right)
}

// renderDashboard renders the live run panel
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderProgress())
	b.WriteString("\n\n")

	metrics := m.renderMetrics()
	qualityPanel := m.renderQuality()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		PanelStyle.Width(34).Render(metrics),
		"  ",
		PanelStyle.Width(40).Render(qualityPanel),
	))
	b.WriteString("\n\n")

	b.WriteString(SectionStyle.Render("Download across runs"))
	b.WriteString("  ")
	b.WriteString(components.Sparkline(m.downloadSeries(), max(m.width-26, 10)))
	b.WriteString("\n")

	return b.String()
}

// renderProgress renders the phase and progress bar
func (m Model) renderProgress() string {
	phase := m.state.Phase
	label := strings.ToUpper(phase.String()[:1]) + phase.String()[1:]
	if phase == runner.PhaseIdle {
		label = "Ready"
	}

	line := SectionStyle.Render(fmt.Sprintf("%-9s", label)) + " " +
		components.ProgressBar(m.state.Progress, max(m.width-20, 10)) +
		fmt.Sprintf(" %3d%%", m.state.Progress)

	if m.sample > 0 && m.state.Running {
		line += "  " + SimulatedStyle.Render(fmt.Sprintf("~%.0f Mbps", m.sample))
	}
	return line
}

// renderMetrics renders ping, download and upload
func (m Model) renderMetrics() string {
	var b strings.Builder

	b.WriteString(SectionStyle.Render("Measurements"))
	b.WriteString("\n")

	b.WriteString(LabelStyle.Render("Ping"))
	b.WriteString(FormatPing(m.state.PingMs))
	b.WriteString("\n")

	b.WriteString(LabelStyle.Render("Download"))
	b.WriteString(m.formatSpeed(m.state.DownloadMbps, m.state.DownloadMeasured, runner.PhaseDownload))
	b.WriteString("\n")

	b.WriteString(LabelStyle.Render("Upload"))
	b.WriteString(m.formatSpeed(m.state.UploadMbps, m.state.UploadMeasured, runner.PhaseUpload))

	if res := m.LatestResult(); res != nil {
		b.WriteString("\n")
		if res.ServerHost != "" {
			b.WriteString(LabelStyle.Render("Server"))
			b.WriteString(res.ServerHost)
			b.WriteString("\n")
		}
		if res.Provider != "" {
			b.WriteString(LabelStyle.Render("Provider"))
			b.WriteString(res.Provider)
			b.WriteString("\n")
		}
		b.WriteString(LabelStyle.Render("Finished"))
		b.WriteString(formatTimestamp(res.Timestamp))
	}

	return b.String()
}

// formatSpeed shows a dash until the phase has produced a figure
func (m Model) formatSpeed(mbps float64, measured bool, phase runner.Phase) string {
	if m.state.Phase <= phase && m.state.Running {
		return SimulatedStyle.Render("--")
	}
	if mbps == 0 && !measured {
		return SimulatedStyle.Render("--")
	}
	return FormatMbps(mbps, measured)
}

// renderQuality renders the live quality assessment and hint
func (m Model) renderQuality() string {
	var b strings.Builder
	a := m.assessment
	style := TierStyle(a.Tier())

	b.WriteString(SectionStyle.Render("Quality"))
	b.WriteString("\n")
	b.WriteString(components.SignalBars(a.Bars(), style))
	b.WriteString("  ")
	b.WriteString(style.Bold(true).Render(a.Label.String()))
	b.WriteString(fmt.Sprintf("  %d%%", a.Score))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorMuted).Width(36).Render(a.Label.Advice()))

	h := m.currentHint()
	if !h.IsZero() {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Hint"))
		parts := []string{}
		if h.EffectiveType != "" {
			parts = append(parts, h.EffectiveType)
		}
		if h.Downlink > 0 {
			parts = append(parts, fmt.Sprintf("%.1f Mbps", h.Downlink))
		}
		if h.RTT > 0 {
			parts = append(parts, fmt.Sprintf("%.0f ms", h.RTT))
		}
		b.WriteString(strings.Join(parts, " · "))
	}

	return b.String()
}

// renderHistoryView renders past runs as a chart and a table
func (m Model) renderHistoryView() string {
	if len(m.history) == 0 {
		return lipgloss.NewStyle().Foreground(ColorMuted).Italic(true).Render("No completed runs yet. Press r to start one.") + "\n"
	}

	var b strings.Builder

	b.WriteString(SectionStyle.Render("Measured download (Mbps)"))
	b.WriteString("\n")
	cfg := components.DefaultChartConfig()
	cfg.Width = max(m.width-2, 20)
	b.WriteString(components.BarChart(m.downloadSeries(), cfg))
	b.WriteString("\n\n")

	columns := components.HistoryColumns(m.width)
	table := components.NewTable(columns)

	rows := []string{table.RenderHeader(), table.RenderSeparator()}

	// Show the rows that fit, keeping the selection visible
	visible := len(m.history)
	if m.height > 0 {
		visible = max(m.height-cfg.Height-12, 3)
	}
	start := 0
	if len(m.history) > visible {
		start = min(max(m.selectedIdx-visible+1, 0), len(m.history)-visible)
	}
	end := min(start+visible, len(m.history))

	for i := start; i < end; i++ {
		rows = append(rows, table.RenderRow(historyRow(m.history[i]), i == m.selectedIdx))
	}
	b.WriteString(strings.Join(rows, "\n"))
	b.WriteString("\n")

	return b.String()
}

// historyRow formats one completed run for the history table
func historyRow(res runner.Result) []string {
	server := res.ServerHost
	if server == "" {
		server = "-"
	}
	return []string{
		formatClock(res.Timestamp),
		FormatMbps(res.DownloadMbps, res.DownloadMeasured),
		FormatMbps(res.UploadMbps, res.UploadMeasured),
		FormatPing(res.PingMs),
		TierStyle(tierOf(res)).Render(res.Quality),
		server,
	}
}

type helpKey struct {
	key  string
	desc string
}

// renderHelp renders the help footer
func (m Model) renderHelp() string {
	keys := []helpKey{
		{"r", "run test"},
		{"Tab", "dashboard/history"},
	}
	if m.currentView == HistoryView {
		keys = append(keys, helpKey{"↑/↓", "select"})
	}
	keys = append(keys, helpKey{"q", "quit"})

	var parts []string
	for _, k := range keys {
		parts = append(parts, HelpKeyStyle.Render(k.key)+HelpStyle.Render(" "+k.desc))
	}

	return HelpStyle.Render(strings.Join(parts, "  "))
}

// tierOf recovers the colour tier of a stored result
func tierOf(res runner.Result) quality.Tier {
	return quality.Assessment{Score: res.QualityPct, Label: quality.LabelFor(res.QualityPct)}.Tier()
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatClock(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return "--:--"
	}
	return t.Local().Format("15:04:05")
}
