package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wellsgz/linkcheck/internal/hint"
	"github.com/wellsgz/linkcheck/internal/probe"
	"github.com/wellsgz/linkcheck/internal/quality"
	"github.com/wellsgz/linkcheck/internal/runner"
)

func newTestModel(t *testing.T) (Model, *probe.Visibility) {
	t.Helper()
	r := runner.New(runner.Options{}, runner.Deps{})
	t.Cleanup(r.Close)

	vis := probe.NewVisibility()
	feed := hint.NewFeed(hint.Info{EffectiveType: "4g", Downlink: 50, RTT: 40})
	m := NewModel(context.Background(), r, vis, feed, ":8080")

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), vis
}

func TestFocusDrivesVisibility(t *testing.T) {
	m, vis := newTestModel(t)

	updated, _ := m.Update(tea.BlurMsg{})
	m = updated.(Model)
	if vis.Visible() {
		t.Error("Visible() = true after blur, want false")
	}
	if !strings.Contains(m.View(), "paused") {
		t.Error("View() does not show the paused marker after blur")
	}

	updated, _ = m.Update(tea.FocusMsg{})
	m = updated.(Model)
	if !vis.Visible() {
		t.Error("Visible() = false after focus, want true")
	}
}

func TestResultEventAddsHistory(t *testing.T) {
	m, _ := newTestModel(t)

	res := runner.Result{
		DownloadMbps:     120,
		UploadMbps:       40,
		PingMs:           18,
		Quality:          "Excellent",
		QualityPct:       88,
		DownloadMeasured: true,
		UploadMeasured:   true,
		ServerHost:       "speed.example.com",
		Timestamp:        "2026-01-02T03:04:05.000Z",
	}
	updated, cmd := m.Update(EventMsg(runner.Event{Type: runner.EventResult, Phase: runner.PhaseDone, Progress: 100, Result: &res}))
	m = updated.(Model)

	if cmd == nil {
		t.Error("Update(EventMsg) returned no command, want to keep waiting for events")
	}
	if got := m.LatestResult(); got == nil || *got != res {
		t.Errorf("LatestResult() = %v, want %+v", got, res)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.currentView != HistoryView {
		t.Fatalf("currentView = %v, want History", m.currentView)
	}
	view := m.View()
	for _, want := range []string{"speed.example.com", "120 Mbps", "Excellent"} {
		if !strings.Contains(view, want) {
			t.Errorf("history view missing %q", want)
		}
	}
}

func TestQualityEventUpdatesAssessment(t *testing.T) {
	m, _ := newTestModel(t)

	a := quality.Assessment{Score: 45, Label: quality.Fair}
	updated, _ := m.Update(EventMsg(runner.Event{Type: runner.EventQuality, Quality: &a}))
	m = updated.(Model)

	if m.assessment != a {
		t.Errorf("assessment = %+v, want %+v", m.assessment, a)
	}
	if !strings.Contains(m.View(), "Fair") {
		t.Error("dashboard does not show the Fair label")
	}
}

func TestSampleEventShownWhileRunning(t *testing.T) {
	m, _ := newTestModel(t)
	m.state = runner.State{Phase: runner.PhaseDownload, Progress: 25, Running: true}

	updated, _ := m.Update(EventMsg(runner.Event{Type: runner.EventSample, Phase: runner.PhaseDownload, Value: 37}))
	m = updated.(Model)

	if !strings.Contains(m.View(), "~37 Mbps") {
		t.Error("dashboard does not show the simulated sample")
	}
}

func TestPushHistoryCaps(t *testing.T) {
	m, _ := newTestModel(t)
	for i := 0; i < maxHistory+10; i++ {
		m.pushHistory(runner.Result{DownloadMbps: float64(i), DownloadMeasured: true})
	}

	if len(m.history) != maxHistory {
		t.Fatalf("len(history) = %d, want %d", len(m.history), maxHistory)
	}
	if m.history[0].DownloadMbps != 10 {
		t.Errorf("oldest entry = %v, want 10", m.history[0].DownloadMbps)
	}
	if m.selectedIdx != maxHistory-1 {
		t.Errorf("selectedIdx = %d, want %d", m.selectedIdx, maxHistory-1)
	}
}

func TestDownloadSeriesSkipsSimulated(t *testing.T) {
	m, _ := newTestModel(t)
	m.pushHistory(runner.Result{DownloadMbps: 30, DownloadMeasured: false})
	m.pushHistory(runner.Result{DownloadMbps: 80, DownloadMeasured: true})

	series := m.downloadSeries()
	if len(series) != 2 || series[0] != 0 || series[1] != 80 {
		t.Errorf("downloadSeries() = %v, want [0 80]", series)
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
