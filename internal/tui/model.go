package tui

import (
	"context"

	"github.com/wellsgz/linkcheck/internal/hint"
	"github.com/wellsgz/linkcheck/internal/probe"
	"github.com/wellsgz/linkcheck/internal/quality"
	"github.com/wellsgz/linkcheck/internal/runner"
)

// maxHistory bounds the number of completed runs kept for the history view
const maxHistory = 50

// View represents the current view mode
type View int

const (
	DashboardView View = iota
	HistoryView
)

// String returns a display name for the view
func (v View) String() string {
	if v == HistoryView {
		return "History"
	}
	return "Dashboard"
}

// Model holds all application state
type Model struct {
	// View state
	currentView View
	selectedIdx int

	// Dependencies
	ctx        context.Context
	runner     *runner.Runner
	events     <-chan runner.Event
	visibility *probe.Visibility
	hints      hint.Source

	// Latest runner snapshot
	state      runner.State
	assessment quality.Assessment
	sample     float64 // last simulated ramp value, 0 when none
	history    []runner.Result

	// Whether the terminal has focus; throughput bucketing pauses without it
	focused bool

	// UI state
	width  int
	height int
	ready  bool

	// API address for display, empty when no server runs
	apiAddr string

	err error
}

// NewModel creates a Model bound to the runner. Runs started from the TUI use ctx.
func NewModel(ctx context.Context, r *runner.Runner, vis *probe.Visibility, hints hint.Source, apiAddr string) Model {
	m := Model{
		currentView: DashboardView,
		ctx:         ctx,
		runner:      r,
		events:      r.Subscribe(),
		visibility:  vis,
		hints:       hints,
		state:       r.State(),
		assessment:  r.Quality(),
		focused:     true,
		apiAddr:     apiAddr,
	}
	if last, ok := r.LastResult(); ok {
		m.history = append(m.history, last)
	}
	return m
}

// SelectedResult returns the history entry under the cursor
func (m Model) SelectedResult() *runner.Result {
	if m.selectedIdx >= 0 && m.selectedIdx < len(m.history) {
		return &m.history[m.selectedIdx]
	}
	return nil
}

// LatestResult returns the most recent completed run
func (m Model) LatestResult() *runner.Result {
	if len(m.history) == 0 {
		return nil
	}
	return &m.history[len(m.history)-1]
}

// applyEvent folds a runner event into the model
func (m *Model) applyEvent(ev runner.Event) {
	switch ev.Type {
	case runner.EventPhase:
		m.state = m.runner.State()
		m.sample = 0
	case runner.EventSample:
		m.sample = ev.Value
	case runner.EventQuality:
		if ev.Quality != nil {
			m.assessment = *ev.Quality
		}
	case runner.EventResult:
		m.state = m.runner.State()
		m.sample = 0
		if ev.Result != nil {
			m.pushHistory(*ev.Result)
		}
	}
}

// pushHistory appends a result, dropping the oldest beyond maxHistory
func (m *Model) pushHistory(res runner.Result) {
	m.history = append(m.history, res)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.selectedIdx = len(m.history) - 1
}

// downloadSeries returns download figures across runs; simulated runs read as 0
func (m Model) downloadSeries() []float64 {
	values := make([]float64, len(m.history))
	for i, res := range m.history {
		if res.DownloadMeasured {
			values[i] = res.DownloadMbps
		}
	}
	return values
}

// setFocus records terminal focus and gates throughput bucketing with it
func (m *Model) setFocus(focused bool) {
	m.focused = focused
	if m.visibility != nil {
		m.visibility.SetVisible(focused)
	}
}

func (m Model) currentHint() hint.Info {
	if m.hints == nil {
		return hint.Info{}
	}
	return m.hints.Current()
}
