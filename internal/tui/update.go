package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wellsgz/linkcheck/internal/runner"
)

// Message types
type (
	// EventMsg is sent when the runner broadcasts an event
	EventMsg runner.Event

	// StartedMsg reports the outcome of a start request
	StartedMsg struct{ Started bool }

	// ErrMsg is sent when an error occurs
	ErrMsg struct{ Err error }
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.FocusMsg:
		m.setFocus(true)
		return m, nil

	case tea.BlurMsg:
		m.setFocus(false)
		return m, nil

	case EventMsg:
		m.applyEvent(runner.Event(msg))
		return m, waitForEvent(m.events)

	case StartedMsg:
		m.state = m.runner.State()
		if msg.Started {
			m.err = nil
		}
		return m, nil

	case ErrMsg:
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r", "enter", " ":
		return m, startRun(m)

	case "tab":
		if m.currentView == DashboardView {
			m.currentView = HistoryView
		} else {
			m.currentView = DashboardView
		}

	case "esc":
		m.currentView = DashboardView

	case "up", "k":
		if m.currentView == HistoryView && m.selectedIdx > 0 {
			m.selectedIdx--
		}

	case "down", "j":
		if m.currentView == HistoryView && m.selectedIdx < len(m.history)-1 {
			m.selectedIdx++
		}

	case "home":
		m.selectedIdx = 0

	case "end":
		m.selectedIdx = len(m.history) - 1
	}

	return m, nil
}

// startRun asks the runner for a new run; it is a no-op while one is active
func startRun(m Model) tea.Cmd {
	return func() tea.Msg {
		return StartedMsg{Started: m.runner.Start(m.ctx)}
	}
}

// waitForEvent creates a command that waits for the next runner event
func waitForEvent(ch <-chan runner.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return ErrMsg{Err: nil} // Channel closed
		}
		return EventMsg(ev)
	}
}
