package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wellsgz/linkcheck/internal/hint"
	"github.com/wellsgz/linkcheck/internal/probe"
	"github.com/wellsgz/linkcheck/internal/runner"
)

// Init initializes the model and returns initial commands
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Options configures the TUI program
type Options struct {
	APIAddr   string // shown in the header when the API server is running
	AutoStart bool   // start a run as soon as the TUI opens
}

// Run starts the TUI application and blocks until the user quits
func Run(ctx context.Context, r *runner.Runner, vis *probe.Visibility, hints hint.Source, opts Options) error {
	model := NewModel(ctx, r, vis, hints, opts.APIAddr)
	defer r.Unsubscribe(model.events)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),   // Use alternate screen buffer
		tea.WithReportFocus(), // Focus changes drive the visibility gate
		tea.WithContext(ctx),
	)

	if opts.AutoStart {
		go p.Send(startRun(model)())
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
