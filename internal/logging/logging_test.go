package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	SetFormat(FormatJSON)
	defer func() {
		SetFormat(FormatText)
		SetWriter(os.Stderr)
	}()

	Info("Runner", "run started", map[string]int{"passes": 2})
	Error("Provider", "lookup failed", errors.New("timeout"))
	PhaseResult("download", 42.5, "Mbps", true)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}

	var info LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &info); err != nil {
		t.Fatalf("Unmarshal(info) error = %v", err)
	}
	if info.Level != "info" || info.Component != "Runner" || info.Message != "run started" {
		t.Errorf("info entry = %+v", info)
	}

	var errEntry LogEntry
	if err := json.Unmarshal([]byte(lines[1]), &errEntry); err != nil {
		t.Fatalf("Unmarshal(error) error = %v", err)
	}
	if errEntry.Level != "error" {
		t.Errorf("error entry level = %q, want error", errEntry.Level)
	}

	var phase PhaseLogEntry
	if err := json.Unmarshal([]byte(lines[2]), &phase); err != nil {
		t.Fatalf("Unmarshal(phase) error = %v", err)
	}
	if phase.Phase != "download" || phase.Value != 42.5 || !phase.Measured {
		t.Errorf("phase entry = %+v", phase)
	}
}

func TestDebugGated(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	SetFormat(FormatJSON)
	defer func() {
		SetFormat(FormatText)
		SetWriter(os.Stderr)
		SetDebug(false)
	}()

	Debug("Probe", "hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("Debug() wrote output while disabled: %q", buf.String())
	}

	SetDebug(true)
	Debug("Probe", "shown", nil)
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Errorf("Debug() output = %q, want debug entry", buf.String())
	}
}
