package runner

import (
	"fmt"
	"time"

	"github.com/wellsgz/linkcheck/internal/quality"
)

// Phase is a step of the test state machine
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLatency
	PhaseDownload
	PhaseUpload
	PhaseFinalize
	PhaseDone
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseLatency:
		return "latency"
	case PhaseDownload:
		return "download"
	case PhaseUpload:
		return "upload"
	case PhaseFinalize:
		return "finalize"
	case PhaseDone:
		return "done"
	default:
		return "idle"
	}
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := PhaseIdle; candidate <= PhaseDone; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// weight is the share of overall progress a phase contributes when it finishes
func (p Phase) weight() float64 {
	switch p {
	case PhaseLatency:
		return 0.25
	case PhaseDownload:
		return 0.35
	case PhaseUpload:
		return 0.30
	case PhaseFinalize:
		return 0.10
	default:
		return 0
	}
}

// State is a snapshot of the runner
type State struct {
	Phase            Phase   `json:"phase"`
	Progress         int     `json:"progress"`
	Running          bool    `json:"running"`
	PingMs           float64 `json:"ping_ms"`
	DownloadMbps     float64 `json:"download_mbps"`
	UploadMbps       float64 `json:"upload_mbps"`
	DownloadMeasured bool    `json:"download_measured"`
	UploadMeasured   bool    `json:"upload_measured"`
}

// Result is the immutable record of one completed run. Download and upload
// figures are placeholders, not measurements, when their Measured flag is false.
type Result struct {
	DownloadMbps     float64 `json:"download_mbps" yaml:"download_mbps"`
	UploadMbps       float64 `json:"upload_mbps" yaml:"upload_mbps"`
	PingMs           float64 `json:"ping_ms" yaml:"ping_ms"`
	PingMeanMs       float64 `json:"ping_mean_ms" yaml:"ping_mean_ms"`
	Quality          string  `json:"quality" yaml:"quality"`
	QualityPct       int     `json:"quality_pct" yaml:"quality_pct"`
	SignalBars       int     `json:"signal_bars" yaml:"signal_bars"`
	DownloadMeasured bool    `json:"download_measured" yaml:"download_measured"`
	UploadMeasured   bool    `json:"upload_measured" yaml:"upload_measured"`
	EffectiveType    string  `json:"effective_type,omitempty" yaml:"effective_type,omitempty"`
	RTT              float64 `json:"rtt,omitempty" yaml:"rtt,omitempty"`
	Downlink         float64 `json:"downlink,omitempty" yaml:"downlink,omitempty"`
	Provider         string  `json:"provider,omitempty" yaml:"provider,omitempty"`
	IP               string  `json:"ip,omitempty" yaml:"ip,omitempty"`
	ServerHost       string  `json:"server_host,omitempty" yaml:"server_host,omitempty"`
	Timestamp        string  `json:"timestamp" yaml:"timestamp"`
}

// EventType identifies a runner event
type EventType string

const (
	EventPhase   EventType = "phase"
	EventSample  EventType = "sample"
	EventQuality EventType = "quality"
	EventResult  EventType = "result"
)

// Event is broadcast to subscribers as the run progresses
type Event struct {
	Type      EventType           `json:"type"`
	Phase     Phase               `json:"phase"`
	Progress  int                 `json:"progress"`
	Value     float64             `json:"value,omitempty"` // simulated ramp value for sample events
	Quality   *quality.Assessment `json:"quality,omitempty"`
	Result    *Result             `json:"result,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}
