package quality

import "math"

// Label is the discrete quality bucket derived from a score
type Label int

const (
	Poor Label = iota
	Fair
	Good
	Excellent
)

// String returns the display name of the label
func (l Label) String() string {
	switch l {
	case Excellent:
		return "Excellent"
	case Good:
		return "Good"
	case Fair:
		return "Fair"
	default:
		return "Poor"
	}
}

// Advice returns a short human-readable description of what the label means
func (l Label) Advice() string {
	switch l {
	case Excellent:
		return "Great connection for streaming and video calls."
	case Good:
		return "Should handle HD streaming and most tasks well."
	case Fair:
		return "Okay for browsing and SD streaming; may struggle with HD."
	default:
		return "Connection may be unstable. Try moving closer to your router."
	}
}

// MarshalText encodes the label by name so JSON and YAML output stay readable
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Tier groups labels into the three display colours
type Tier string

const (
	TierGood Tier = "good"
	TierFair Tier = "fair"
	TierPoor Tier = "poor"
)

// Assessment is a derived quality score and its label
type Assessment struct {
	Score int   `json:"score"`
	Label Label `json:"label"`
}

// Bars returns the signal-strength indicator, 1 to 4 bars
func (a Assessment) Bars() int {
	bars := int(math.Ceil(float64(a.Score) / 100 * 4))
	if bars < 1 {
		return 1
	}
	if bars > 4 {
		return 4
	}
	return bars
}

// Tier returns the colour tier of the assessment
func (a Assessment) Tier() Tier {
	switch a.Label {
	case Excellent, Good:
		return TierGood
	case Fair:
		return TierFair
	default:
		return TierPoor
	}
}

// Classify blends a downlink hint (60%) with an inverted latency term over a
// 0-200ms window (40%). Measured ping wins over the RTT hint when positive.
func Classify(downlinkMbps, rttMs, pingMs float64) Assessment {
	latency := 0.0
	switch {
	case pingMs > 0:
		latency = pingMs
	case rttMs > 0:
		latency = rttMs
	}

	bandwidth := clamp(downlinkMbps, 0, 100) / 100 * 0.6
	responsiveness := clamp(200-latency, 0, 200) / 200 * 0.4
	score := int(math.Round((bandwidth + responsiveness) * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Assessment{Score: score, Label: LabelFor(score)}
}

// LabelFor maps a score onto its label: 80 Excellent, 60 Good, 40 Fair
func LabelFor(score int) Label {
	switch {
	case score >= 80:
		return Excellent
	case score >= 60:
		return Good
	case score >= 40:
		return Fair
	default:
		return Poor
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
