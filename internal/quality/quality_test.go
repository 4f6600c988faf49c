package quality

import (
	"encoding/json"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		downlink  float64
		rtt       float64
		ping      float64
		wantScore int
		wantLabel Label
	}{
		{"no inputs", 0, 0, 0, 40, Fair},
		{"perfect", 100, 0, 1, 100, Excellent},
		{"saturated downlink", 500, 0, 0, 100, Excellent},
		{"ping preferred over rtt", 50, 10, 200, 30, Poor},
		{"rtt used without ping", 50, 100, 0, 50, Fair},
		{"high latency clamps to zero", 0, 0, 5000, 0, Poor},
		{"mid", 60, 0, 50, 66, Good},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.downlink, tt.rtt, tt.ping)
			if got.Score != tt.wantScore {
				t.Errorf("Classify() score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.Label != tt.wantLabel {
				t.Errorf("Classify() label = %v, want %v", got.Label, tt.wantLabel)
			}
		})
	}
}

func TestClassifyScoreBounded(t *testing.T) {
	values := []float64{0, 0.5, 1, 10, 99.9, 100, 150, 199, 200, 250, 1e6}
	for _, d := range values {
		for _, r := range values {
			for _, p := range values {
				got := Classify(d, r, p)
				if got.Score < 0 || got.Score > 100 {
					t.Fatalf("Classify(%v, %v, %v) score = %d, out of range", d, r, p, got.Score)
				}
				if got.Label != LabelFor(got.Score) {
					t.Fatalf("Classify(%v, %v, %v) label = %v, want %v", d, r, p, got.Label, LabelFor(got.Score))
				}
			}
		}
	}
}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		score int
		want  Label
	}{
		{100, Excellent},
		{80, Excellent},
		{79, Good},
		{60, Good},
		{59, Fair},
		{40, Fair},
		{39, Poor},
		{0, Poor},
	}

	for _, tt := range tests {
		if got := LabelFor(tt.score); got != tt.want {
			t.Errorf("LabelFor(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestBars(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{0, 1},
		{10, 1},
		{25, 1},
		{26, 2},
		{50, 2},
		{51, 3},
		{75, 3},
		{76, 4},
		{100, 4},
	}

	for _, tt := range tests {
		a := Assessment{Score: tt.score, Label: LabelFor(tt.score)}
		if got := a.Bars(); got != tt.want {
			t.Errorf("Assessment{Score: %d}.Bars() = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		label Label
		want  Tier
	}{
		{Excellent, TierGood},
		{Good, TierGood},
		{Fair, TierFair},
		{Poor, TierPoor},
	}

	for _, tt := range tests {
		if got := (Assessment{Label: tt.label}).Tier(); got != tt.want {
			t.Errorf("Tier() for %v = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestLabelJSON(t *testing.T) {
	data, err := json.Marshal(Assessment{Score: 85, Label: Excellent})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"score":85,"label":"Excellent"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
