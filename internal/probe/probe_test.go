package probe

import (
	"testing"
)

func TestCalculateMedian(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{
			name:    "empty",
			samples: []float64{},
			want:    0,
		},
		{
			name:    "single value",
			samples: []float64{10},
			want:    10,
		},
		{
			name:    "odd count",
			samples: []float64{10, 20, 30},
			want:    20,
		},
		{
			name:    "even count takes lower middle",
			samples: []float64{10, 20, 30, 40},
			want:    20,
		},
		{
			name:    "two values",
			samples: []float64{7, 3},
			want:    3,
		},
		{
			name:    "unsorted input",
			samples: []float64{30, 10, 20},
			want:    20,
		},
		{
			name:    "default burst with one penalty",
			samples: []float64{12, 1000, 11, 14, 13},
			want:    13,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateMedian(tt.samples)
			if got != tt.want {
				t.Errorf("calculateMedian() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateMedianKeepsInput(t *testing.T) {
	samples := []float64{3, 1, 2}
	calculateMedian(samples)
	if samples[0] != 3 || samples[1] != 1 || samples[2] != 2 {
		t.Errorf("calculateMedian() modified its input: %v", samples)
	}
}

func TestCalculateMean(t *testing.T) {
	if got := calculateMean(nil); got != 0 {
		t.Errorf("calculateMean(nil) = %v, want 0", got)
	}
	if got := calculateMean([]float64{10, 20, 30, 1000}); got != 265 {
		t.Errorf("calculateMean() = %v, want 265", got)
	}
}

func TestUploadStreams(t *testing.T) {
	tests := []struct {
		download int
		want     int
	}{
		{8, 4},
		{6, 3},
		{7, 3},
		{2, 1},
		{1, 1},
		{0, 1},
		{-3, 1},
	}

	for _, tt := range tests {
		if got := UploadStreams(tt.download); got != tt.want {
			t.Errorf("UploadStreams(%d) = %d, want %d", tt.download, got, tt.want)
		}
	}
}

func TestCacheBust(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		token string
		want  string
	}{
		{"no query", "https://example.com/down", "1-0-x", "https://example.com/down?_=1-0-x"},
		{"existing query", "https://speed.example.com/__down?bytes=1000", "t", "https://speed.example.com/__down?bytes=1000&_=t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CacheBust(tt.url, tt.token); got != tt.want {
				t.Errorf("CacheBust() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := Token(i % 4)
		if seen[tok] {
			t.Fatalf("Token() returned duplicate %q", tok)
		}
		seen[tok] = true
	}
}

func TestVisibility(t *testing.T) {
	var nilGate *Visibility
	if !nilGate.Visible() {
		t.Error("nil Visibility should report visible")
	}

	v := NewVisibility()
	if !v.Visible() {
		t.Error("new Visibility should start visible")
	}
	v.SetVisible(false)
	if v.Visible() {
		t.Error("Visible() = true after SetVisible(false)")
	}
	v.SetVisible(true)
	if !v.Visible() {
		t.Error("Visible() = false after SetVisible(true)")
	}
}
