package meter

import (
	"math/rand"
	"sync"
	"testing"
	"time"
)

func TestReduceEqualBuckets(t *testing.T) {
	agg := New(250 * time.Millisecond)
	for i := 0; i < 4; i++ {
		agg.Record(time.Duration(i)*250*time.Millisecond+10*time.Millisecond, 1_000_000)
	}

	if got := agg.Buckets(); got != 4 {
		t.Fatalf("Buckets() = %d, want 4", got)
	}
	if got := agg.Reduce(0, ModeP95, time.Second); got != 32 {
		t.Errorf("Reduce(p95) = %v, want 32", got)
	}
	if got := agg.Reduce(0, ModePeak, time.Second); got != 32 {
		t.Errorf("Reduce(peak) = %v, want 32", got)
	}
}

func TestReduceModes(t *testing.T) {
	width := 100 * time.Millisecond
	agg := New(width)
	// bucket i carries (i+1) * 125000 bytes -> (i+1) * 10 Mbps
	for i := 0; i < 20; i++ {
		agg.Record(time.Duration(i)*width, int64(i+1)*125_000)
	}

	tests := []struct {
		name   string
		warmup time.Duration
		mode   Mode
		want   float64
	}{
		// 20 rates 10..200, floor(0.95*19)=18 -> 190
		{"p95 no warmup", 0, ModeP95, 190},
		{"peak no warmup", 0, ModePeak, 200},
		// warmup excludes buckets 0..9, rates 110..200, floor(0.95*9)=8 -> 190
		{"p95 with warmup", time.Second, ModeP95, 190},
		{"peak with warmup", time.Second, ModePeak, 200},
		// warmup 1.95s -> cutoff 19 -> single bucket of 200
		{"p95 single bucket left", 1950 * time.Millisecond, ModeP95, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agg.Reduce(tt.warmup, tt.mode, 2*time.Second)
			if !approxEqual(got, tt.want) {
				t.Errorf("Reduce() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReduceFallback(t *testing.T) {
	tests := []struct {
		name    string
		width   time.Duration
		warmup  time.Duration
		elapsed time.Duration
	}{
		{"warmup equals elapsed", 250 * time.Millisecond, time.Second, time.Second},
		{"warmup beyond elapsed", 250 * time.Millisecond, 5 * time.Second, 1500 * time.Millisecond},
		{"wide buckets", time.Second, 3 * time.Second, 2 * time.Second},
		{"narrow buckets", 10 * time.Millisecond, 800 * time.Millisecond, 700 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := New(tt.width)
			var total int64
			for off := time.Duration(0); off < tt.elapsed; off += tt.width / 2 {
				agg.Record(off, 4096)
				total += 4096
			}
			want := float64(total) * 8 / 1e6 / tt.elapsed.Seconds()
			if got := agg.Reduce(tt.warmup, ModeP95, tt.elapsed); got != want {
				t.Errorf("Reduce() = %v, want fallback %v", got, want)
			}
		})
	}
}

func TestReduceCountsSkippedBytesInFallback(t *testing.T) {
	agg := New(250 * time.Millisecond)
	agg.Skip(1_000_000)

	if got := agg.Buckets(); got != 0 {
		t.Fatalf("Buckets() = %d, want 0", got)
	}
	if got := agg.Reduce(0, ModeP95, time.Second); got != 8 {
		t.Errorf("Reduce() = %v, want 8", got)
	}
	if got := agg.Reduce(0, ModeP95, 0); got != 0 {
		t.Errorf("Reduce() with zero elapsed = %v, want 0", got)
	}
}

func TestReduceOrderIndependent(t *testing.T) {
	type event struct {
		at time.Duration
		n  int64
	}
	rng := rand.New(rand.NewSource(42))
	events := make([]event, 200)
	for i := range events {
		events[i] = event{
			at: time.Duration(rng.Intn(3000)) * time.Millisecond,
			n:  int64(rng.Intn(64*1024) + 1),
		}
	}

	reference := New(250 * time.Millisecond)
	for _, e := range events {
		reference.Record(e.at, e.n)
	}
	want := reference.Reduce(500*time.Millisecond, ModeP95, 3*time.Second)

	for trial := 0; trial < 10; trial++ {
		shuffled := make([]event, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		agg := New(250 * time.Millisecond)
		for _, e := range shuffled {
			agg.Record(e.at, e.n)
		}
		if got := agg.Reduce(500*time.Millisecond, ModeP95, 3*time.Second); got != want {
			t.Fatalf("trial %d: Reduce() = %v, want %v", trial, got, want)
		}
	}
}

func TestRecordConcurrent(t *testing.T) {
	agg := New(100 * time.Millisecond)
	var wg sync.WaitGroup
	for s := 0; s < 8; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				agg.Record(time.Duration(i%10)*100*time.Millisecond, 10)
			}
		}()
	}
	wg.Wait()

	if got := agg.TotalBytes(); got != 80_000 {
		t.Errorf("TotalBytes() = %d, want 80000", got)
	}
	if got := agg.Buckets(); got != 10 {
		t.Errorf("Buckets() = %d, want 10", got)
	}
}

func TestRecordIgnoresNonPositive(t *testing.T) {
	agg := New(0)
	agg.Record(time.Second, 0)
	agg.Record(time.Second, -5)
	agg.Record(-time.Second, 100)

	if agg.BucketWidth() != DefaultBucketWidth {
		t.Errorf("BucketWidth() = %v, want %v", agg.BucketWidth(), DefaultBucketWidth)
	}
	if got := agg.TotalBytes(); got != 100 {
		t.Errorf("TotalBytes() = %d, want 100", got)
	}
	if got := agg.Buckets(); got != 1 {
		t.Errorf("Buckets() = %d, want 1 (negative offset clamps to bucket 0)", got)
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 95, 0},
		{"single", []float64{7}, 95, 7},
		{"two values", []float64{1, 2}, 95, 1},
		{"ten values", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 95, 9},
		{"median index", []float64{1, 2, 3, 4}, 50, 2},
		{"max", []float64{1, 2, 3}, 100, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentile(tt.sorted, tt.p); got != tt.want {
				t.Errorf("Percentile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"p95", ModeP95, false},
		{"PEAK", ModePeak, false},
		{"", ModeP95, false},
		{"p99", ModeP95, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func approxEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
