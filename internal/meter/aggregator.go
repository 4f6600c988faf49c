package meter

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultBucketWidth is used when an aggregator is created with a non-positive width
const DefaultBucketWidth = 250 * time.Millisecond

// Mode selects how per-bucket rates are reduced to a single figure
type Mode int

const (
	// ModeP95 picks the 95th percentile bucket rate
	ModeP95 Mode = iota
	// ModePeak picks the highest bucket rate
	ModePeak
)

// String returns the config name of the mode
func (m Mode) String() string {
	switch m {
	case ModePeak:
		return "peak"
	default:
		return "p95"
	}
}

// ParseMode converts a config value ("p95" or "peak") into a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p95", "":
		return ModeP95, nil
	case "peak":
		return ModePeak, nil
	default:
		return ModeP95, fmt.Errorf("unknown percentile mode %q (use p95 or peak)", s)
	}
}

// Aggregator sums transferred bytes into fixed-width time buckets.
// All methods are safe for concurrent use by multiple streams.
type Aggregator struct {
	width   time.Duration
	buckets map[int64]int64
	total   int64
	mu      sync.Mutex
}

// New creates an aggregator with the given bucket width
func New(bucketWidth time.Duration) *Aggregator {
	if bucketWidth <= 0 {
		bucketWidth = DefaultBucketWidth
	}
	return &Aggregator{
		width:   bucketWidth,
		buckets: make(map[int64]int64),
	}
}

// BucketWidth returns the configured bucket width
func (a *Aggregator) BucketWidth() time.Duration {
	return a.width
}

// Record adds n bytes observed at the given offset from the probe start
func (a *Aggregator) Record(elapsed time.Duration, n int64) {
	if n <= 0 {
		return
	}
	idx := a.index(elapsed)

	a.mu.Lock()
	a.buckets[idx] += n
	a.total += n
	a.mu.Unlock()
}

// Skip counts n bytes toward the run total without bucket accounting
func (a *Aggregator) Skip(n int64) {
	if n <= 0 {
		return
	}
	a.mu.Lock()
	a.total += n
	a.mu.Unlock()
}

// TotalBytes returns every byte seen, bucketed or skipped
func (a *Aggregator) TotalBytes() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

// Buckets returns the number of populated buckets
func (a *Aggregator) Buckets() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buckets)
}

// Reduce converts every bucket at or past the warm-up cutoff to Mbps and
// reduces them with mode. When no bucket survives the cutoff it falls back to
// the whole-run average over elapsed.
func (a *Aggregator) Reduce(warmup time.Duration, mode Mode, elapsed time.Duration) float64 {
	widthMs := durationMs(a.width)
	cutoff := int64(0)
	if warmup > 0 {
		cutoff = int64(math.Floor(durationMs(warmup) / widthMs))
	}

	a.mu.Lock()
	rates := make([]float64, 0, len(a.buckets))
	for idx, bytes := range a.buckets {
		if idx >= cutoff {
			rates = append(rates, Mbps(bytes, a.width))
		}
	}
	total := a.total
	a.mu.Unlock()

	if len(rates) == 0 {
		if elapsed <= 0 {
			return 0
		}
		return float64(total) * 8 / 1e6 / elapsed.Seconds()
	}

	sort.Float64s(rates)
	if mode == ModePeak {
		return rates[len(rates)-1]
	}
	return Percentile(rates, 95)
}

// index maps an elapsed offset to its bucket key; negative offsets land in bucket 0
func (a *Aggregator) index(elapsed time.Duration) int64 {
	if elapsed < 0 {
		elapsed = 0
	}
	return int64(math.Floor(durationMs(elapsed) / durationMs(a.width)))
}

// Mbps converts a byte count over a window into megabits per second
func Mbps(bytes int64, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	return float64(bytes) * 8 / 1e6 / window.Seconds()
}

// Percentile returns the p-th percentile of sorted values using the
// floor of p/100*(n-1) as the index (no interpolation)
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Floor(p / 100 * float64(n-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
