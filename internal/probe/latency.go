package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/wellsgz/linkcheck/internal/logging"
	"github.com/wellsgz/linkcheck/internal/metrics"
)

const (
	// DefaultLatencyCount is the number of sequential latency requests
	DefaultLatencyCount = 5

	// FailurePenaltyMs replaces the duration of a failed latency request
	FailurePenaltyMs = 1000.0
)

// LatencyResult is the reduction of one latency burst
type LatencyResult struct {
	MedianMs float64 `json:"median_ms"`
	MeanMs   float64 `json:"mean_ms"`
	Samples  int     `json:"samples"`
	Failures int     `json:"failures"`
}

// LatencySampler times lightweight sequential HTTP round trips
type LatencySampler struct {
	client *http.Client
}

// NewLatencySampler creates a sampler; the client's own timeout is the only
// timeout applied to each request
func NewLatencySampler(client *http.Client) *LatencySampler {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &LatencySampler{client: client}
}

// Measure issues count sequential cache-busted GETs against target and
// reduces their wall-clock durations. Any HTTP response counts as success;
// a transport failure is recorded as a 1000ms penalty.
func (s *LatencySampler) Measure(ctx context.Context, target string, count int) LatencyResult {
	if count <= 0 {
		count = DefaultLatencyCount
	}

	samples := make([]float64, 0, count)
	failures := 0
	for i := 0; i < count; i++ {
		ms, err := s.once(ctx, CacheBust(target, Token(i)))
		if err != nil {
			logging.Debug("Latency", "probe failed", map[string]string{"error": err.Error()})
			metrics.LatencyPenalties.Inc()
			failures++
			ms = FailurePenaltyMs
		}
		samples = append(samples, ms)
	}

	return LatencyResult{
		MedianMs: calculateMedian(samples),
		MeanMs:   calculateMean(samples),
		Samples:  len(samples),
		Failures: failures,
	}
}

// once times a single request from send to settle
func (s *LatencySampler) once(ctx context.Context, target string) (float64, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return float64(time.Since(start).Microseconds()) / 1000.0, nil
}

// calculateMedian returns the lower-middle element of the sorted samples,
// index floor((n-1)/2), so even counts never average two observations
func calculateMedian(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	// Make a copy to avoid modifying the original
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	return sorted[(len(sorted)-1)/2]
}

// calculateMean returns the arithmetic mean
func calculateMean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range samples {
		sum += v
	}
	return sum / float64(len(samples))
}
