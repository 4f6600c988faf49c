package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestLatencySamplerMeasure(t *testing.T) {
	var mu sync.Mutex
	tokens := make(map[string]bool)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		tokens[r.URL.Query().Get("_")] = true
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sampler := NewLatencySampler(server.Client())
	result := sampler.Measure(context.Background(), server.URL+"/ping", 5)

	if result.Samples != 5 {
		t.Errorf("Measure() Samples = %d, want 5", result.Samples)
	}
	if result.Failures != 0 {
		t.Errorf("Measure() Failures = %d, want 0", result.Failures)
	}
	if result.MedianMs <= 0 || result.MedianMs >= FailurePenaltyMs {
		t.Errorf("Measure() MedianMs = %v, want a real round trip", result.MedianMs)
	}
	if len(tokens) != 5 {
		t.Errorf("server saw %d distinct cache-bust tokens, want 5", len(tokens))
	}
}

func TestLatencySamplerErrorStatusCountsAsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	result := NewLatencySampler(server.Client()).Measure(context.Background(), server.URL, 3)
	if result.Failures != 0 {
		t.Errorf("Measure() Failures = %d, want 0 for a 404 response", result.Failures)
	}
	if result.Samples != 3 {
		t.Errorf("Measure() Samples = %d, want 3", result.Samples)
	}
}

func TestLatencySamplerFailurePenalty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	sampler := NewLatencySampler(&http.Client{Timeout: time.Second})
	result := sampler.Measure(context.Background(), target, 0)

	if result.Samples != DefaultLatencyCount {
		t.Errorf("Measure() Samples = %d, want %d", result.Samples, DefaultLatencyCount)
	}
	if result.Failures != DefaultLatencyCount {
		t.Errorf("Measure() Failures = %d, want %d", result.Failures, DefaultLatencyCount)
	}
	if result.MedianMs != FailurePenaltyMs {
		t.Errorf("Measure() MedianMs = %v, want %v", result.MedianMs, FailurePenaltyMs)
	}
	if result.MeanMs != FailurePenaltyMs {
		t.Errorf("Measure() MeanMs = %v, want %v", result.MeanMs, FailurePenaltyMs)
	}
}

func TestLatencySamplerEmptyTarget(t *testing.T) {
	result := NewLatencySampler(nil).Measure(context.Background(), "", 1)
	if result.Failures != 1 || result.MedianMs != FailurePenaltyMs {
		t.Errorf("Measure(\"\") = %+v, want one penalty sample", result)
	}
}
