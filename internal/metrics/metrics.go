package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts completed test runs
	RunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkcheck_runs_total",
		Help: "Total number of completed test runs",
	})

	// RunsRejected counts start requests dropped because a run was active
	RunsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkcheck_runs_rejected_total",
		Help: "Total number of start requests ignored while a run was active",
	})

	// RunActive is 1 while a run is in progress
	RunActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkcheck_run_active",
		Help: "Whether a test run is currently in progress (0 or 1)",
	})

	// ThroughputMbps holds the last reported throughput per direction
	ThroughputMbps = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "linkcheck_throughput_mbps",
		Help: "Last reported throughput in Mbps",
	}, []string{"direction", "source"})

	// PingMs holds the last measured median latency
	PingMs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkcheck_ping_ms",
		Help: "Last measured median latency in milliseconds",
	})

	// QualityScore holds the last quality score (0-100)
	QualityScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkcheck_quality_score",
		Help: "Last composite quality score (0-100)",
	})

	// BytesTransferred counts payload bytes moved by throughput probes
	BytesTransferred = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcheck_bytes_transferred_total",
		Help: "Total payload bytes moved by throughput probes",
	}, []string{"direction"})

	// StreamFailures counts throughput streams that ended in an error
	StreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcheck_stream_failures_total",
		Help: "Total number of throughput streams that failed",
	}, []string{"direction"})

	// LatencyPenalties counts latency probes replaced by the failure penalty
	LatencyPenalties = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkcheck_latency_penalties_total",
		Help: "Total number of latency probes that failed and were recorded as a penalty",
	})

	// ProviderLookups counts ISP lookups by outcome
	ProviderLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcheck_provider_lookups_total",
		Help: "Total number of provider lookups by result",
	}, []string{"result"})
)

// RecordThroughput sets the throughput gauge; source is "measured" or "simulated"
func RecordThroughput(direction string, mbps float64, measured bool) {
	source := "simulated"
	if measured {
		source = "measured"
	}
	ThroughputMbps.WithLabelValues(direction, source).Set(mbps)
}

// RecordStreamFailure increments the failure counter for a direction
func RecordStreamFailure(direction string) {
	StreamFailures.WithLabelValues(direction).Inc()
}

// RecordBytes adds n payload bytes for a direction
func RecordBytes(direction string, n int64) {
	if n > 0 {
		BytesTransferred.WithLabelValues(direction).Add(float64(n))
	}
}

// RecordProviderLookup increments the lookup counter; result is "primary", "fallback" or "failed"
func RecordProviderLookup(result string) {
	ProviderLookups.WithLabelValues(result).Inc()
}

// SetRunActive flips the active gauge
func SetRunActive(active bool) {
	if active {
		RunActive.Set(1)
	} else {
		RunActive.Set(0)
	}
}
