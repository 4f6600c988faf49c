package runner

import (
	"fmt"
	"net/url"
	"time"

	"github.com/wellsgz/linkcheck/internal/config"
	"github.com/wellsgz/linkcheck/internal/meter"
)

// Options are the per-run test parameters
type Options struct {
	DownloadURL  string
	UploadURL    string
	LatencyURL   string
	LatencyCount int
	Duration     time.Duration
	Streams      int
	Passes       int
	Warmup       time.Duration
	BucketWidth  time.Duration
	Mode         meter.Mode
}

// OptionsFromConfig maps the test, latency sections of cfg onto Options
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	mode, err := meter.ParseMode(cfg.Test.Percentile)
	if err != nil {
		return Options{}, fmt.Errorf("test.percentile: %w", err)
	}
	return Options{
		DownloadURL:  cfg.Test.DownloadURL,
		UploadURL:    cfg.Test.UploadURL,
		LatencyURL:   cfg.LatencyTarget(),
		LatencyCount: cfg.Latency.Count,
		Duration:     cfg.Test.Duration,
		Streams:      cfg.Test.ParallelStreams,
		Passes:       cfg.Test.Passes,
		Warmup:       cfg.Test.Warmup,
		BucketWidth:  cfg.Test.BucketWidth,
		Mode:         mode,
	}, nil
}

// ServerHost returns the display host of the first configured target URL.
// Loopback hosts read as "Local test server"; unparsable URLs give "".
func ServerHost(downloadURL, uploadURL string) string {
	raw := downloadURL
	if raw == "" {
		raw = uploadURL
	}
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	switch host {
	case "":
		return ""
	case "localhost", "127.0.0.1":
		return "Local test server"
	default:
		return host
	}
}
