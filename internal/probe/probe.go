package probe

import (
	"context"
	"net/http"
	"time"

	"github.com/wellsgz/linkcheck/internal/meter"
)

const (
	// minElapsed floors the probe duration so a pathologically fast failure
	// cannot blow up the whole-run average
	minElapsed = 200 * time.Millisecond

	// readChunkSize is the buffer used to drain download bodies
	readChunkSize = 32 * 1024

	// UploadChunkSize is the size of each generated upload chunk
	UploadChunkSize = 64 * 1024
)

// Direction identifies the throughput probe variant
type Direction string

const (
	DirectionDownload Direction = "download"
	DirectionUpload   Direction = "upload"
)

// Options configures one throughput probe invocation
type Options struct {
	URL         string
	Duration    time.Duration
	Streams     int
	Warmup      time.Duration
	BucketWidth time.Duration
	Mode        meter.Mode

	// Visible reports whether bytes should be bucketed right now; nil means always
	Visible func() bool
}

// Result is the outcome of one throughput probe invocation
type Result struct {
	Mbps          float64       `json:"mbps"`
	Elapsed       time.Duration `json:"-"`
	ElapsedSecs   float64       `json:"elapsed_secs"`
	TotalBytes    int64         `json:"total_bytes"`
	Completed     bool          `json:"completed"`
	Streams       int           `json:"streams"`
	FailedStreams int           `json:"failed_streams"`
}

// Probe is implemented by the download and upload variants
type Probe interface {
	// Direction returns download or upload
	Direction() Direction

	// Run drives the concurrent transfer and returns the reduced rate
	Run(ctx context.Context, opts Options) (Result, error)
}

// streamCount applies the minimum-one clamp
func streamCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// UploadStreams returns the upload parallelism for a download stream count
func UploadStreams(downloadStreams int) int {
	return streamCount(downloadStreams / 2)
}

// defaultClient returns client, or a plain client without an overall timeout
// so long transfers are bounded only by each stream's own deadline
func defaultClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{}
}
