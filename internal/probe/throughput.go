package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wellsgz/linkcheck/internal/logging"
	"github.com/wellsgz/linkcheck/internal/meter"
	"github.com/wellsgz/linkcheck/internal/metrics"
)

// session is the state shared by every stream of one probe invocation
type session struct {
	url      string
	start    time.Time
	deadline time.Time
	agg      *meter.Aggregator
	visible  func() bool
}

// observe accounts n bytes that just crossed the wire
func (s *session) observe(n int) {
	if n <= 0 {
		return
	}
	if s.visible == nil || s.visible() {
		s.agg.Record(time.Since(s.start), int64(n))
	} else {
		s.agg.Skip(int64(n))
	}
}

// expired reports whether the probe window has closed
func (s *session) expired() bool {
	return !time.Now().Before(s.deadline)
}

// streamFunc runs one transfer; ctx carries the stream's own deadline
type streamFunc func(ctx context.Context, index int, s *session) error

// runStreams fans out max(1, opts.Streams) transfers, joins them, and reduces
// the shared aggregator. Individual stream failures never fail the probe.
func runStreams(ctx context.Context, dir Direction, opts Options, stream streamFunc) (Result, error) {
	if err := validateURL(opts.URL); err != nil {
		return Result{}, err
	}
	if opts.Duration <= 0 {
		return Result{}, fmt.Errorf("probe duration must be positive, got %s", opts.Duration)
	}

	streams := streamCount(opts.Streams)
	start := time.Now()
	sess := &session{
		url:      opts.URL,
		start:    start,
		deadline: start.Add(opts.Duration),
		agg:      meter.New(opts.BucketWidth),
		visible:  opts.Visible,
	}

	var failed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < streams; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			streamCtx, cancel := context.WithDeadline(ctx, sess.deadline)
			defer cancel()

			if err := stream(streamCtx, i, sess); err != nil && !isDeadline(err, sess) {
				failed.Add(1)
				metrics.RecordStreamFailure(string(dir))
				logging.Debug("Probe", fmt.Sprintf("%s stream %d failed", dir, i), map[string]string{"error": err.Error()})
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(start)
	if elapsed < minElapsed {
		elapsed = minElapsed
	}

	mbps := sess.agg.Reduce(opts.Warmup, opts.Mode, elapsed)
	if mbps < 0 {
		mbps = 0
	}
	total := sess.agg.TotalBytes()
	metrics.RecordBytes(string(dir), total)

	return Result{
		Mbps:          mbps,
		Elapsed:       elapsed,
		ElapsedSecs:   elapsed.Seconds(),
		TotalBytes:    total,
		Completed:     ctx.Err() == nil,
		Streams:       streams,
		FailedStreams: int(failed.Load()),
	}, nil
}

// isDeadline reports whether err is just the stream stopping itself on time;
// once the window has closed any transport error is the stream's own abort
func isDeadline(err error, s *session) bool {
	return errors.Is(err, context.DeadlineExceeded) || s.expired()
}

// checkStatus treats anything outside 2xx as a failed stream
func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
