package runner

import (
	"context"
	"math"
	"time"
)

const defaultDownlinkMbps = 10.0

// ramp describes the placeholder curve shown when a direction has no URL
type ramp struct {
	scale  float64 // applied to the base rate
	factor float64 // seconds of ramp per second of configured duration
	min    time.Duration
	max    time.Duration
}

var (
	downloadRamp = ramp{scale: 1, factor: 0.9, min: 2 * time.Second, max: 15 * time.Second}
	uploadRamp   = ramp{scale: 0.7, factor: 0.8, min: 1600 * time.Millisecond, max: 12 * time.Second}
)

// base is the rate at which the ramp starts climbing
func (rp ramp) base(downlinkMbps float64, duration time.Duration) float64 {
	if downlinkMbps <= 0 {
		downlinkMbps = defaultDownlinkMbps
	}
	return downlinkMbps * rp.scale * math.Max(1, duration.Seconds()/3.5)
}

// length is how long the ramp runs
func (rp ramp) length(duration time.Duration) time.Duration {
	d := time.Duration(math.Round(duration.Seconds() * rp.factor * float64(time.Second)))
	if d < rp.min {
		return rp.min
	}
	if d > rp.max {
		return rp.max
	}
	return d
}

// value is the ramp at progress p in [0,1]
func (rp ramp) value(base, p float64) float64 {
	return base * (0.5 + 1.25*p)
}

// simulate plays the ramp for phase, emitting sample events, and returns the
// rounded final value. Cancelling ctx ends the ramp at its current point.
func (r *Runner) simulate(ctx context.Context, phase Phase) float64 {
	rp := downloadRamp
	if phase == PhaseUpload {
		rp = uploadRamp
	}

	base := rp.base(r.currentHint().Downlink, r.opts.Duration)
	length := rp.length(r.opts.Duration)
	progress := r.State().Progress

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	start := time.Now()
	p := 0.0
	for p < 1 {
		select {
		case <-ctx.Done():
			return math.Round(rp.value(base, p))
		case <-ticker.C:
		}

		p = math.Min(1, float64(time.Since(start))/float64(length))
		r.broadcast(Event{Type: EventSample, Phase: phase, Progress: progress, Value: math.Round(rp.value(base, p))})
	}

	return math.Round(rp.value(base, 1))
}
