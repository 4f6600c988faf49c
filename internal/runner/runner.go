package runner

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/wellsgz/linkcheck/internal/hint"
	"github.com/wellsgz/linkcheck/internal/logging"
	"github.com/wellsgz/linkcheck/internal/metrics"
	"github.com/wellsgz/linkcheck/internal/probe"
	"github.com/wellsgz/linkcheck/internal/provider"
	"github.com/wellsgz/linkcheck/internal/quality"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// ProviderSource resolves ISP information in the background
type ProviderSource interface {
	Async(ctx context.Context) <-chan provider.Info
}

// Deps are the collaborators a Runner works with. Every field is optional.
type Deps struct {
	Client        *http.Client // throughput streams
	LatencyClient *http.Client // latency probes; its timeout bounds each probe
	Hints         hint.Source
	Provider      ProviderSource
	OnComplete    func(Result)
	Visibility    *probe.Visibility
}

// Runner sequences latency, download, upload and finalize phases for one
// test at a time and broadcasts its progress to subscribers
type Runner struct {
	opts     Options
	deps     Deps
	latency  *probe.LatencySampler
	download probe.Probe
	upload   probe.Probe
	tick     time.Duration

	mu         sync.RWMutex
	state      State
	assessment quality.Assessment
	last       *Result

	// Event broadcasting
	subscribers map[chan Event]struct{}
	subMu       sync.RWMutex

	unsubscribeHints func()
	wg               sync.WaitGroup
}

// New creates an idle runner
func New(opts Options, deps Deps) *Runner {
	r := &Runner{
		opts:        opts,
		deps:        deps,
		latency:     probe.NewLatencySampler(deps.LatencyClient),
		download:    probe.NewDownloader(deps.Client),
		upload:      probe.NewUploader(deps.Client),
		tick:        100 * time.Millisecond,
		subscribers: make(map[chan Event]struct{}),
	}

	current := r.currentHint()
	r.assessment = quality.Classify(current.Downlink, current.RTT, 0)

	if deps.Hints != nil {
		r.unsubscribeHints = deps.Hints.Subscribe(r.onHint)
	}

	return r
}

// Start begins a run in the background. It returns false, and does nothing,
// when a run is already in progress.
func (r *Runner) Start(ctx context.Context) bool {
	if !r.begin() {
		return false
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(ctx)
	}()
	return true
}

// Run performs a run and blocks until it is done
func (r *Runner) Run(ctx context.Context) (Result, bool) {
	if !r.begin() {
		return Result{}, false
	}
	return r.execute(ctx), true
}

// Close unregisters the hint observer, waits for an in-flight run and
// closes all subscriber channels
func (r *Runner) Close() {
	if r.unsubscribeHints != nil {
		r.unsubscribeHints()
	}
	r.wg.Wait()

	r.subMu.Lock()
	for ch := range r.subscribers {
		close(ch)
		delete(r.subscribers, ch)
	}
	r.subMu.Unlock()
}

// State returns a snapshot of the current run state
func (r *Runner) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Quality returns the live assessment
func (r *Runner) Quality() quality.Assessment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.assessment
}

// LastResult returns the result of the most recent completed run
func (r *Runner) LastResult() (Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return Result{}, false
	}
	return *r.last, true
}

// Subscribe returns a channel that receives runner events
func (r *Runner) Subscribe() <-chan Event {
	ch := make(chan Event, 100)

	r.subMu.Lock()
	r.subscribers[ch] = struct{}{}
	r.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscriber
func (r *Runner) Unsubscribe(ch <-chan Event) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	for subCh := range r.subscribers {
		if subCh == ch {
			close(subCh)
			delete(r.subscribers, subCh)
			return
		}
	}
}

// begin claims the runner for a new run
func (r *Runner) begin() bool {
	r.mu.Lock()
	if r.state.Phase != PhaseIdle && r.state.Phase != PhaseDone {
		r.mu.Unlock()
		metrics.RunsRejected.Inc()
		log.Println("[Runner] Run already in progress, ignoring start")
		return false
	}
	r.state = State{Phase: PhaseLatency, Running: true}
	r.mu.Unlock()

	metrics.SetRunActive(true)
	log.Printf("[Runner] Starting run (download=%q upload=%q)", r.opts.DownloadURL, r.opts.UploadURL)
	r.broadcast(Event{Type: EventPhase, Phase: PhaseLatency})
	return true
}

// execute runs every phase in order. All figures that end up in the Result
// are the locals of this call.
func (r *Runner) execute(ctx context.Context) Result {
	defer metrics.SetRunActive(false)

	var providerCh <-chan provider.Info
	if r.deps.Provider != nil {
		providerCh = r.deps.Provider.Async(ctx)
	}

	completed := 0.0

	// Latency
	lat := r.latency.Measure(ctx, r.opts.LatencyURL, r.opts.LatencyCount)
	ping := math.Round(lat.MedianMs)
	pingMean := math.Round(lat.MeanMs*10) / 10
	metrics.PingMs.Set(ping)
	logging.PhaseResult("latency", ping, "ms", true)
	completed += PhaseLatency.weight()
	r.advance(PhaseDownload, completed, func(s *State) { s.PingMs = ping })
	r.refreshQuality()

	// Download
	down, downMeasured := r.throughput(ctx, PhaseDownload, r.download, r.opts.DownloadURL, r.opts.Streams)
	completed += PhaseDownload.weight()
	r.advance(PhaseUpload, completed, func(s *State) {
		s.DownloadMbps = down
		s.DownloadMeasured = downMeasured
	})

	// Upload
	up, upMeasured := r.throughput(ctx, PhaseUpload, r.upload, r.opts.UploadURL, probe.UploadStreams(r.opts.Streams))
	completed += PhaseUpload.weight()
	r.advance(PhaseFinalize, completed, func(s *State) {
		s.UploadMbps = up
		s.UploadMeasured = upMeasured
	})

	// Finalize
	hints := r.currentHint()
	assessment := quality.Classify(hints.Downlink, hints.RTT, ping)

	result := Result{
		DownloadMbps:     down,
		UploadMbps:       up,
		PingMs:           ping,
		PingMeanMs:       pingMean,
		Quality:          assessment.Label.String(),
		QualityPct:       assessment.Score,
		SignalBars:       assessment.Bars(),
		DownloadMeasured: downMeasured,
		UploadMeasured:   upMeasured,
		EffectiveType:    hints.EffectiveType,
		RTT:              hints.RTT,
		Downlink:         hints.Downlink,
		ServerHost:       ServerHost(r.opts.DownloadURL, r.opts.UploadURL),
		Timestamp:        time.Now().UTC().Format(timestampLayout),
	}

	select {
	case info, ok := <-providerCh:
		if ok {
			result.Provider = info.Name
			result.IP = info.IP
		}
	default:
	}

	completed += PhaseFinalize.weight()
	r.mu.Lock()
	r.state.Phase = PhaseDone
	r.state.Progress = progressPercent(completed)
	r.state.Running = false
	r.assessment = assessment
	r.last = &result
	r.mu.Unlock()

	metrics.RunsTotal.Inc()
	metrics.QualityScore.Set(float64(assessment.Score))
	log.Printf("[Runner] Run complete: %s (%d%%)", result.Quality, result.QualityPct)

	published := result
	r.broadcast(Event{Type: EventPhase, Phase: PhaseDone, Progress: 100})
	r.broadcast(Event{Type: EventQuality, Phase: PhaseDone, Progress: 100, Quality: &assessment})
	r.broadcast(Event{Type: EventResult, Phase: PhaseDone, Progress: 100, Result: &published})

	if r.deps.OnComplete != nil {
		r.deps.OnComplete(result)
	}
	return result
}

// throughput measures a direction when its URL is configured and simulates
// it otherwise. The second return value reports which one happened.
func (r *Runner) throughput(ctx context.Context, phase Phase, p probe.Probe, target string, streams int) (float64, bool) {
	direction := string(p.Direction())

	if target == "" {
		value := r.simulate(ctx, phase)
		metrics.RecordThroughput(direction, value, false)
		logging.PhaseResult(direction, value, "Mbps", false)
		return value, false
	}

	passes := max(1, r.opts.Passes)
	best := 0.0
	for i := 0; i < passes; i++ {
		res, err := p.Run(ctx, probe.Options{
			URL:         target,
			Duration:    r.opts.Duration,
			Streams:     streams,
			Warmup:      r.opts.Warmup,
			BucketWidth: r.opts.BucketWidth,
			Mode:        r.opts.Mode,
			Visible:     r.deps.Visibility.Visible,
		})
		if err != nil {
			logging.Error("Runner", fmt.Sprintf("%s pass %d failed", direction, i+1), err)
			continue
		}
		logging.Debug("Runner", fmt.Sprintf("%s pass %d", direction, i+1), res)
		best = math.Max(best, res.Mbps)
		if ctx.Err() != nil {
			break
		}
	}

	value := math.Round(best)
	metrics.RecordThroughput(direction, value, true)
	logging.PhaseResult(direction, value, "Mbps", true)
	return value, true
}

// advance records a finished phase and moves to the next one
func (r *Runner) advance(next Phase, completed float64, update func(*State)) {
	progress := progressPercent(completed)

	r.mu.Lock()
	update(&r.state)
	r.state.Phase = next
	r.state.Progress = progress
	r.mu.Unlock()

	r.broadcast(Event{Type: EventPhase, Phase: next, Progress: progress})
}

// onHint recomputes the live assessment whenever the hint source changes
func (r *Runner) onHint(hint.Info) {
	r.refreshQuality()
}

func (r *Runner) refreshQuality() {
	current := r.currentHint()

	r.mu.Lock()
	assessment := quality.Classify(current.Downlink, current.RTT, r.state.PingMs)
	r.assessment = assessment
	phase, progress := r.state.Phase, r.state.Progress
	r.mu.Unlock()

	r.broadcast(Event{Type: EventQuality, Phase: phase, Progress: progress, Quality: &assessment})
}

func (r *Runner) currentHint() hint.Info {
	if r.deps.Hints == nil {
		return hint.Info{}
	}
	return r.deps.Hints.Current()
}

// broadcast sends an event to all subscribers, dropping it for any whose
// buffer is full
func (r *Runner) broadcast(event Event) {
	event.Timestamp = time.Now()

	r.subMu.RLock()
	defer r.subMu.RUnlock()

	for ch := range r.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func progressPercent(completed float64) int {
	return int(math.Round(completed * 100))
}
