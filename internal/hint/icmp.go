package hint

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

const defaultICMPInterval = 30 * time.Second

// ICMPSource refreshes the RTT hint by pinging a host in the background.
// The downlink hint of the wrapped feed is left untouched.
type ICMPSource struct {
	*Feed
	host       string
	interval   time.Duration
	pings      int
	privileged bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewICMPSource wraps feed with a pinger for host
func NewICMPSource(feed *Feed, host string, interval time.Duration) *ICMPSource {
	if interval <= 0 {
		interval = defaultICMPInterval
	}
	return &ICMPSource{
		Feed:       feed,
		host:       host,
		interval:   interval,
		pings:      5,
		privileged: true, // Try privileged mode first
	}
}

// Start pings once immediately and then on every interval until ctx ends or Stop is called
func (s *ICMPSource) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.refresh(ctx)
			}
		}
	}()
}

// Stop halts background pinging
func (s *ICMPSource) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// refresh runs one burst and publishes the median RTT
func (s *ICMPSource) refresh(ctx context.Context) {
	rtt, err := s.ping(ctx)
	if err != nil {
		log.Printf("[Hint] ICMP ping to %s failed: %v", s.host, err)
		return
	}

	info := s.Current()
	info.RTT = math.Round(rtt)
	info.EffectiveType = EffectiveType(info.RTT)
	s.Set(info)
}

// ping runs one burst and returns the median RTT in milliseconds
func (s *ICMPSource) ping(ctx context.Context) (float64, error) {
	pinger, err := probing.NewPinger(s.host)
	if err != nil {
		return 0, fmt.Errorf("failed to create pinger: %w", err)
	}
	pinger.Count = s.pings
	pinger.Interval = 50 * time.Millisecond
	pinger.Timeout = time.Duration(s.pings) * 250 * time.Millisecond
	pinger.SetPrivileged(s.privileged)

	var rtts []time.Duration
	pinger.OnRecv = func(pkt *probing.Packet) {
		rtts = append(rtts, pkt.Rtt)
	}

	err = pinger.RunWithContext(ctx)
	if err != nil && s.privileged {
		// Fall back to unprivileged UDP pings for the rest of the session
		s.privileged = false
		pinger.SetPrivileged(false)
		rtts = nil
		err = pinger.RunWithContext(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("ping failed: %w", err)
	}
	if len(rtts) == 0 {
		return 0, fmt.Errorf("packet loss: no response")
	}

	sort.Slice(rtts, func(i, j int) bool { return rtts[i] < rtts[j] })
	median := rtts[(len(rtts)-1)/2]
	return float64(median.Microseconds()) / 1000.0, nil
}
