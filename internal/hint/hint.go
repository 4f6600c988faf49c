package hint

import "sync"

// Info is a connection hint. Zero fields mean the hint is absent.
type Info struct {
	EffectiveType string  `json:"effectiveType,omitempty" mapstructure:"effective_type"`
	Downlink      float64 `json:"downlink,omitempty" mapstructure:"downlink"` // Mbps
	RTT           float64 `json:"rtt,omitempty" mapstructure:"rtt"`           // ms
}

// IsZero reports whether no hint is available
func (i Info) IsZero() bool {
	return i.EffectiveType == "" && i.Downlink == 0 && i.RTT == 0
}

// Source is a read-only, subscribable hint provider
type Source interface {
	// Current returns the latest hint
	Current() Info

	// Subscribe registers fn to be called on every change. The returned
	// function unregisters it.
	Subscribe(fn func(Info)) (unsubscribe func())
}

// Feed is a settable Source safe for concurrent use
type Feed struct {
	current   Info
	observers map[int]func(Info)
	nextID    int
	mu        sync.RWMutex
}

// NewFeed creates a feed seeded with initial
func NewFeed(initial Info) *Feed {
	return &Feed{
		current:   initial,
		observers: make(map[int]func(Info)),
	}
}

// Current returns the latest hint
func (f *Feed) Current() Info {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// Set replaces the hint and notifies observers when it changed
func (f *Feed) Set(info Info) {
	f.mu.Lock()
	if info == f.current {
		f.mu.Unlock()
		return
	}
	f.current = info
	observers := make([]func(Info), 0, len(f.observers))
	for _, fn := range f.observers {
		observers = append(observers, fn)
	}
	f.mu.Unlock()

	// Notify outside the lock so observers may read Current
	for _, fn := range observers {
		fn(info)
	}
}

// Subscribe registers fn and returns its unregister function
func (f *Feed) Subscribe(fn func(Info)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.observers[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.observers, id)
			f.mu.Unlock()
		})
	}
}

// EffectiveType classifies an RTT the way browsers derive their
// effective connection type
func EffectiveType(rttMs float64) string {
	switch {
	case rttMs <= 0:
		return ""
	case rttMs >= 2000:
		return "slow-2g"
	case rttMs >= 1400:
		return "2g"
	case rttMs >= 270:
		return "3g"
	default:
		return "4g"
	}
}
