package probe

import "sync/atomic"

// Visibility tracks whether the front end is in the foreground. Bytes moved
// while hidden still count toward totals but skip bucket accounting.
type Visibility struct {
	hidden atomic.Bool
}

// NewVisibility returns a gate that starts visible
func NewVisibility() *Visibility {
	return &Visibility{}
}

// Visible reports the current state; a nil gate is always visible
func (v *Visibility) Visible() bool {
	if v == nil {
		return true
	}
	return !v.hidden.Load()
}

// SetVisible updates the state
func (v *Visibility) SetVisible(visible bool) {
	v.hidden.Store(!visible)
}
