package app

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultSlowThreshold is how long a network action may run before it is reported as slow.
	DefaultSlowThreshold = 3 * time.Second
	// DefaultRecoveredLinger is how long a slow action that finished stays reported as recovered.
	DefaultRecoveredLinger = 2 * time.Second
)

// Activity tracks in-flight network actions for one screen. It raises Slow once an
// action has been pending longer than the threshold and clears it when nothing is
// pending any more. A slow action that completes leaves Recovered set for a short
// linger. Activity never cancels the tracked action.
//
// A nil *Activity is valid and tracks nothing.
type Activity struct {
	clock     clockwork.Clock
	threshold time.Duration
	linger    time.Duration
	onChange  func()

	mu          sync.Mutex
	pending     int
	gen         uint64
	slow        bool
	recovered   bool
	slowTimer   clockwork.Timer
	lingerTimer clockwork.Timer
}

// NewActivity builds an Activity. onChange, if set, is invoked outside the
// internal lock whenever Slow or Recovered flips.
func NewActivity(clock clockwork.Clock, threshold, linger time.Duration, onChange func()) *Activity {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if threshold <= 0 {
		threshold = DefaultSlowThreshold
	}
	if linger <= 0 {
		linger = DefaultRecoveredLinger
	}
	return &Activity{
		clock:     clock,
		threshold: threshold,
		linger:    linger,
		onChange:  onChange,
	}
}

// Begin marks the start of a network action. The returned func marks its end and
// may be called more than once.
func (a *Activity) Begin() (done func()) {
	if a == nil {
		return func() {}
	}

	a.mu.Lock()
	a.pending++
	changed := false
	if a.pending == 1 {
		a.gen++
		gen := a.gen
		if a.lingerTimer != nil {
			a.lingerTimer.Stop()
			a.lingerTimer = nil
		}
		changed = a.slow || a.recovered
		a.slow = false
		a.recovered = false
		a.slowTimer = a.clock.AfterFunc(a.threshold, func() { a.markSlow(gen) })
	}
	a.mu.Unlock()
	if changed {
		a.notify()
	}

	var once sync.Once
	return func() { once.Do(a.end) }
}

// Slow reports whether a pending action has exceeded the threshold.
func (a *Activity) Slow() bool {
	if a == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.slow
}

// Recovered reports whether a slow action finished within the last linger period.
func (a *Activity) Recovered() bool {
	if a == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recovered
}

// Pending reports the number of actions in flight.
func (a *Activity) Pending() int {
	if a == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// Stop cancels outstanding timers. In-flight actions may still call done.
func (a *Activity) Stop() {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	if a.slowTimer != nil {
		a.slowTimer.Stop()
		a.slowTimer = nil
	}
	if a.lingerTimer != nil {
		a.lingerTimer.Stop()
		a.lingerTimer = nil
	}
}

func (a *Activity) end() {
	a.mu.Lock()
	if a.pending == 0 {
		a.mu.Unlock()
		return
	}
	a.pending--
	changed := false
	if a.pending == 0 {
		if a.slowTimer != nil {
			a.slowTimer.Stop()
			a.slowTimer = nil
		}
		if a.slow {
			a.slow = false
			a.recovered = true
			changed = true
			gen := a.gen
			a.lingerTimer = a.clock.AfterFunc(a.linger, func() { a.clearRecovered(gen) })
		}
	}
	a.mu.Unlock()
	if changed {
		a.notify()
	}
}

func (a *Activity) markSlow(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || a.pending == 0 || a.slow {
		a.mu.Unlock()
		return
	}
	a.slow = true
	a.mu.Unlock()
	a.notify()
}

func (a *Activity) clearRecovered(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || !a.recovered {
		a.mu.Unlock()
		return
	}
	a.recovered = false
	a.lingerTimer = nil
	a.mu.Unlock()
	a.notify()
}

func (a *Activity) notify() {
	if a.onChange != nil {
		a.onChange()
	}
}
