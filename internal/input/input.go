// Package input turns raw button edges into debounced, level-triggered press
// flags. Edge may be called from any goroutine (GPIO event handlers, MQTT
// callbacks, GUI events); it only touches atomics and never blocks.
package input

import (
	"sync/atomic"
	"time"
)

// DefaultWindow is the minimum spacing between two accepted presses.
const DefaultWindow = 200 * time.Millisecond

// Button identifies one of the three front-panel buttons.
type Button string

const (
	Decrement  Button = "DECREMENT"
	Increment  Button = "INCREMENT"
	ChangeMode Button = "CHANGE_MODE"
)

// Buttons lists all buttons in panel order.
var Buttons = []Button{Decrement, Increment, ChangeMode}

// ButtonEvent is a latched logical press.
type ButtonEvent struct {
	Button Button
	// At is the monotonic offset at which the edge was accepted.
	At time.Duration
}

// Clock returns a monotonic offset. Only differences between two values
// returned by the same Clock are meaningful.
type Clock func() time.Duration

// MonotonicClock returns a Clock measuring time since its creation using the
// runtime's monotonic clock.
func MonotonicClock() Clock {
	start := time.Now()
	return func() time.Duration { return time.Since(start) }
}

// Debouncer latches at most one press per debounce window for one button.
//
// States: IDLE (pending=false) and PENDING (pending=true). An edge moves
// IDLE to PENDING when the window has elapsed since the last accepted edge.
// Consume moves PENDING back to IDLE. Edges arriving while PENDING are
// dropped.
//
// The pending flag, the accepted flag and the time of the last accepted edge
// share one word so that every transition is a single compare-and-swap.
type Debouncer struct {
	button Button
	window time.Duration
	clock  Clock
	state  atomic.Uint64
}

const (
	flagPending  = 1 << 0
	flagAccepted = 1 << 1
	flagBits     = 2
)

func packState(last time.Duration, accepted, pending bool) uint64 {
	s := uint64(last) << flagBits
	if accepted {
		s |= flagAccepted
	}
	if pending {
		s |= flagPending
	}
	return s
}

func lastAccepted(s uint64) time.Duration {
	return time.Duration(s >> flagBits)
}

// NewDebouncer creates a Debouncer for button with the given window.
func NewDebouncer(button Button, window time.Duration, clock Clock) *Debouncer {
	if clock == nil {
		clock = MonotonicClock()
	}
	return &Debouncer{button: button, window: window, clock: clock}
}

// Button returns the button this debouncer tracks.
func (d *Debouncer) Button() Button {
	return d.button
}

// Edge records a falling edge on the button. It reports whether the edge was
// latched as a new press.
func (d *Debouncer) Edge() bool {
	now := d.clock()
	for {
		s := d.state.Load()
		if s&flagPending != 0 {
			return false
		}
		if s&flagAccepted != 0 && now-lastAccepted(s) < d.window {
			return false
		}
		if d.state.CompareAndSwap(s, packState(now, true, true)) {
			return true
		}
	}
}

// Pending reports whether an unconsumed press is latched.
func (d *Debouncer) Pending() bool {
	return d.state.Load()&flagPending != 0
}

// Consume clears a latched press. It returns the event and true exactly once
// per accepted edge.
func (d *Debouncer) Consume() (ButtonEvent, bool) {
	for {
		s := d.state.Load()
		if s&flagPending == 0 {
			return ButtonEvent{}, false
		}
		if d.state.CompareAndSwap(s, s&^flagPending) {
			return ButtonEvent{Button: d.button, At: lastAccepted(s)}, true
		}
	}
}

// Set holds one Debouncer per button.
type Set map[Button]*Debouncer

// NewSet creates debouncers for all buttons sharing one window and clock.
func NewSet(window time.Duration, clock Clock) Set {
	if clock == nil {
		clock = MonotonicClock()
	}
	s := make(Set, len(Buttons))
	for _, b := range Buttons {
		s[b] = NewDebouncer(b, window, clock)
	}
	return s
}

// Edge forwards an edge to the button's debouncer. Unknown buttons are ignored.
func (s Set) Edge(b Button) bool {
	if d, ok := s[b]; ok {
		return d.Edge()
	}
	return false
}
