package control

import "sync"

// DefaultHistorySize is the number of events kept when none is configured.
const DefaultHistorySize = 64

// History keeps the most recent control events in a fixed-capacity ring and
// counts every event recorded since startup. Safe for concurrent use.
type History struct {
	mu       sync.Mutex
	buf      []Event
	capacity int
	head     int // next write position
	count    int
	dropped  int
	counts   EventCounts
}

// NewHistory creates a History holding up to capacity events.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{
		buf:      make([]Event, capacity),
		capacity: capacity,
	}
}

// Record appends ev, overwriting the oldest event when full.
func (h *History) Record(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.counts.add(ev.Type)
	h.buf[h.head] = ev
	h.head = (h.head + 1) % h.capacity
	if h.count == h.capacity {
		h.dropped++
		return
	}
	h.count++
}

// Events returns the retained events, oldest first.
func (h *History) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}
	result := make([]Event, h.count)
	// Oldest item is at (head - count) mod capacity
	start := (h.head - h.count + h.capacity) % h.capacity
	for i := 0; i < h.count; i++ {
		result[i] = h.buf[(start+i)%h.capacity]
	}
	return result
}

// Counts returns per-type totals since startup, including overwritten events.
func (h *History) Counts() EventCounts {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts
}

// Dropped returns how many events have been overwritten.
func (h *History) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Len returns the number of retained events.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}
