package input

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced monotonic clock.
type fakeClock struct {
	now atomic.Int64
}

func (c *fakeClock) Clock() Clock {
	return func() time.Duration { return time.Duration(c.now.Load()) }
}

func (c *fakeClock) Set(d time.Duration) {
	c.now.Store(int64(d))
}

func setupDebouncer(t *testing.T) (*Debouncer, *fakeClock) {
	t.Helper()
	clk := &fakeClock{}
	clk.Set(10 * time.Second)
	return NewDebouncer(Increment, DefaultWindow, clk.Clock()), clk
}

func TestFirstEdgeLatches(t *testing.T) {
	d, _ := setupDebouncer(t)

	assert.True(t, d.Edge())
	assert.True(t, d.Pending())

	ev, ok := d.Consume()
	require.True(t, ok)
	assert.Equal(t, Increment, ev.Button)
	assert.Equal(t, 10*time.Second, ev.At)
	assert.False(t, d.Pending())
}

func TestConsumeExactlyOnce(t *testing.T) {
	d, _ := setupDebouncer(t)
	d.Edge()

	_, ok := d.Consume()
	assert.True(t, ok)
	_, ok = d.Consume()
	assert.False(t, ok, "second consume must find nothing")
}

func TestEdgesWithinWindowProduceOneEvent(t *testing.T) {
	d, clk := setupDebouncer(t)
	t1 := 10 * time.Second

	assert.True(t, d.Edge())
	_, ok := d.Consume()
	require.True(t, ok)

	// Bounce 150ms later: inside the window, even though the first was consumed.
	clk.Set(t1 + 150*time.Millisecond)
	assert.False(t, d.Edge())
	_, ok = d.Consume()
	assert.False(t, ok)
}

func TestEdgesAtWindowProduceTwoEvents(t *testing.T) {
	d, clk := setupDebouncer(t)
	t1 := 10 * time.Second

	assert.True(t, d.Edge())
	_, ok := d.Consume()
	require.True(t, ok)

	clk.Set(t1 + DefaultWindow)
	assert.True(t, d.Edge(), "edge exactly one window later is accepted")
	ev, ok := d.Consume()
	require.True(t, ok)
	assert.Equal(t, t1+DefaultWindow, ev.At)
}

func TestEdgeWhilePendingIsDropped(t *testing.T) {
	d, clk := setupDebouncer(t)
	t1 := 10 * time.Second

	d.Edge()
	// Window elapsed but the first press is still unconsumed.
	clk.Set(t1 + time.Second)
	assert.False(t, d.Edge())

	ev, ok := d.Consume()
	require.True(t, ok)
	assert.Equal(t, t1, ev.At, "the dropped edge must not move the accepted tick")

	_, ok = d.Consume()
	assert.False(t, ok, "dropped edge is never queued")
}

func TestDroppedEdgeDoesNotRestartWindow(t *testing.T) {
	d, clk := setupDebouncer(t)
	t1 := 10 * time.Second

	d.Edge()
	clk.Set(t1 + 100*time.Millisecond)
	d.Edge() // dropped: pending
	d.Consume()

	clk.Set(t1 + 200*time.Millisecond)
	assert.True(t, d.Edge(), "window is measured from the accepted edge")
}

func TestEdgeNearClockOrigin(t *testing.T) {
	clk := &fakeClock{}
	d := NewDebouncer(ChangeMode, DefaultWindow, clk.Clock())

	assert.True(t, d.Edge(), "first edge is accepted even at offset zero")
}

func TestSetRoutesEdges(t *testing.T) {
	clk := &fakeClock{}
	s := NewSet(DefaultWindow, clk.Clock())

	assert.True(t, s.Edge(Decrement))
	assert.False(t, s.Edge(Button("UNKNOWN")))

	assert.True(t, s[Decrement].Pending())
	assert.False(t, s[Increment].Pending())
	assert.False(t, s[ChangeMode].Pending())
}

func TestConcurrentEdgesLatchOnce(t *testing.T) {
	d, _ := setupDebouncer(t)

	var wg sync.WaitGroup
	var accepted atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Edge() {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
	_, ok := d.Consume()
	assert.True(t, ok)
}

func TestConcurrentEdgeAndConsumeKeepAcceptedTime(t *testing.T) {
	d, clk := setupDebouncer(t)
	t1 := 10 * time.Second

	var wg sync.WaitGroup
	var accepted atomic.Int32
	events := make(chan ButtonEvent, 64)
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if d.Edge() {
				accepted.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if ev, ok := d.Consume(); ok {
				events <- ev
			}
		}()
	}
	wg.Wait()
	if ev, ok := d.Consume(); ok {
		events <- ev
	}
	close(events)

	// The clock never moves, so every edge after the first is inside the window.
	assert.Equal(t, int32(1), accepted.Load())
	var got []ButtonEvent
	for ev := range events {
		got = append(got, ev)
	}
	require.Len(t, got, 1)
	assert.Equal(t, t1, got[0].At)

	clk.Set(t1 + DefaultWindow)
	assert.True(t, d.Edge())
}
