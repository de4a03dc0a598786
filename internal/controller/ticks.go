package controller

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sweeney/reservoir-monitor/internal/input"
)

// Timing holds the loop cadences.
type Timing struct {
	Sensor  time.Duration
	Pump    time.Duration
	Heater  time.Duration
	Buttons time.Duration
	// Heartbeat is the status log interval; zero disables it.
	Heartbeat time.Duration
}

// Ticks drives every loop. Tests inject their own channels; a nil channel
// never fires.
type Ticks struct {
	Distance    <-chan time.Time
	Temperature <-chan time.Time
	Pump        <-chan time.Time
	Heater      <-chan time.Time
	Buttons     map[input.Button]<-chan time.Time
	Heartbeat   <-chan time.Time
}

// NewTickers starts one ticker per loop on clock. Call stop to release them.
func NewTickers(clock clockwork.Clock, t Timing) (Ticks, func()) {
	var tickers []clockwork.Ticker
	start := func(d time.Duration) <-chan time.Time {
		tk := clock.NewTicker(d)
		tickers = append(tickers, tk)
		return tk.Chan()
	}

	ticks := Ticks{
		Distance:    start(t.Sensor),
		Temperature: start(t.Sensor),
		Pump:        start(t.Pump),
		Heater:      start(t.Heater),
		Buttons:     map[input.Button]<-chan time.Time{},
	}
	for _, b := range input.Buttons {
		ticks.Buttons[b] = start(t.Buttons)
	}
	if t.Heartbeat > 0 {
		ticks.Heartbeat = start(t.Heartbeat)
	}

	return ticks, func() {
		for _, tk := range tickers {
			tk.Stop()
		}
	}
}
