// Package sim models a reservoir so the controller can run without hardware.
// The pump adds water, consumption draws it off, the heater warms it and the
// water relaxes toward ambient temperature.
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/sweeney/reservoir-monitor/internal/gpio"
	"github.com/sweeney/reservoir-monitor/internal/input"
	"github.com/sweeney/reservoir-monitor/internal/sensor"
)

// Params tunes the model. Rates are per second.
type Params struct {
	HeightCm           float32
	InitialFill        float32 // percent
	InitialTemperature float32
	Ambient            float32
	Inflow             float32 // percent per second while pumping
	Draw               float32 // percent per second
	HeatRate           float32 // degrees per second while heating a full tank
	LossRate           float32 // fraction of the ambient gap lost per second
	Noise              float32 // cm, uniform
}

// Fault is an injected distance sensor failure.
type Fault string

const (
	FaultNone        Fault = ""
	FaultOverRange   Fault = "OVER_RANGE"
	FaultPingTimeout Fault = "PING_TIMEOUT"
	FaultEchoTimeout Fault = "ECHO_TIMEOUT"
)

// State is a point-in-time view of the model.
type State struct {
	Fill        float32
	Temperature float32
	Pump        bool
	Heater      bool
	Draw        float32
	Fault       Fault
}

// Tank is the simulated reservoir. Safe for concurrent use.
type Tank struct {
	mu     sync.Mutex
	p      Params
	fill   float32
	temp   float32
	pump   bool
	heater bool
	fault  Fault
	rng    *rand.Rand
}

// NewTank creates a Tank. seed fixes the noise sequence.
func NewTank(p Params, seed int64) *Tank {
	return &Tank{
		p:    p,
		fill: clampFill(p.InitialFill),
		temp: p.InitialTemperature,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Step advances the model by dt.
func (t *Tank) Step(dt time.Duration) {
	secs := float32(dt.Seconds())
	t.mu.Lock()
	defer t.mu.Unlock()

	flow := -t.p.Draw
	if t.pump {
		flow += t.p.Inflow
	}
	t.fill = clampFill(t.fill + flow*secs)

	if t.heater && t.fill > 0 {
		// The same power warms a shallow tank faster.
		t.temp += t.p.HeatRate * secs * 100 / math32.Max(t.fill, 10)
	}
	t.temp -= (t.temp - t.p.Ambient) * math32.Min(t.p.LossRate*secs, 1)
}

// Run steps the model on every tick until ctx is done.
func (t *Tank) Run(ctx context.Context, tick <-chan time.Time, dt time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			t.Step(dt)
		}
	}
}

// SetDraw changes the consumption rate (percent per second).
func (t *Tank) SetDraw(rate float32) {
	t.mu.Lock()
	t.p.Draw = math32.Max(rate, 0)
	t.mu.Unlock()
}

// SetFault injects (or with FaultNone clears) a distance sensor failure.
func (t *Tank) SetFault(f Fault) {
	t.mu.Lock()
	t.fault = f
	t.mu.Unlock()
}

// Snapshot returns the current model state.
func (t *Tank) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		Fill:        t.fill,
		Temperature: t.temp,
		Pump:        t.pump,
		Heater:      t.heater,
		Draw:        t.p.Draw,
		Fault:       t.fault,
	}
}

// Hardware exposes the model through the same interfaces as the real lines.
func (t *Tank) Hardware() *gpio.Hardware {
	return &gpio.Hardware{
		Pump:     &output{set: t.setPump},
		Heater:   &output{set: t.setHeater},
		Distance: &ranger{t: t},
		Buttons:  releasedButtons{},
	}
}

func (t *Tank) setPump(on bool) {
	t.mu.Lock()
	t.pump = on
	t.mu.Unlock()
}

func (t *Tank) setHeater(on bool) {
	t.mu.Lock()
	t.heater = on
	t.mu.Unlock()
}

// Thermometer returns a sensor reading the water temperature.
func (t *Tank) Thermometer() sensor.Sensor {
	return thermometer{t: t}
}

func (t *Tank) distance() (float32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.fault {
	case FaultOverRange:
		return t.p.HeightCm + 15, nil
	case FaultPingTimeout:
		return 0, sensor.ErrPingTimeout
	case FaultEchoTimeout:
		return 0, sensor.ErrEchoTimeout
	}

	d := t.p.HeightCm * (1 - t.fill/100)
	if t.p.Noise > 0 {
		d += (t.rng.Float32()*2 - 1) * t.p.Noise
	}
	return math32.Max(d, 0), nil
}

func clampFill(f float32) float32 {
	return math32.Max(0, math32.Min(100, f))
}

type output struct {
	set func(bool)
}

func (o *output) Set(on bool) error {
	o.set(on)
	return nil
}

func (o *output) Close() error {
	return nil
}

type ranger struct {
	t *Tank
}

func (r *ranger) Measure(ctx context.Context) (float32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return r.t.distance()
}

func (r *ranger) Close() error {
	return nil
}

type thermometer struct {
	t *Tank
}

func (th thermometer) Measure(ctx context.Context) (float32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	th.t.mu.Lock()
	defer th.t.mu.Unlock()
	return th.t.temp, nil
}

type releasedButtons struct{}

func (releasedButtons) Levels() (map[input.Button]bool, error) {
	levels := make(map[input.Button]bool, len(input.Buttons))
	for _, b := range input.Buttons {
		levels[b] = false
	}
	return levels, nil
}

func (releasedButtons) Close() error {
	return nil
}
