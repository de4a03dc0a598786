// Package gpio provides the reservoir's digital I/O with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

import (
	"github.com/pkg/errors"

	"github.com/sweeney/reservoir-monitor/internal/input"
	"github.com/sweeney/reservoir-monitor/internal/sensor"
)

// Output drives a binary actuator. Set(true) energizes it regardless of the
// line polarity.
type Output interface {
	Set(on bool) error
	Close() error
}

// ButtonReader samples the current button levels.
type ButtonReader interface {
	// Levels reports which buttons are currently held down.
	Levels() (map[input.Button]bool, error)
	Close() error
}

// Ranger is a distance sensor that owns hardware resources.
type Ranger interface {
	sensor.Sensor
	Close() error
}

// EdgeFunc is called from the GPIO event goroutine for every falling edge.
// It must not block.
type EdgeFunc func(input.Button)

// Config maps functions to line offsets on one chip (BCM numbering on a Pi).
type Config struct {
	Chip            string
	Trigger         int
	Echo            int
	Pump            int
	Heater          int
	Decrement       int
	Increment       int
	ChangeMode      int
	PumpActiveLow   bool
	HeaterActiveLow bool
	// MaxDistanceCm bounds the echo wait.
	MaxDistanceCm float32
}

// DefaultConfig returns the reference wiring.
func DefaultConfig() Config {
	return Config{
		Chip:          "gpiochip0",
		Trigger:       23,
		Echo:          24,
		Pump:          17,
		Heater:        27,
		Decrement:     5,
		Increment:     6,
		ChangeMode:    13,
		PumpActiveLow: true,
		MaxDistanceCm: 400,
	}
}

// ButtonOffsets returns the line offset of each button.
func (c Config) ButtonOffsets() map[input.Button]int {
	return map[input.Button]int{
		input.Decrement:  c.Decrement,
		input.Increment:  c.Increment,
		input.ChangeMode: c.ChangeMode,
	}
}

// Hardware bundles every opened line.
type Hardware struct {
	Pump     Output
	Heater   Output
	Distance Ranger
	Buttons  ButtonReader
}

// Close drives both actuators OFF and releases every line. It keeps going
// after a failure and returns the first error.
func (h *Hardware) Close() error {
	var first error
	keep := func(err error, msg string) {
		if err != nil && first == nil {
			first = errors.Wrap(err, msg)
		}
	}

	for _, o := range []struct {
		name string
		out  Output
	}{{"pump", h.Pump}, {"heater", h.Heater}} {
		if o.out == nil {
			continue
		}
		keep(o.out.Set(false), "switch off "+o.name)
		keep(o.out.Close(), "close "+o.name)
	}
	if h.Distance != nil {
		keep(h.Distance.Close(), "close ultrasonic")
	}
	if h.Buttons != nil {
		keep(h.Buttons.Close(), "close buttons")
	}
	return first
}
