// Package state holds the operator-adjustable configuration and the actuator
// state shared between the control loops. Every value is safe for concurrent
// use; readers always receive copies.
package state

import "sync"

// Mode selects which threshold the increment/decrement buttons adjust.
type Mode string

const (
	ModeTemperature Mode = "TEMPERATURE"
	ModeDistance    Mode = "DISTANCE"
)

// Threshold bounds and step sizes.
const (
	MinTemperatureThreshold float32 = 10
	MaxTemperatureThreshold float32 = 50
	TemperatureStep         float32 = 1

	MinFillThreshold = 10
	MaxFillThreshold = 100
	FillStep         = 5
)

// Config is the operator configuration: the two thresholds and the active mode.
type Config struct {
	TemperatureThreshold float32
	FillThreshold        int
	Mode                 Mode
}

// DefaultConfig returns the power-on configuration.
func DefaultConfig() Config {
	return Config{
		TemperatureThreshold: MinTemperatureThreshold,
		FillThreshold:        MinFillThreshold,
		Mode:                 ModeDistance,
	}
}

// clamped returns c with both thresholds forced into range and an unknown
// mode replaced by ModeDistance.
func (c Config) clamped() Config {
	if c.TemperatureThreshold < MinTemperatureThreshold {
		c.TemperatureThreshold = MinTemperatureThreshold
	}
	if c.TemperatureThreshold > MaxTemperatureThreshold {
		c.TemperatureThreshold = MaxTemperatureThreshold
	}
	if c.FillThreshold < MinFillThreshold {
		c.FillThreshold = MinFillThreshold
	}
	if c.FillThreshold > MaxFillThreshold {
		c.FillThreshold = MaxFillThreshold
	}
	if c.Mode != ModeTemperature && c.Mode != ModeDistance {
		c.Mode = ModeDistance
	}
	return c
}

// Store holds the single shared Config behind an RWMutex.
type Store struct {
	mu  sync.RWMutex
	cfg Config
}

// NewStore creates a Store holding initial, clamped into range.
func NewStore(initial Config) *Store {
	return &Store{cfg: initial.clamped()}
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	c := s.cfg
	s.mu.RUnlock()
	return c
}

// Decrement lowers the threshold selected by the current mode by one step,
// stopping at the lower bound. It returns the resulting configuration.
func (s *Store) Decrement() Config {
	return s.update(func(c *Config) {
		switch c.Mode {
		case ModeTemperature:
			c.TemperatureThreshold -= TemperatureStep
		case ModeDistance:
			c.FillThreshold -= FillStep
		}
	})
}

// Increment raises the threshold selected by the current mode by one step,
// stopping at the upper bound. It returns the resulting configuration.
func (s *Store) Increment() Config {
	return s.update(func(c *Config) {
		switch c.Mode {
		case ModeTemperature:
			c.TemperatureThreshold += TemperatureStep
		case ModeDistance:
			c.FillThreshold += FillStep
		}
	})
}

// ToggleMode switches between ModeDistance and ModeTemperature.
func (s *Store) ToggleMode() Config {
	return s.update(func(c *Config) {
		if c.Mode == ModeTemperature {
			c.Mode = ModeDistance
		} else {
			c.Mode = ModeTemperature
		}
	})
}

func (s *Store) update(fn func(*Config)) Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.cfg)
	s.cfg = s.cfg.clamped()
	return s.cfg
}
