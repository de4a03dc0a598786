// Package sensor defines readings, the sensor error taxonomy and the poll
// loops that turn noisy measurements into published readings.
package sensor

import (
	"context"
	"sync/atomic"
	"time"
)

// Sensor is a measurement primitive returning a value in physical units.
// Distance sensors return centimeters, thermometers return degrees Celsius.
type Sensor interface {
	Measure(ctx context.Context) (float32, error)
}

// Reading is a published measurement. The zero value is an invalid reading.
type Reading struct {
	Value float32
	At    time.Time
	Valid bool
}

// Slot holds the latest Reading of one sensor. Stores replace the reading
// atomically; loads return a copy, so consumers can never mutate it.
type Slot struct {
	p atomic.Pointer[Reading]
}

// Load returns the latest reading, or an invalid Reading if none was stored.
func (s *Slot) Load() Reading {
	if r := s.p.Load(); r != nil {
		return *r
	}
	return Reading{}
}

// Store publishes a valid reading taken at the given time.
func (s *Slot) Store(value float32, at time.Time) Reading {
	r := Reading{Value: value, At: at, Valid: true}
	s.p.Store(&r)
	return r
}
