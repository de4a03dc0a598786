package sensor

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Sample is a single scripted measurement outcome.
type Sample struct {
	Value float32
	Err   error
}

// FakeSensor is a test double that returns scripted measurements.
type FakeSensor struct {
	mu sync.Mutex

	// Samples contains scripted outcomes. Each call to Measure consumes the
	// next one; once exhausted the last sample repeats.
	Samples []Sample

	index int

	// Calls counts Measure invocations.
	Calls int
}

// NewFakeSensor creates a FakeSensor with the given samples.
func NewFakeSensor(samples ...Sample) *FakeSensor {
	return &FakeSensor{Samples: samples}
}

// Measure returns the next scripted sample.
func (f *FakeSensor) Measure(ctx context.Context) (float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls++
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s.Value, s.Err
}

// Set replaces the script with a single repeating value.
func (f *FakeSensor) Set(value float32) {
	f.mu.Lock()
	f.Samples = []Sample{{Value: value}}
	f.index = 0
	f.mu.Unlock()
}

// Fail replaces the script with a single repeating error.
func (f *FakeSensor) Fail(err error) {
	f.mu.Lock()
	f.Samples = []Sample{{Err: err}}
	f.index = 0
	f.mu.Unlock()
}
