package gpio

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/sweeney/reservoir-monitor/internal/input"
)

// FakeOutput is a test double that records every Set call.
type FakeOutput struct {
	mu sync.Mutex
	on bool
	// History holds every value passed to Set, in order.
	History []bool
	// SetError, if set, is returned by Set without changing state.
	SetError error
	Closed   bool
}

// NewFakeOutput creates an OFF FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records the value.
func (f *FakeOutput) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.on = on
	f.History = append(f.History, on)
	return nil
}

// On reports the last value set.
func (f *FakeOutput) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// Sets returns a copy of the recorded values.
func (f *FakeOutput) Sets() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.History...)
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// FakeButtons is a test double that returns scripted button levels.
type FakeButtons struct {
	// Samples contains scripted levels. Each call to Levels consumes the next
	// sample; the last one repeats.
	Samples []map[input.Button]bool
	index   int
	// ReadError, if set, will be returned by Levels.
	ReadError error
	Closed    bool
}

// NewFakeButtons creates a FakeButtons with the given samples.
func NewFakeButtons(samples ...map[input.Button]bool) *FakeButtons {
	return &FakeButtons{Samples: samples}
}

// Levels returns the next scripted sample.
func (f *FakeButtons) Levels() (map[input.Button]bool, error) {
	if f.ReadError != nil {
		return nil, f.ReadError
	}
	if len(f.Samples) == 0 {
		return nil, errors.New("no samples configured")
	}
	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Close marks the buttons as closed.
func (f *FakeButtons) Close() error {
	f.Closed = true
	return nil
}

// FakeRanger wraps a measurement function as a Ranger.
type FakeRanger struct {
	MeasureFunc func(ctx context.Context) (float32, error)
	Closed      bool
}

// Measure calls MeasureFunc.
func (f *FakeRanger) Measure(ctx context.Context) (float32, error) {
	if f.MeasureFunc == nil {
		return 0, errors.New("no measure func configured")
	}
	return f.MeasureFunc(ctx)
}

// Close marks the ranger as closed.
func (f *FakeRanger) Close() error {
	f.Closed = true
	return nil
}
