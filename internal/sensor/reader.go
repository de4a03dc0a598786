package sensor

import (
	"context"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
)

// Plausible temperature range of the probe, in degrees Celsius. Samples
// outside the range are treated as glitches.
const (
	MinPlausibleC float32 = -10
	MaxPlausibleC float32 = 50
)

// Filter rejects a measured value by returning an error wrapping ErrImplausible.
type Filter func(value float32) error

// PlausibleTemperature accepts temperatures within [MinPlausibleC, MaxPlausibleC].
func PlausibleTemperature(value float32) error {
	if value < MinPlausibleC || value > MaxPlausibleC {
		return errors.Wrapf(ErrImplausible, "%.1f C outside [%.0f, %.0f]", value, MinPlausibleC, MaxPlausibleC)
	}
	return nil
}

// Reader polls one sensor and publishes accepted values into a Slot.
// A failed or rejected measurement leaves the previous reading in place.
type Reader struct {
	name      string
	sensor    Sensor
	slot      *Slot
	filter    Filter
	onReading func(Reading)
	logger    kitlog.Logger
	now       func() time.Time
}

// ReaderOption customizes a Reader.
type ReaderOption func(*Reader)

// WithFilter sets a plausibility filter applied before publishing.
func WithFilter(f Filter) ReaderOption {
	return func(r *Reader) { r.filter = f }
}

// WithObserver registers a callback invoked after every published reading.
func WithObserver(fn func(Reading)) ReaderOption {
	return func(r *Reader) { r.onReading = fn }
}

// WithClock overrides the wall clock used to timestamp readings.
func WithClock(now func() time.Time) ReaderOption {
	return func(r *Reader) { r.now = now }
}

// NewReader creates a Reader publishing measurements of s into slot.
func NewReader(name string, s Sensor, slot *Slot, logger kitlog.Logger, opts ...ReaderOption) *Reader {
	r := &Reader{
		name:   name,
		sensor: s,
		slot:   slot,
		logger: kitlog.With(logger, "sensor", name),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the sensor name used in logs.
func (r *Reader) Name() string {
	return r.name
}

// Poll performs one measurement cycle. On success the new reading is stored
// and returned. On failure the error is logged and returned, and the slot is
// left untouched.
func (r *Reader) Poll(ctx context.Context) (Reading, error) {
	value, err := r.sensor.Measure(ctx)
	if err == nil && r.filter != nil {
		err = r.filter(value)
	}
	if err != nil {
		level.Warn(r.logger).Log("msg", "reading unavailable", "code", Classify(err), "err", err)
		return Reading{}, err
	}

	reading := r.slot.Store(value, r.now())
	level.Debug(r.logger).Log("msg", "reading", "value", value)
	if r.onReading != nil {
		r.onReading(reading)
	}
	return reading, nil
}

// Run polls once immediately and then once per tick until ctx is done.
// Measurement errors never stop the loop.
func (r *Reader) Run(ctx context.Context, tick <-chan time.Time) error {
	r.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			r.Poll(ctx)
		}
	}
}
