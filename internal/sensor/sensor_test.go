package sensor

import (
	"bytes"
	"context"
	"testing"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestSlotZeroValueIsInvalid(t *testing.T) {
	var s Slot
	r := s.Load()
	assert.False(t, r.Valid)
	assert.Zero(t, r.Value)
}

func TestSlotStoreReplaces(t *testing.T) {
	var s Slot
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Store(4.2, at)
	first := s.Load()

	s.Store(7.5, at.Add(time.Second))

	assert.Equal(t, float32(4.2), first.Value, "loaded copy must not change")
	got := s.Load()
	assert.True(t, got.Valid)
	assert.Equal(t, float32(7.5), got.Value)
	assert.Equal(t, at.Add(time.Second), got.At)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{nil, CodeOK},
		{ErrPing, CodePing},
		{errors.Wrap(ErrPingTimeout, "hcsr04"), CodePingTimeout},
		{errors.Wrapf(ErrEchoTimeout, "after %v", time.Millisecond), CodeEchoTimeout},
		{PlausibleTemperature(85), CodeImplausible},
		{errors.New("bus fault"), CodeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "err=%v", tt.err)
	}
}

func TestPlausibleTemperature(t *testing.T) {
	for _, v := range []float32{-10, 0, 24.5, 50} {
		assert.NoError(t, PlausibleTemperature(v), "value %v", v)
	}
	for _, v := range []float32{-10.1, -127, 50.1, 85} {
		assert.ErrorIs(t, PlausibleTemperature(v), ErrImplausible, "value %v", v)
	}
}

func TestEchoDistance(t *testing.T) {
	// 1000us round trip at 0.0343 cm/us is 17.15 cm one way.
	assert.InDelta(t, 17.15, EchoDistance(1000*time.Microsecond), 0.001)
	assert.Zero(t, EchoDistance(0))
}

func TestEchoWidthRoundTrip(t *testing.T) {
	for _, d := range []float32{1, 13.5, 100, 400} {
		got := EchoDistance(EchoWidth(d))
		assert.InDelta(t, d, got, 0.05, "distance %v", d)
	}
}

func TestReaderPollStoresReading(t *testing.T) {
	var slot Slot
	var observed []Reading
	fake := NewFakeSensor(Sample{Value: 6.75})
	r := NewReader("hcsr04", fake, &slot, kitlog.NewNopLogger(),
		WithClock(fixedClock()),
		WithObserver(func(r Reading) { observed = append(observed, r) }))

	got, err := r.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.Equal(t, float32(6.75), slot.Load().Value)
	require.Len(t, observed, 1)
	assert.Equal(t, got, observed[0])
}

func TestReaderPollRetainsPreviousOnError(t *testing.T) {
	var slot Slot
	var buf bytes.Buffer
	notified := 0
	fake := NewFakeSensor(
		Sample{Value: 5},
		Sample{Err: ErrPingTimeout},
		Sample{Err: errors.Wrap(ErrEchoTimeout, "echo")},
	)
	r := NewReader("hcsr04", fake, &slot, kitlog.NewLogfmtLogger(&buf),
		WithObserver(func(Reading) { notified++ }))

	_, err := r.Poll(context.Background())
	require.NoError(t, err)
	_, err = r.Poll(context.Background())
	assert.ErrorIs(t, err, ErrPingTimeout)
	_, err = r.Poll(context.Background())
	assert.ErrorIs(t, err, ErrEchoTimeout)

	assert.Equal(t, float32(5), slot.Load().Value)
	assert.Equal(t, 1, notified, "failed cycles must not notify")
	assert.Contains(t, buf.String(), "code=PING_TIMEOUT")
	assert.Contains(t, buf.String(), "code=ECHO_TIMEOUT")
}

func TestReaderFilterDiscardsImplausible(t *testing.T) {
	var slot Slot
	fake := NewFakeSensor(Sample{Value: 22}, Sample{Value: 85}, Sample{Value: -127}, Sample{Value: 23.5})
	r := NewReader("ds18b20", fake, &slot, kitlog.NewNopLogger(), WithFilter(PlausibleTemperature))

	ctx := context.Background()
	r.Poll(ctx)
	assert.Equal(t, float32(22), slot.Load().Value)

	_, err := r.Poll(ctx)
	assert.ErrorIs(t, err, ErrImplausible)
	_, err = r.Poll(ctx)
	assert.ErrorIs(t, err, ErrImplausible)
	assert.Equal(t, float32(22), slot.Load().Value)

	r.Poll(ctx)
	assert.Equal(t, float32(23.5), slot.Load().Value)
}

func TestReaderRunPollsPerTick(t *testing.T) {
	var slot Slot
	fake := NewFakeSensor(Sample{Value: 1}, Sample{Value: 2}, Sample{Value: 3})
	r := NewReader("hcsr04", fake, &slot, kitlog.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	tick := make(chan time.Time)
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, tick) }()

	tick <- time.Time{}
	tick <- time.Time{}
	cancel()
	require.NoError(t, <-done)

	// Initial poll plus two ticks.
	assert.Equal(t, 3, fake.Calls)
	assert.Equal(t, float32(3), slot.Load().Value)
}
