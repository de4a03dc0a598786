//go:build linux

package gpio

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/reservoir-monitor/internal/input"
	"github.com/sweeney/reservoir-monitor/internal/sensor"
)

// Open requests every line described by cfg. Falling edges on button lines
// are delivered to onEdge; a nil onEdge requests the buttons without events.
func Open(cfg Config, onEdge EdgeFunc) (*Hardware, error) {
	h := &Hardware{}

	pump, err := NewRealOutput(cfg.Chip, cfg.Pump, cfg.PumpActiveLow, "reservoir-pump")
	if err != nil {
		return nil, err
	}
	h.Pump = pump

	heater, err := NewRealOutput(cfg.Chip, cfg.Heater, cfg.HeaterActiveLow, "reservoir-heater")
	if err != nil {
		h.Close()
		return nil, err
	}
	h.Heater = heater

	ranger, err := NewUltrasonic(cfg.Chip, cfg.Trigger, cfg.Echo, cfg.MaxDistanceCm)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.Distance = ranger

	buttons, err := NewRealButtons(cfg.Chip, cfg.ButtonOffsets(), onEdge)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.Buttons = buttons
	return h, nil
}

// RealOutput drives one actuator line.
type RealOutput struct {
	line *gpiocdev.Line
}

// NewRealOutput requests offset as an output, initially OFF. With activeLow
// the relay is energized by driving the line low.
func NewRealOutput(chip string, offset int, activeLow bool, consumer string) (*RealOutput, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0), gpiocdev.WithConsumer(consumer)}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	line, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "request output pin %d", offset)
	}
	return &RealOutput{line: line}, nil
}

// Set energizes (true) or releases (false) the actuator.
func (o *RealOutput) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return errors.Wrap(o.line.SetValue(v), "set output")
}

// Close releases the line. The kernel keeps the last driven value, so callers
// switch the actuator off first.
func (o *RealOutput) Close() error {
	return o.line.Close()
}

// RealButtons watches the three button lines. Buttons pull the line to
// ground, so lines are biased with pull-ups and a press is a falling edge.
type RealButtons struct {
	lines   *gpiocdev.Lines
	offsets []int
	buttons map[int]input.Button
}

// NewRealButtons requests the button lines.
func NewRealButtons(chip string, offsets map[input.Button]int, onEdge EdgeFunc) (*RealButtons, error) {
	b := &RealButtons{buttons: make(map[int]input.Button, len(offsets))}
	for _, btn := range input.Buttons {
		off, ok := offsets[btn]
		if !ok {
			continue
		}
		b.offsets = append(b.offsets, off)
		b.buttons[off] = btn
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithConsumer("reservoir-buttons"),
	}
	if onEdge != nil {
		opts = append(opts,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
				if btn, ok := b.buttons[evt.Offset]; ok {
					onEdge(btn)
				}
			}))
	}

	lines, err := gpiocdev.RequestLines(chip, b.offsets, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "request button pins %v", b.offsets)
	}
	b.lines = lines
	return b, nil
}

// Levels reports which buttons are currently held (line low).
func (b *RealButtons) Levels() (map[input.Button]bool, error) {
	values := make([]int, len(b.offsets))
	if err := b.lines.Values(values); err != nil {
		return nil, errors.Wrap(err, "read button pins")
	}
	levels := make(map[input.Button]bool, len(values))
	for i, v := range values {
		levels[b.buttons[b.offsets[i]]] = v == 0
	}
	return levels, nil
}

// Close releases the button lines.
func (b *RealButtons) Close() error {
	return b.lines.Close()
}

// Ultrasonic drives an HC-SR04 style sensor: a trigger output and an echo
// input whose high pulse width is the round-trip time of flight. Edge
// timestamps come from the kernel, so scheduling jitter does not affect the
// measured width.
type Ultrasonic struct {
	mu          sync.Mutex
	trigger     *gpiocdev.Line
	echo        *gpiocdev.Line
	events      chan gpiocdev.LineEvent
	echoTimeout time.Duration
}

// NewUltrasonic requests the trigger and echo lines. maxDistanceCm sets how
// long Measure waits for the echo to end.
func NewUltrasonic(chip string, trigger, echo int, maxDistanceCm float32) (*Ultrasonic, error) {
	u := &Ultrasonic{
		events:      make(chan gpiocdev.LineEvent, 8),
		echoTimeout: sensor.EchoWidth(maxDistanceCm) + time.Millisecond,
	}

	var err error
	u.trigger, err = gpiocdev.RequestLine(chip, trigger, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("reservoir-trigger"))
	if err != nil {
		return nil, errors.Wrapf(err, "request trigger pin %d", trigger)
	}
	u.echo, err = gpiocdev.RequestLine(chip, echo,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithConsumer("reservoir-echo"),
		gpiocdev.WithEventHandler(u.handle))
	if err != nil {
		u.trigger.Close()
		return nil, errors.Wrapf(err, "request echo pin %d", echo)
	}
	return u, nil
}

func (u *Ultrasonic) handle(evt gpiocdev.LineEvent) {
	select {
	case u.events <- evt:
	default:
	}
}

// Measure fires one ping and returns the distance to the water surface in cm.
func (u *Ultrasonic) Measure(ctx context.Context) (float32, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.drain()
	if v, err := u.echo.Value(); err != nil || v != 0 {
		return 0, sensor.ErrPing
	}

	if err := u.pulse(); err != nil {
		return 0, errors.Wrap(sensor.ErrPing, err.Error())
	}

	rise, err := u.await(ctx, gpiocdev.LineEventRisingEdge, sensor.PingTimeout, sensor.ErrPingTimeout)
	if err != nil {
		return 0, err
	}
	fall, err := u.await(ctx, gpiocdev.LineEventFallingEdge, u.echoTimeout, sensor.ErrEchoTimeout)
	if err != nil {
		return 0, err
	}
	return sensor.EchoDistance(fall.Timestamp - rise.Timestamp), nil
}

func (u *Ultrasonic) pulse() error {
	if err := u.trigger.SetValue(1); err != nil {
		return err
	}
	time.Sleep(sensor.TriggerPulse)
	return u.trigger.SetValue(0)
}

func (u *Ultrasonic) await(ctx context.Context, want gpiocdev.LineEventType, timeout time.Duration, timeoutErr error) (gpiocdev.LineEvent, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case evt := <-u.events:
			if evt.Type == want {
				return evt, nil
			}
		case <-timer.C:
			return gpiocdev.LineEvent{}, timeoutErr
		case <-ctx.Done():
			return gpiocdev.LineEvent{}, ctx.Err()
		}
	}
}

func (u *Ultrasonic) drain() {
	for {
		select {
		case <-u.events:
		default:
			return
		}
	}
}

// Close releases both lines, leaving the trigger low.
func (u *Ultrasonic) Close() error {
	var first error
	if err := u.trigger.SetValue(0); err != nil {
		first = errors.Wrap(err, "reset trigger")
	}
	if err := u.trigger.Close(); err != nil && first == nil {
		first = errors.Wrap(err, "close trigger")
	}
	if err := u.echo.Close(); err != nil && first == nil {
		first = errors.Wrap(err, "close echo")
	}
	return first
}
