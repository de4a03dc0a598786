package control

import (
	"time"

	"github.com/sweeney/reservoir-monitor/internal/level"
	"github.com/sweeney/reservoir-monitor/internal/sensor"
)

// OverRangeMarginCm is how far beyond the tank height a distance reading may
// go before it is treated as a sensor fault.
const OverRangeMarginCm float32 = 10

// PumpDecision is the outcome of one pump evaluation.
type PumpDecision struct {
	On bool
	// Forced is set when the output is ON because the distance reading was
	// beyond the over-range limit.
	Forced bool
	Fill   int
	// Event is non-nil when the output (or its forced flag) changed.
	Event *Event
}

// PumpController applies the two-point fill hysteresis: ON below
// level.LowWaterPercent, OFF once the fill threshold is reached.
type PumpController struct {
	tankHeight float32
	// filling is the hysteresis memory. Forced evaluations leave it alone.
	filling bool
	on      bool
	forced  bool

	prevOn, prevForced bool
}

// NewPumpController creates a controller for a tank of the given height (cm).
// The pump starts OFF.
func NewPumpController(tankHeight float32) *PumpController {
	return &PumpController{tankHeight: tankHeight}
}

// Evaluate decides the pump output from the latest distance reading. An
// invalid reading (nothing measured yet) holds the current output.
func (p *PumpController) Evaluate(distance sensor.Reading, fillThreshold int, now time.Time) PumpDecision {
	p.prevOn, p.prevForced = p.on, p.forced
	if !distance.Valid {
		return PumpDecision{On: p.on, Forced: p.forced}
	}

	fill := level.FillPercent(distance.Value, p.tankHeight)
	on, forced := p.next(distance.Value, fill, fillThreshold)

	d := PumpDecision{On: on, Forced: forced, Fill: fill}
	if t, changed := pumpTransition(p.on, p.forced, on, forced); changed {
		d.Event = &Event{Timestamp: now, Type: t, Fill: fill, Distance: distance.Value}
	}
	p.on, p.forced = on, forced
	return d
}

func (p *PumpController) next(distance float32, fill, fillThreshold int) (on, forced bool) {
	if distance > p.tankHeight+OverRangeMarginCm {
		return true, true
	}
	if fill < level.LowWaterPercent {
		p.filling = true
	} else if fill >= fillThreshold {
		p.filling = false
	}
	return p.filling, false
}

func pumpTransition(wasOn, wasForced, on, forced bool) (EventType, bool) {
	switch {
	case forced && !wasForced:
		return EventPumpForced, true
	case forced:
		return "", false
	case wasForced || on != wasOn:
		if on {
			return EventPumpOn, true
		}
		return EventPumpOff, true
	}
	return "", false
}

// Undo restores the output memory from before the last Evaluate, so the next
// evaluation reports the same transition again. The hysteresis memory is kept.
func (p *PumpController) Undo() {
	p.on, p.forced = p.prevOn, p.prevForced
}

// On reports the last decided output.
func (p *PumpController) On() bool {
	return p.on
}

// Filling reports the hysteresis memory.
func (p *PumpController) Filling() bool {
	return p.filling
}
