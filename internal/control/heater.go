package control

import (
	"time"

	"github.com/sweeney/reservoir-monitor/internal/level"
	"github.com/sweeney/reservoir-monitor/internal/sensor"
)

// HeaterDecision is the outcome of one heater evaluation.
type HeaterDecision struct {
	On    bool
	Fill  int
	Event *Event
}

// HeaterController turns the heater on below the temperature threshold, but
// only while the tank holds at least level.LowWaterPercent. There is no
// temperature hysteresis.
type HeaterController struct {
	tankHeight float32
	on         bool
	prevOn     bool
}

// NewHeaterController creates a controller for a tank of the given height (cm).
func NewHeaterController(tankHeight float32) *HeaterController {
	return &HeaterController{tankHeight: tankHeight}
}

// Evaluate decides the heater output. Until both readings are valid the
// heater is OFF.
func (h *HeaterController) Evaluate(temperature, distance sensor.Reading, threshold float32, now time.Time) HeaterDecision {
	var d HeaterDecision
	if temperature.Valid && distance.Valid {
		d.Fill = level.FillPercent(distance.Value, h.tankHeight)
		d.On = HeaterOn(temperature.Value, threshold, d.Fill)
	}

	if d.On != h.on {
		t := EventHeaterOff
		if d.On {
			t = EventHeaterOn
		}
		d.Event = &Event{
			Timestamp:   now,
			Type:        t,
			Fill:        d.Fill,
			Distance:    distance.Value,
			Temperature: temperature.Value,
		}
	}
	h.prevOn, h.on = h.on, d.On
	return d
}

// Undo restores the output memory from before the last Evaluate.
func (h *HeaterController) Undo() {
	h.on = h.prevOn
}

// On reports the last decided output.
func (h *HeaterController) On() bool {
	return h.on
}

// HeaterOn is the stateless heater rule.
func HeaterOn(temperature, threshold float32, fill int) bool {
	return temperature < threshold && fill >= level.LowWaterPercent
}
