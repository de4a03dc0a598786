package controller

import (
	"time"

	"github.com/sweeney/reservoir-monitor/internal/control"
	"github.com/sweeney/reservoir-monitor/internal/sensor"
	"github.com/sweeney/reservoir-monitor/internal/state"
)

// Status is a point-in-time view of the controller.
// It is a value type and safe to keep after the call returns.
type Status struct {
	Config      state.Config
	Distance    sensor.Reading
	Temperature sensor.Reading
	// Fill is zero until the first valid distance reading.
	Fill            int
	Actuators       state.ActuatorState
	Counts          control.EventCounts
	RemoteEnabled   bool
	RemoteConnected bool
	StartTime       time.Time
	Now             time.Time
}

// Uptime returns the duration since the controller was created.
func (s Status) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}
