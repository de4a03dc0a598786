package state

import "sync/atomic"

// ActuatorState is a point-in-time view of both actuators.
type ActuatorState struct {
	Pump   bool
	Heater bool
}

// Actuators records the commanded actuator state. Each bit has exactly one
// writer (its control loop); any goroutine may read.
type Actuators struct {
	pump   atomic.Bool
	heater atomic.Bool
}

// SetPump records the pump state and reports whether it changed.
func (a *Actuators) SetPump(on bool) bool {
	return a.pump.Swap(on) != on
}

// SetHeater records the heater state and reports whether it changed.
func (a *Actuators) SetHeater(on bool) bool {
	return a.heater.Swap(on) != on
}

// Snapshot returns the current actuator state.
func (a *Actuators) Snapshot() ActuatorState {
	return ActuatorState{Pump: a.pump.Load(), Heater: a.heater.Load()}
}

// OnOff renders a boolean actuator state.
func OnOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
