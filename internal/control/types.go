// Package control holds the actuator policies. Controllers are pure: they
// take readings, thresholds and a timestamp and return decisions. They never
// touch GPIO, sleep, or read the clock themselves.
package control

import "time"

// EventType names an actuator transition.
type EventType string

const (
	EventPumpOn     EventType = "PUMP_ON"
	EventPumpOff    EventType = "PUMP_OFF"
	EventPumpForced EventType = "PUMP_FORCED"
	EventHeaterOn   EventType = "HEATER_ON"
	EventHeaterOff  EventType = "HEATER_OFF"
)

// Event records one actuator transition and the inputs that caused it.
type Event struct {
	Timestamp   time.Time
	Type        EventType
	Fill        int
	Distance    float32
	Temperature float32
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	PumpOn     int
	PumpOff    int
	PumpForced int
	HeaterOn   int
	HeaterOff  int
}

func (c *EventCounts) add(t EventType) {
	switch t {
	case EventPumpOn:
		c.PumpOn++
	case EventPumpOff:
		c.PumpOff++
	case EventPumpForced:
		c.PumpForced++
	case EventHeaterOn:
		c.HeaterOn++
	case EventHeaterOff:
		c.HeaterOff++
	}
}
