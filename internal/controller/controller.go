// Package controller wires sensors, buttons, actuator policies and the
// display into the set of cooperating loops that run the reservoir.
package controller

import (
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/jonboulle/clockwork"

	"github.com/sweeney/reservoir-monitor/internal/control"
	"github.com/sweeney/reservoir-monitor/internal/display"
	"github.com/sweeney/reservoir-monitor/internal/gpio"
	"github.com/sweeney/reservoir-monitor/internal/input"
	"github.com/sweeney/reservoir-monitor/internal/level"
	"github.com/sweeney/reservoir-monitor/internal/remote"
	"github.com/sweeney/reservoir-monitor/internal/sensor"
	"github.com/sweeney/reservoir-monitor/internal/state"
)

// Deps are the collaborators of a Controller.
type Deps struct {
	TankHeightCm float32
	Distance     sensor.Sensor
	Thermometer  sensor.Sensor
	Pump         gpio.Output
	Heater       gpio.Output
	Display      display.Display
	// Buttons receives edges from every input source.
	Buttons input.Set
	Config  *state.Store
	History *control.History
	Logger  kitlog.Logger
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// Controller owns the shared state of a running reservoir.
type Controller struct {
	tankHeight float32

	distance    sensor.Slot
	temperature sensor.Slot
	distReader  *sensor.Reader
	tempReader  *sensor.Reader

	cfg       *state.Store
	actuators state.Actuators
	pump      *control.PumpController
	heater    *control.HeaterController
	pumpOut   gpio.Output
	heaterOut gpio.Output

	presenter *display.Presenter
	buttons   input.Set
	history   *control.History

	remoteMu sync.RWMutex
	remote   remote.Subscriber

	logger    kitlog.Logger
	clock     clockwork.Clock
	startTime time.Time
}

// New builds a Controller. Nothing touches hardware until Run.
func New(deps Deps) *Controller {
	c := &Controller{
		tankHeight: deps.TankHeightCm,
		cfg:        deps.Config,
		pump:       control.NewPumpController(deps.TankHeightCm),
		heater:     control.NewHeaterController(deps.TankHeightCm),
		pumpOut:    deps.Pump,
		heaterOut:  deps.Heater,
		buttons:    deps.Buttons,
		history:    deps.History,
		logger:     kitlog.With(deps.Logger, "component", "controller"),
		clock:      deps.Clock,
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.cfg == nil {
		c.cfg = state.NewStore(state.DefaultConfig())
	}
	if c.history == nil {
		c.history = control.NewHistory(control.DefaultHistorySize)
	}
	if c.buttons == nil {
		c.buttons = input.NewSet(input.DefaultWindow, nil)
	}
	c.startTime = c.clock.Now()

	c.presenter = display.NewPresenter(deps.Display, deps.Logger)
	c.distReader = sensor.NewReader("distance", deps.Distance, &c.distance, deps.Logger,
		sensor.WithClock(c.clock.Now),
		sensor.WithObserver(c.onDistance))
	c.tempReader = sensor.NewReader("temperature", deps.Thermometer, &c.temperature, deps.Logger,
		sensor.WithClock(c.clock.Now),
		sensor.WithFilter(sensor.PlausibleTemperature),
		sensor.WithObserver(c.onTemperature))
	return c
}

// Edge feeds one raw button edge into the debouncer. Safe to call from any
// goroutine; it never blocks.
func (c *Controller) Edge(b input.Button) bool {
	return c.buttons.Edge(b)
}

// SetRemote attaches the remote subscription whose connection state is
// reported in Status.
func (c *Controller) SetRemote(s remote.Subscriber) {
	c.remoteMu.Lock()
	c.remote = s
	c.remoteMu.Unlock()
}

// Config returns the current thresholds and mode.
func (c *Controller) Config() state.Config {
	return c.cfg.Snapshot()
}

// Events returns the retained actuator transitions, oldest first.
func (c *Controller) Events() []control.Event {
	return c.history.Events()
}

// Status returns a point-in-time view of the whole controller.
func (c *Controller) Status() Status {
	dist := c.distance.Load()
	s := Status{
		Config:      c.cfg.Snapshot(),
		Distance:    dist,
		Temperature: c.temperature.Load(),
		Actuators:   c.actuators.Snapshot(),
		Counts:      c.history.Counts(),
		StartTime:   c.startTime,
		Now:         c.clock.Now(),
	}
	if dist.Valid {
		s.Fill = level.FillPercent(dist.Value, c.tankHeight)
	}

	c.remoteMu.RLock()
	if c.remote != nil {
		s.RemoteEnabled = true
		s.RemoteConnected = c.remote.IsConnected()
	}
	c.remoteMu.RUnlock()
	return s
}

// Redraw repaints every row from the current state. Rows of readings that
// have never been taken stay blank.
func (c *Controller) Redraw() {
	c.presenter.RenderHeaders()
	dist, temp := c.distance.Load(), c.temperature.Load()
	switch {
	case dist.Valid && temp.Valid:
		c.presenter.RenderReadings(level.FillPercent(dist.Value, c.tankHeight), temp.Value)
	case dist.Valid:
		c.onDistance(dist)
	case temp.Valid:
		c.onTemperature(temp)
	}
	c.presenter.RenderConfig(c.cfg.Snapshot())
}

func (c *Controller) onDistance(r sensor.Reading) {
	c.presenter.RenderFill(level.FillPercent(r.Value, c.tankHeight))
}

func (c *Controller) onTemperature(r sensor.Reading) {
	c.presenter.RenderTemperature(r.Value)
}
