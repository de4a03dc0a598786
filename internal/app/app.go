// Package app assembles a running reservoir from configuration: hardware or
// the simulated tank, the display backend, the optional remote button
// subscription and the controller that ties them together.
package app

import (
	"context"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/reservoir-monitor/internal/config"
	"github.com/sweeney/reservoir-monitor/internal/control"
	"github.com/sweeney/reservoir-monitor/internal/controller"
	"github.com/sweeney/reservoir-monitor/internal/display"
	"github.com/sweeney/reservoir-monitor/internal/gpio"
	"github.com/sweeney/reservoir-monitor/internal/input"
	"github.com/sweeney/reservoir-monitor/internal/remote"
	"github.com/sweeney/reservoir-monitor/internal/sensor"
	"github.com/sweeney/reservoir-monitor/internal/sim"
	"github.com/sweeney/reservoir-monitor/internal/state"
	"github.com/sweeney/reservoir-monitor/internal/w1"
)

// SimStep is the physics step of the simulated tank.
const SimStep = 100 * time.Millisecond

// Options selects how the App is assembled.
type Options struct {
	Config *config.Config
	Logger kitlog.Logger
	// Boot is the per-process id; its prefix becomes the MQTT client id.
	Boot string
	// Simulate replaces GPIO and one-wire with the simulated tank.
	Simulate bool
	// Display overrides Config.Display.Backend when set.
	Display string
	// Screens are extra displays mirroring the configured backend.
	Screens []display.Display
	// Seed fixes the simulator noise sequence.
	Seed int64
	// Clock drives every loop; defaults to the real clock.
	Clock clockwork.Clock
}

// App is an assembled reservoir.
type App struct {
	cfg    *config.Config
	logger kitlog.Logger
	clock  clockwork.Clock

	hw          *gpio.Hardware
	thermometer sensor.Sensor
	screen      display.Display
	tank        *sim.Tank
	sub         remote.Subscriber
	ctrl        *controller.Controller
}

// New opens every configured resource. On error everything opened so far is
// released again.
func New(opts Options) (_ *App, err error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	a := &App{cfg: cfg, logger: kitlog.With(logger, "component", "app"), clock: clock}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	start := clock.Now()
	buttons := input.NewSet(cfg.Timing.Debounce, func() time.Duration { return clock.Since(start) })
	onEdge := func(b input.Button) { buttons.Edge(b) }

	if opts.Simulate {
		a.tank = sim.NewTank(cfg.SimParams(), opts.Seed)
		a.hw = a.tank.Hardware()
		a.thermometer = a.tank.Thermometer()
	} else {
		if a.hw, err = gpio.Open(cfg.GPIO(), onEdge); err != nil {
			return nil, errors.Wrap(err, "open gpio")
		}
		th, err := w1.Open(cfg.Sensor.W1Dir, cfg.Sensor.W1Device)
		if err != nil {
			return nil, errors.Wrap(err, "open thermometer")
		}
		level.Info(a.logger).Log("msg", "thermometer", "id", th.ID())
		a.thermometer = th
	}

	backend := cfg.Display.Backend
	if opts.Display != "" {
		backend = opts.Display
	}
	primary, err := OpenDisplay(cfg, backend, logger)
	if err != nil {
		return nil, err
	}
	screens := display.Multi(opts.Screens)
	if primary != nil {
		screens = append(display.Multi{primary}, screens...)
	}
	a.screen = screens

	a.ctrl = controller.New(controller.Deps{
		TankHeightCm: cfg.Tank.HeightCm,
		Distance:     a.hw.Distance,
		Thermometer:  a.thermometer,
		Pump:         a.hw.Pump,
		Heater:       a.hw.Heater,
		Display:      a.screen,
		Buttons:      buttons,
		Config:       state.NewStore(cfg.InitialState()),
		History:      control.NewHistory(cfg.History),
		Logger:       logger,
		Clock:        clock,
	})

	if cfg.Remote.Enabled {
		clientID := "reservoir-" + cfg.Name
		if len(opts.Boot) >= 8 {
			clientID += "-" + opts.Boot[:8]
		}
		sub, err := remote.NewRealSubscriber(remote.Options{
			Broker:   cfg.Remote.Broker,
			Prefix:   cfg.Remote.Prefix,
			Name:     cfg.Name,
			ClientID: clientID,
			Username: cfg.Remote.Username,
			Password: cfg.Remote.Password,
		}, a.ctrl.Edge, logger)
		if err != nil {
			return nil, errors.Wrap(err, "connect remote")
		}
		a.sub = sub
		a.ctrl.SetRemote(sub)
	}

	return a, nil
}

// OpenDisplay opens the named display backend. DisplayNone yields nil.
func OpenDisplay(cfg *config.Config, backend string, logger kitlog.Logger) (display.Display, error) {
	switch backend {
	case config.DisplayNone:
		return nil, nil
	case config.DisplayLog:
		return display.NewLogDisplay(logger), nil
	case config.DisplaySSD1306:
		d, err := display.OpenSSD1306(cfg.Display.I2CBus, cfg.Display.I2CAddr)
		if err != nil {
			return nil, errors.Wrap(err, "open ssd1306")
		}
		return d, nil
	case config.DisplaySerial:
		d, err := display.OpenSerial(cfg.Display.SerialPort, cfg.Display.Baud)
		if err != nil {
			return nil, errors.Wrap(err, "open serial display")
		}
		return d, nil
	}
	return nil, errors.Errorf("unknown display backend %q", backend)
}

// Controller returns the controller driving this App.
func (a *App) Controller() *controller.Controller {
	return a.ctrl
}

// Tank returns the simulated tank, or nil when running on hardware.
func (a *App) Tank() *sim.Tank {
	return a.tank
}

// Hardware returns the actuator and sensor lines in use.
func (a *App) Hardware() *gpio.Hardware {
	return a.hw
}

// Thermometer returns the temperature sensor in use.
func (a *App) Thermometer() sensor.Sensor {
	return a.thermometer
}

// Run drives the controller, and the simulated tank if any, until ctx is
// done.
func (a *App) Run(ctx context.Context) error {
	ticks, stop := controller.NewTickers(a.clock, controller.Timing{
		Sensor:    a.cfg.Timing.Sensor,
		Pump:      a.cfg.Timing.Pump,
		Heater:    a.cfg.Timing.Heater,
		Buttons:   a.cfg.Timing.Buttons,
		Heartbeat: a.cfg.Timing.Heartbeat,
	})
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if a.tank != nil {
		step := a.clock.NewTicker(SimStep)
		defer step.Stop()
		g.Go(func() error { return a.tank.Run(ctx, step.Chan(), SimStep) })
	}
	g.Go(func() error { return a.ctrl.Run(ctx, ticks) })
	return g.Wait()
}

// Close releases everything New opened. Actuators are switched off first.
func (a *App) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	if a.sub != nil {
		keep(a.sub.Close())
	}
	if a.hw != nil {
		keep(a.hw.Close())
	}
	if a.screen != nil {
		keep(a.screen.Close())
	}
	if first != nil {
		level.Warn(a.logger).Log("msg", "close", "err", first)
	}
	return first
}
