package controller

import (
	"context"
	"time"

	"github.com/go-kit/kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/reservoir-monitor/internal/control"
	"github.com/sweeney/reservoir-monitor/internal/input"
	"github.com/sweeney/reservoir-monitor/internal/state"
)

// Run starts every loop and blocks until ctx is done. On the way out both
// actuators are switched off.
func (c *Controller) Run(ctx context.Context, ticks Ticks) error {
	c.switchOff()
	c.Redraw()

	cfg := c.cfg.Snapshot()
	level.Info(c.logger).Log("msg", "started", "tank_cm", c.tankHeight,
		"mode", cfg.Mode, "fill_threshold", cfg.FillThreshold, "temperature_threshold", cfg.TemperatureThreshold)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.distReader.Run(ctx, ticks.Distance) })
	g.Go(func() error { return c.tempReader.Run(ctx, ticks.Temperature) })
	g.Go(func() error { return c.every(ctx, ticks.Pump, c.EvaluatePump) })
	g.Go(func() error { return c.every(ctx, ticks.Heater, c.EvaluateHeater) })
	for _, b := range input.Buttons {
		b := b
		g.Go(func() error {
			return c.every(ctx, ticks.Buttons[b], func() { c.HandleButton(b) })
		})
	}
	g.Go(func() error { return c.every(ctx, ticks.Heartbeat, c.heartbeat) })

	err := g.Wait()
	c.switchOff()
	level.Info(c.logger).Log("msg", "stopped", "pump", "OFF", "heater", "OFF")
	return err
}

func (c *Controller) every(ctx context.Context, tick <-chan time.Time, fn func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			fn()
		}
	}
}

// EvaluatePump runs one pump control cycle.
func (c *Controller) EvaluatePump() {
	d := c.pump.Evaluate(c.distance.Load(), c.cfg.Snapshot().FillThreshold, c.clock.Now())
	if d.Forced {
		level.Warn(c.logger).Log("msg", "distance beyond tank, forcing pump on",
			"distance", c.distance.Load().Value, "limit", c.tankHeight+control.OverRangeMarginCm)
	}
	if err := c.pumpOut.Set(d.On); err != nil {
		level.Error(c.logger).Log("msg", "drive pump", "on", d.On, "err", err)
		c.pump.Undo()
		return
	}
	c.actuators.SetPump(d.On)
	c.record(d.Event)
}

// EvaluateHeater runs one heater control cycle.
func (c *Controller) EvaluateHeater() {
	d := c.heater.Evaluate(c.temperature.Load(), c.distance.Load(), c.cfg.Snapshot().TemperatureThreshold, c.clock.Now())
	if err := c.heaterOut.Set(d.On); err != nil {
		level.Error(c.logger).Log("msg", "drive heater", "on", d.On, "err", err)
		c.heater.Undo()
		return
	}
	c.actuators.SetHeater(d.On)
	c.record(d.Event)
}

// HandleButton consumes a latched press of b, if any, and applies it.
func (c *Controller) HandleButton(b input.Button) {
	d, ok := c.buttons[b]
	if !ok {
		return
	}
	if _, pressed := d.Consume(); !pressed {
		return
	}

	var cfg state.Config
	switch b {
	case input.Decrement:
		cfg = c.cfg.Decrement()
	case input.Increment:
		cfg = c.cfg.Increment()
	case input.ChangeMode:
		cfg = c.cfg.ToggleMode()
	}
	c.presenter.RenderConfig(cfg)
	level.Info(c.logger).Log("msg", "settings changed", "button", b, "mode", cfg.Mode,
		"fill_threshold", cfg.FillThreshold, "temperature_threshold", cfg.TemperatureThreshold)
}

func (c *Controller) record(ev *control.Event) {
	if ev == nil {
		return
	}
	c.history.Record(*ev)
	level.Info(c.logger).Log("msg", "actuator", "event", ev.Type, "fill", ev.Fill,
		"distance", ev.Distance, "temperature", ev.Temperature)
}

func (c *Controller) heartbeat() {
	c.Redraw()
	s := c.Status()
	level.Info(c.logger).Log("msg", "heartbeat", "uptime", s.Uptime().Round(time.Second),
		"fill", s.Fill, "temperature", s.Temperature.Value,
		"pump", state.OnOff(s.Actuators.Pump), "heater", state.OnOff(s.Actuators.Heater),
		"pump_on", s.Counts.PumpOn, "pump_forced", s.Counts.PumpForced, "heater_on", s.Counts.HeaterOn)
}

func (c *Controller) switchOff() {
	if err := c.pumpOut.Set(false); err != nil {
		level.Error(c.logger).Log("msg", "switch off pump", "err", err)
	}
	if err := c.heaterOut.Set(false); err != nil {
		level.Error(c.logger).Log("msg", "switch off heater", "err", err)
	}
	c.actuators.SetPump(false)
	c.actuators.SetHeater(false)
}
