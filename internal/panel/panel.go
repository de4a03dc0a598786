// Package panel is a desktop front panel for a simulated reservoir: the
// display rows, the three buttons, actuator indicators, the draw-off rate,
// distance sensor fault injection and the actuator event log.
package panel

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/sweeney/reservoir-monitor/internal/control"
	"github.com/sweeney/reservoir-monitor/internal/controller"
	"github.com/sweeney/reservoir-monitor/internal/input"
	"github.com/sweeney/reservoir-monitor/internal/sim"
	"github.com/sweeney/reservoir-monitor/internal/state"
)

// RefreshInterval is how often indicators and the event log are redrawn.
const RefreshInterval = 250 * time.Millisecond

// MaxDraw is the upper end of the draw-off slider, percent per second.
const MaxDraw = 5

var faultNames = map[string]sim.Fault{
	"none":         sim.FaultNone,
	"over range":   sim.FaultOverRange,
	"ping timeout": sim.FaultPingTimeout,
	"echo timeout": sim.FaultEchoTimeout,
}

// Panel binds a controller and its simulated tank to fyne widgets.
type Panel struct {
	ctrl   *controller.Controller
	tank   *sim.Tank
	screen *Screen

	buttons map[input.Button]*widget.Button
	pump    *widget.Label
	heater  *widget.Label
	water   *widget.Label
	draw    *widget.Slider
	fault   *widget.Select
	events  *widget.Label

	content fyne.CanvasObject
}

// New builds the panel widgets. tank may be nil, which hides the simulator
// controls.
func New(ctrl *controller.Controller, tank *sim.Tank, screen *Screen) *Panel {
	p := &Panel{
		ctrl:    ctrl,
		tank:    tank,
		screen:  screen,
		buttons: map[input.Button]*widget.Button{},
		pump:    widget.NewLabel(""),
		heater:  widget.NewLabel(""),
		water:   widget.NewLabel(""),
		events:  widget.NewLabel(""),
	}
	p.events.TextStyle = fyne.TextStyle{Monospace: true}

	labels := map[input.Button]string{
		input.Decrement:  "-",
		input.Increment:  "+",
		input.ChangeMode: "Mode",
	}
	row := container.NewGridWithColumns(len(input.Buttons))
	for _, b := range input.Buttons {
		b := b
		btn := widget.NewButton(labels[b], func() { p.ctrl.Edge(b) })
		p.buttons[b] = btn
		row.Add(btn)
	}

	side := container.NewVBox(p.pump, p.heater)
	if tank != nil {
		p.draw = widget.NewSlider(0, MaxDraw)
		p.draw.Step = 0.1
		p.draw.SetValue(float64(tank.Snapshot().Draw))
		p.draw.OnChanged = func(v float64) { p.tank.SetDraw(float32(v)) }

		options := []string{"none", "over range", "ping timeout", "echo timeout"}
		p.fault = widget.NewSelect(options, func(name string) { p.tank.SetFault(faultNames[name]) })
		p.fault.SetSelected("none")

		side.Add(p.water)
		side.Add(widget.NewLabel("Draw-off (%/s)"))
		side.Add(p.draw)
		side.Add(widget.NewLabel("Distance sensor fault"))
		side.Add(p.fault)
	}

	p.content = container.NewBorder(
		nil,
		container.NewVScroll(p.events),
		nil,
		side,
		container.NewBorder(nil, row, nil, nil, screen.Object()),
	)
	p.Refresh()
	return p
}

// Content returns the root canvas object.
func (p *Panel) Content() fyne.CanvasObject {
	return p.content
}

// Press taps one of the panel buttons.
func (p *Panel) Press(b input.Button) {
	if btn, ok := p.buttons[b]; ok && btn.OnTapped != nil {
		btn.OnTapped()
	}
}

// Refresh redraws the indicators and the event log. Must run on the fyne
// event loop.
func (p *Panel) Refresh() {
	s := p.ctrl.Status()
	p.pump.SetText("Pump: " + state.OnOff(s.Actuators.Pump))
	p.heater.SetText("Heater: " + state.OnOff(s.Actuators.Heater))
	if p.tank != nil {
		t := p.tank.Snapshot()
		p.water.SetText(fmt.Sprintf("Water: %.0f%% %.1f C", t.Fill, t.Temperature))
	}
	p.events.SetText(FormatEvents(p.ctrl.Events()))
}

// Run redraws the panel until ctx is done.
func (p *Panel) Run(ctx context.Context) error {
	t := time.NewTicker(RefreshInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			fyne.Do(p.Refresh)
		}
	}
}

// FormatEvents renders events newest first, one per line.
func FormatEvents(events []control.Event) string {
	var out string
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		out += fmt.Sprintf("%s %-11s fill=%d%% distance=%.1f temperature=%.1f\n",
			e.Timestamp.Format("15:04:05"), e.Type, e.Fill, e.Distance, e.Temperature)
	}
	return out
}
