package internal

import (
	"context"
	"testing"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/reservoir-monitor/internal/control"
	"github.com/sweeney/reservoir-monitor/internal/controller"
	"github.com/sweeney/reservoir-monitor/internal/display"
	"github.com/sweeney/reservoir-monitor/internal/input"
	"github.com/sweeney/reservoir-monitor/internal/remote"
	"github.com/sweeney/reservoir-monitor/internal/sim"
	"github.com/sweeney/reservoir-monitor/internal/state"
)

const wait = 2 * time.Second

type rig struct {
	t      *testing.T
	tank   *sim.Tank
	ctrl   *controller.Controller
	screen *display.Recorder
	sub    *remote.FakeSubscriber

	distance, temperature, pump, heater chan time.Time
	buttons                             map[input.Button]chan time.Time
}

func newRig(t *testing.T, p sim.Params) *rig {
	t.Helper()
	r := &rig{
		t:           t,
		tank:        sim.NewTank(p, 7),
		screen:      display.NewRecorder(),
		distance:    make(chan time.Time),
		temperature: make(chan time.Time),
		pump:        make(chan time.Time),
		heater:      make(chan time.Time),
		buttons:     map[input.Button]chan time.Time{},
	}
	hw := r.tank.Hardware()
	r.ctrl = controller.New(controller.Deps{
		TankHeightCm: p.HeightCm,
		Distance:     hw.Distance,
		Thermometer:  r.tank.Thermometer(),
		Pump:         hw.Pump,
		Heater:       hw.Heater,
		Display:      r.screen,
		Buttons:      input.NewSet(input.DefaultWindow, nil),
		Config:       state.NewStore(state.DefaultConfig()),
		History:      control.NewHistory(control.DefaultHistorySize),
		Logger:       kitlog.NewNopLogger(),
	})
	r.sub = remote.NewFakeSubscriber("reservoir", "tank", r.ctrl.Edge)
	r.ctrl.SetRemote(r.sub)
	for _, b := range input.Buttons {
		r.buttons[b] = make(chan time.Time)
	}
	return r
}

func (r *rig) start() func() {
	ticks := controller.Ticks{
		Distance:    r.distance,
		Temperature: r.temperature,
		Pump:        r.pump,
		Heater:      r.heater,
		Buttons:     map[input.Button]<-chan time.Time{},
	}
	for b, ch := range r.buttons {
		ticks.Buttons[b] = ch
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.ctrl.Run(ctx, ticks) }()

	require.Eventually(r.t, func() bool {
		s := r.ctrl.Status()
		return s.Distance.Valid && s.Temperature.Valid
	}, wait, time.Millisecond)

	return func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(r.t, err)
		case <-time.After(wait):
			r.t.Fatal("controller did not stop")
		}
	}
}

// measure polls the distance sensor and waits for the new reading.
func (r *rig) measure() {
	r.t.Helper()
	before := r.ctrl.Status().Distance.At
	r.distance <- time.Now()
	require.Eventually(r.t, func() bool {
		return r.ctrl.Status().Distance.At != before
	}, wait, time.Millisecond)
}

func (r *rig) evaluatePump(want bool) {
	r.t.Helper()
	r.pump <- time.Now()
	require.Eventually(r.t, func() bool { return r.tank.Snapshot().Pump == want }, wait, time.Millisecond)
}

func (r *rig) eventTypes() []control.EventType {
	var types []control.EventType
	for _, e := range r.ctrl.Events() {
		types = append(types, e.Type)
	}
	return types
}

func TestIntegrationRefillCycle(t *testing.T) {
	r := newRig(t, sim.Params{HeightCm: 13.5, InitialFill: 5, InitialTemperature: 20, Ambient: 20, Inflow: 20})
	stop := r.start()

	r.evaluatePump(true)

	r.tank.Step(5 * time.Second)
	r.measure()
	assert.Equal(t, "100%", r.screen.Line(display.RowFill))
	r.evaluatePump(false)

	stop()
	assert.Equal(t, []control.EventType{control.EventPumpOn, control.EventPumpOff}, r.eventTypes())
}

func TestIntegrationRemotePressAdjustsThreshold(t *testing.T) {
	r := newRig(t, sim.Params{HeightCm: 13.5, InitialFill: 50, InitialTemperature: 20, Ambient: 20})
	stop := r.start()
	defer stop()

	require.True(t, r.sub.Deliver(remote.Topic("reservoir", "tank", input.Increment)))
	r.buttons[input.Increment] <- time.Now()
	require.Eventually(t, func() bool { return r.ctrl.Config().FillThreshold == 15 }, wait, time.Millisecond)
	require.Eventually(t, func() bool { return r.screen.Line(display.RowFillThreshold) == "15% <-" }, wait, time.Millisecond)

	assert.False(t, r.sub.Deliver("reservoir/tank/button/unknown"))
	assert.True(t, r.ctrl.Status().RemoteConnected)
}

func TestIntegrationOverRangeForcesPump(t *testing.T) {
	r := newRig(t, sim.Params{HeightCm: 13.5, InitialFill: 100, InitialTemperature: 20, Ambient: 20})
	stop := r.start()
	defer stop()

	r.evaluatePump(false)

	r.tank.SetFault(sim.FaultOverRange)
	r.measure()
	r.evaluatePump(true)

	r.tank.SetFault(sim.FaultNone)
	r.measure()
	r.evaluatePump(false)

	assert.Equal(t, []control.EventType{control.EventPumpForced, control.EventPumpOff}, r.eventTypes())
}

func TestIntegrationSensorFaultHoldsLastReading(t *testing.T) {
	r := newRig(t, sim.Params{HeightCm: 13.5, InitialFill: 5, InitialTemperature: 20, Ambient: 20})
	stop := r.start()
	defer stop()

	r.evaluatePump(true)
	before := r.ctrl.Status().Distance
	row := r.screen.Line(display.RowFill)

	r.tank.SetFault(sim.FaultEchoTimeout)
	r.distance <- time.Now()
	r.evaluatePump(true)

	assert.Equal(t, before, r.ctrl.Status().Distance)
	assert.Equal(t, row, r.screen.Line(display.RowFill))
}

func TestIntegrationHeaterWarmsColdTank(t *testing.T) {
	r := newRig(t, sim.Params{HeightCm: 13.5, InitialFill: 80, InitialTemperature: 5, Ambient: 5, HeatRate: 1})
	stop := r.start()

	r.heater <- time.Now()
	require.Eventually(t, func() bool { return r.tank.Snapshot().Heater }, wait, time.Millisecond)
	assert.Equal(t, "5.0 .C", r.screen.Line(display.RowTemperature))

	stop()
	s := r.tank.Snapshot()
	assert.False(t, s.Pump)
	assert.False(t, s.Heater)
	assert.Equal(t, []control.EventType{control.EventHeaterOn}, r.eventTypes())
}
