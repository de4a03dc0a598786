package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/reservoir-monitor/internal/config"
	"github.com/sweeney/reservoir-monitor/internal/gpio"
	"github.com/sweeney/reservoir-monitor/internal/input"
	"github.com/sweeney/reservoir-monitor/internal/sensor"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProbePrintsButtonsAndReadings(t *testing.T) {
	hw := &gpio.Hardware{
		Buttons: gpio.NewFakeButtons(map[input.Button]bool{input.Increment: true}),
		Distance: &gpio.FakeRanger{MeasureFunc: func(ctx context.Context) (float32, error) {
			return 6.75, nil
		}},
	}
	var out bytes.Buffer

	err := probe(context.Background(), &out, hw, sensor.NewFakeSensor(sensor.Sample{Value: 21.25}), 13.5)
	require.NoError(t, err)

	assert.Equal(t, "DECREMENT: RELEASED\n"+
		"INCREMENT: PRESSED\n"+
		"CHANGE_MODE: RELEASED\n"+
		"distance: 6.8 cm, fill 50%\n"+
		"temperature: 21.2 .C\n", out.String())
}

func TestProbeReportsSensorErrors(t *testing.T) {
	hw := &gpio.Hardware{
		Buttons: gpio.NewFakeButtons(map[input.Button]bool{}),
		Distance: &gpio.FakeRanger{MeasureFunc: func(ctx context.Context) (float32, error) {
			return 0, sensor.ErrPingTimeout
		}},
	}
	var out bytes.Buffer

	err := probe(context.Background(), &out, hw, sensor.NewFakeSensor(sensor.Sample{Value: 85}), 13.5)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "distance: PING_TIMEOUT")
	assert.Contains(t, out.String(), "temperature: IMPLAUSIBLE")
}

func TestProbeButtonError(t *testing.T) {
	buttons := gpio.NewFakeButtons()
	buttons.ReadError = assert.AnError
	err := probe(context.Background(), &bytes.Buffer{}, &gpio.Hardware{Buttons: buttons}, nil, 13.5)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestConfigCommandWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reservoir.yaml")

	out, err := execute(t, "config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestConfigCommandSummarisesEffectiveConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	out, err := execute(t, "--config", missing, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "name=tank tank_cm=13.5 display=log")
	assert.Contains(t, out, "mode=DISTANCE fill_threshold=10")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "reservoir UNKNOWN")
}
