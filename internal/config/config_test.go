package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/reservoir-monitor/internal/state"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reservoir.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, float32(13.5), cfg.Tank.HeightCm)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timing.Sensor)
	assert.Equal(t, time.Second, cfg.Timing.Pump)
	assert.Equal(t, 2*time.Second, cfg.Timing.Heater)
	assert.Equal(t, 50*time.Millisecond, cfg.Timing.Buttons)
	assert.Equal(t, 200*time.Millisecond, cfg.Timing.Debounce)
	assert.Equal(t, 15*time.Minute, cfg.Timing.Heartbeat)
	assert.Equal(t, state.DefaultConfig(), cfg.InitialState())
	assert.Equal(t, DisplayLog, cfg.Display.Backend)
	assert.False(t, cfg.Remote.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
name: greenhouse
tank:
  height_cm: 40
timing:
  sensor: 2s
  debounce: 150ms
thresholds:
  temperature: 22
  fill: 60
  mode: TEMPERATURE
pins:
  pump: 20
  heater: 21
  pump_active_low: false
display:
  backend: serial
  serial_port: /dev/ttyAMA0
remote:
  enabled: true
  broker: tcp://broker:1883
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "greenhouse", cfg.Name)
	assert.Equal(t, float32(40), cfg.Tank.HeightCm)
	assert.Equal(t, 2*time.Second, cfg.Timing.Sensor)
	assert.Equal(t, 150*time.Millisecond, cfg.Timing.Debounce)
	assert.Equal(t, time.Second, cfg.Timing.Pump, "unset field keeps default")
	assert.Equal(t, state.Config{TemperatureThreshold: 22, FillThreshold: 60, Mode: state.ModeTemperature}, cfg.InitialState())
	assert.Equal(t, DisplaySerial, cfg.Display.Backend)
	assert.Equal(t, 115200, cfg.Display.Baud)
	assert.True(t, cfg.Remote.Enabled)
	assert.Equal(t, "reservoir", cfg.Remote.Prefix)

	g := cfg.GPIO()
	assert.Equal(t, 20, g.Pump)
	assert.Equal(t, 21, g.Heater)
	assert.False(t, g.PumpActiveLow)
	assert.Equal(t, "gpiochip0", g.Chip)
	assert.Equal(t, cfg.Sensor.MaxDistanceCm, g.MaxDistanceCm)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "tank: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"negative tank", "tank:\n  height_cm: -3\n", "height_cm"},
		{"bad mode", "thresholds:\n  mode: VOLUME\n", "thresholds.mode"},
		{"fill off step", "thresholds:\n  fill: 13\n", "thresholds.fill"},
		{"fill above range", "thresholds:\n  fill: 105\n", "thresholds.fill"},
		{"fill below range", "thresholds:\n  fill: 5\n", "thresholds.fill"},
		{"fractional temperature", "thresholds:\n  temperature: 22.5\n", "thresholds.temperature"},
		{"temperature above range", "thresholds:\n  temperature: 51\n", "thresholds.temperature"},
		{"bad backend", "display:\n  backend: hdmi\n", "display.backend"},
		{"shared pin", "pins:\n  pump: 5\n", "share line 5"},
		{"negative interval", "timing:\n  pump: -1s\n", "timing.pump"},
		{"negative heartbeat", "timing:\n  heartbeat: -1m\n", "timing.heartbeat"},
		{"remote without broker", "remote:\n  enabled: true\n  broker: \"\"\n", "remote.broker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ZeroHeartbeatDisables(t *testing.T) {
	cfg, err := Load(writeConfig(t, "timing:\n  heartbeat: 0s\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.Timing.Heartbeat)
	assert.Equal(t, time.Second, cfg.Timing.Pump)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Name = "roundtrip"
	cfg.Timing.Heater = 3 * time.Second

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
