// Package config loads the controller configuration from YAML. Missing
// fields fall back to defaults; thresholds loaded here are only the power-on
// values and are never written back.
package config

import (
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/reservoir-monitor/internal/gpio"
	"github.com/sweeney/reservoir-monitor/internal/input"
	"github.com/sweeney/reservoir-monitor/internal/sim"
	"github.com/sweeney/reservoir-monitor/internal/state"
)

// Display backends.
const (
	DisplayLog     = "log"
	DisplaySSD1306 = "ssd1306"
	DisplaySerial  = "serial"
	DisplayNone    = "none"
)

// Config represents the application configuration.
type Config struct {
	Name       string           `yaml:"name"`
	Tank       TankConfig       `yaml:"tank"`
	Timing     TimingConfig     `yaml:"timing"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Pins       PinsConfig       `yaml:"pins"`
	Sensor     SensorConfig     `yaml:"sensor"`
	Display    DisplayConfig    `yaml:"display"`
	Remote     RemoteConfig     `yaml:"remote"`
	Sim        SimConfig        `yaml:"sim"`
	History    int              `yaml:"history"` // control events kept in memory
}

// TankConfig describes the reservoir geometry.
type TankConfig struct {
	HeightCm float32 `yaml:"height_cm"`
}

// TimingConfig holds loop cadences and the debounce window.
type TimingConfig struct {
	Sensor   time.Duration `yaml:"sensor"`
	Pump     time.Duration `yaml:"pump"`
	Heater   time.Duration `yaml:"heater"`
	Buttons  time.Duration `yaml:"buttons"`
	Debounce time.Duration `yaml:"debounce"`

	// Heartbeat is the status log interval. Zero disables it.
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// ThresholdsConfig holds the power-on thresholds and mode.
type ThresholdsConfig struct {
	Temperature float32 `yaml:"temperature"`
	Fill        int     `yaml:"fill"`
	Mode        string  `yaml:"mode"`
}

// PinsConfig maps functions to GPIO line offsets.
type PinsConfig struct {
	Chip            string `yaml:"chip"`
	Trigger         int    `yaml:"trigger"`
	Echo            int    `yaml:"echo"`
	Pump            int    `yaml:"pump"`
	Heater          int    `yaml:"heater"`
	Decrement       int    `yaml:"decrement"`
	Increment       int    `yaml:"increment"`
	ChangeMode      int    `yaml:"change_mode"`
	PumpActiveLow   bool   `yaml:"pump_active_low"`
	HeaterActiveLow bool   `yaml:"heater_active_low"`
}

// SensorConfig holds sensor driver settings.
type SensorConfig struct {
	MaxDistanceCm float32 `yaml:"max_distance_cm"`
	W1Dir         string  `yaml:"w1_dir"`
	W1Device      string  `yaml:"w1_device"` // empty selects the first DS18B20
}

// DisplayConfig selects and configures the display backend.
type DisplayConfig struct {
	Backend    string `yaml:"backend"`
	I2CBus     string `yaml:"i2c_bus"`
	I2CAddr    uint16 `yaml:"i2c_addr"`
	SerialPort string `yaml:"serial_port"`
	Baud       int    `yaml:"baud"`
}

// RemoteConfig configures inbound MQTT button presses.
type RemoteConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	Prefix   string `yaml:"prefix"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SimConfig tunes the simulated tank.
type SimConfig struct {
	InitialFill        float32 `yaml:"initial_fill"`        // percent
	InitialTemperature float32 `yaml:"initial_temperature"` // C
	Ambient            float32 `yaml:"ambient"`             // C
	Inflow             float32 `yaml:"inflow"`              // percent per second with the pump on
	Draw               float32 `yaml:"draw"`                // percent per second of consumption
	HeatRate           float32 `yaml:"heat_rate"`           // C per second with the heater on, full tank
	LossRate           float32 `yaml:"loss_rate"`           // fraction of the ambient gap lost per second
	Noise              float32 `yaml:"noise"`               // distance noise amplitude, cm
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	pins := gpio.DefaultConfig()
	initial := state.DefaultConfig()
	return &Config{
		Name: "tank",
		Tank: TankConfig{
			HeightCm: 13.5,
		},
		Timing: TimingConfig{
			Sensor:    1500 * time.Millisecond,
			Pump:      time.Second,
			Heater:    2 * time.Second,
			Buttons:   50 * time.Millisecond,
			Debounce:  input.DefaultWindow,
			Heartbeat: 15 * time.Minute,
		},
		Thresholds: ThresholdsConfig{
			Temperature: initial.TemperatureThreshold,
			Fill:        initial.FillThreshold,
			Mode:        string(initial.Mode),
		},
		Pins: PinsConfig{
			Chip:            pins.Chip,
			Trigger:         pins.Trigger,
			Echo:            pins.Echo,
			Pump:            pins.Pump,
			Heater:          pins.Heater,
			Decrement:       pins.Decrement,
			Increment:       pins.Increment,
			ChangeMode:      pins.ChangeMode,
			PumpActiveLow:   pins.PumpActiveLow,
			HeaterActiveLow: pins.HeaterActiveLow,
		},
		Sensor: SensorConfig{
			MaxDistanceCm: pins.MaxDistanceCm,
			W1Dir:         "/sys/bus/w1/devices",
		},
		Display: DisplayConfig{
			Backend:    DisplayLog,
			I2CAddr:    0x3C,
			SerialPort: "/dev/ttyUSB0",
			Baud:       115200,
		},
		Remote: RemoteConfig{
			Broker: "tcp://localhost:1883",
			Prefix: "reservoir",
		},
		Sim: SimConfig{
			InitialFill:        40,
			InitialTemperature: 12,
			Ambient:            8,
			Inflow:             4,
			Draw:               0.5,
			HeatRate:           0.2,
			LossRate:           0.002,
			Noise:              0.05,
		},
		History: 64,
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; missing fields are filled from them.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}
	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return errors.Wrap(os.WriteFile(filename, data, 0644), "write config file")
}

// ensureDefaults fills zero values that have no meaningful zero.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Name == "" {
		c.Name = def.Name
	}
	if c.Tank.HeightCm == 0 {
		c.Tank.HeightCm = def.Tank.HeightCm
	}

	if c.Timing.Sensor == 0 {
		c.Timing.Sensor = def.Timing.Sensor
	}
	if c.Timing.Pump == 0 {
		c.Timing.Pump = def.Timing.Pump
	}
	if c.Timing.Heater == 0 {
		c.Timing.Heater = def.Timing.Heater
	}
	if c.Timing.Buttons == 0 {
		c.Timing.Buttons = def.Timing.Buttons
	}
	if c.Timing.Debounce == 0 {
		c.Timing.Debounce = def.Timing.Debounce
	}

	if c.Thresholds.Temperature == 0 {
		c.Thresholds.Temperature = def.Thresholds.Temperature
	}
	if c.Thresholds.Fill == 0 {
		c.Thresholds.Fill = def.Thresholds.Fill
	}
	if c.Thresholds.Mode == "" {
		c.Thresholds.Mode = def.Thresholds.Mode
	}

	if c.Pins.Chip == "" {
		c.Pins.Chip = def.Pins.Chip
	}
	if c.Sensor.MaxDistanceCm == 0 {
		c.Sensor.MaxDistanceCm = def.Sensor.MaxDistanceCm
	}
	if c.Sensor.W1Dir == "" {
		c.Sensor.W1Dir = def.Sensor.W1Dir
	}

	if c.Display.Backend == "" {
		c.Display.Backend = def.Display.Backend
	}
	if c.Display.I2CAddr == 0 {
		c.Display.I2CAddr = def.Display.I2CAddr
	}
	if c.Display.Baud == 0 {
		c.Display.Baud = def.Display.Baud
	}

	if c.Remote.Prefix == "" {
		c.Remote.Prefix = def.Remote.Prefix
	}
	if c.History == 0 {
		c.History = def.History
	}
}

// Validate rejects configurations the controller cannot run with.
func (c *Config) Validate() error {
	if c.Tank.HeightCm <= 0 {
		return errors.Errorf("tank.height_cm must be positive, got %v", c.Tank.HeightCm)
	}
	for name, d := range map[string]time.Duration{
		"sensor":   c.Timing.Sensor,
		"pump":     c.Timing.Pump,
		"heater":   c.Timing.Heater,
		"buttons":  c.Timing.Buttons,
		"debounce": c.Timing.Debounce,
	} {
		if d <= 0 {
			return errors.Errorf("timing.%s must be positive, got %v", name, d)
		}
	}
	if c.Timing.Heartbeat < 0 {
		return errors.Errorf("timing.heartbeat must not be negative, got %v", c.Timing.Heartbeat)
	}

	fill := c.Thresholds.Fill
	if fill < state.MinFillThreshold || fill > state.MaxFillThreshold || (fill-state.MinFillThreshold)%state.FillStep != 0 {
		return errors.Errorf("thresholds.fill must be a multiple of %d in [%d, %d], got %d",
			state.FillStep, state.MinFillThreshold, state.MaxFillThreshold, fill)
	}
	temp := c.Thresholds.Temperature
	steps := (temp - state.MinTemperatureThreshold) / state.TemperatureStep
	if temp < state.MinTemperatureThreshold || temp > state.MaxTemperatureThreshold || steps != math32.Floor(steps) {
		return errors.Errorf("thresholds.temperature must be a whole step of %v in [%v, %v], got %v",
			state.TemperatureStep, state.MinTemperatureThreshold, state.MaxTemperatureThreshold, temp)
	}

	switch state.Mode(c.Thresholds.Mode) {
	case state.ModeDistance, state.ModeTemperature:
	default:
		return errors.Errorf("thresholds.mode must be %s or %s, got %q", state.ModeDistance, state.ModeTemperature, c.Thresholds.Mode)
	}

	switch c.Display.Backend {
	case DisplayLog, DisplaySSD1306, DisplaySerial, DisplayNone:
	default:
		return errors.Errorf("unknown display.backend %q", c.Display.Backend)
	}

	seen := map[int]string{}
	for name, pin := range map[string]int{
		"trigger":     c.Pins.Trigger,
		"echo":        c.Pins.Echo,
		"pump":        c.Pins.Pump,
		"heater":      c.Pins.Heater,
		"decrement":   c.Pins.Decrement,
		"increment":   c.Pins.Increment,
		"change_mode": c.Pins.ChangeMode,
	} {
		if pin < 0 {
			return errors.Errorf("pins.%s must not be negative", name)
		}
		if other, dup := seen[pin]; dup {
			return errors.Errorf("pins.%s and pins.%s share line %d", name, other, pin)
		}
		seen[pin] = name
	}

	if c.Remote.Enabled && c.Remote.Broker == "" {
		return errors.New("remote.broker is required when remote.enabled is set")
	}
	return nil
}

// GPIO returns the line mapping for the gpio package.
func (c *Config) GPIO() gpio.Config {
	return gpio.Config{
		Chip:            c.Pins.Chip,
		Trigger:         c.Pins.Trigger,
		Echo:            c.Pins.Echo,
		Pump:            c.Pins.Pump,
		Heater:          c.Pins.Heater,
		Decrement:       c.Pins.Decrement,
		Increment:       c.Pins.Increment,
		ChangeMode:      c.Pins.ChangeMode,
		PumpActiveLow:   c.Pins.PumpActiveLow,
		HeaterActiveLow: c.Pins.HeaterActiveLow,
		MaxDistanceCm:   c.Sensor.MaxDistanceCm,
	}
}

// InitialState returns the power-on thresholds and mode.
func (c *Config) InitialState() state.Config {
	return state.Config{
		TemperatureThreshold: c.Thresholds.Temperature,
		FillThreshold:        c.Thresholds.Fill,
		Mode:                 state.Mode(c.Thresholds.Mode),
	}
}

// SimParams returns the simulated tank parameters.
func (c *Config) SimParams() sim.Params {
	return sim.Params{
		HeightCm:           c.Tank.HeightCm,
		InitialFill:        c.Sim.InitialFill,
		InitialTemperature: c.Sim.InitialTemperature,
		Ambient:            c.Sim.Ambient,
		Inflow:             c.Sim.Inflow,
		Draw:               c.Sim.Draw,
		HeatRate:           c.Sim.HeatRate,
		LossRate:           c.Sim.LossRate,
		Noise:              c.Sim.Noise,
	}
}
