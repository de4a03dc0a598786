package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sweeney/reservoir-monitor/internal/app"
	"github.com/sweeney/reservoir-monitor/internal/config"
	"github.com/sweeney/reservoir-monitor/internal/gpio"
	"github.com/sweeney/reservoir-monitor/internal/input"
	"github.com/sweeney/reservoir-monitor/internal/level"
	"github.com/sweeney/reservoir-monitor/internal/sensor"
)

const probeTimeout = 2 * time.Second

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().Bool("simulate", false, "Probe the simulated tank instead of GPIO and one-wire")
	viper.BindPFlag("probe-simulate", probeCmd.Flags().Lookup("simulate"))
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Print button levels and one reading of each sensor",
	Long: `Reads every button line once, takes one distance and one temperature
measurement, prints them and exits. Actuators are left switched off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Remote.Enabled = false
		logger, _ := newLogger(cmd.ErrOrStderr())

		a, err := app.New(app.Options{
			Config:   cfg,
			Logger:   logger,
			Simulate: viper.GetBool("probe-simulate"),
			Display:  config.DisplayNone,
		})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), probeTimeout)
		defer cancel()
		return probe(ctx, cmd.OutOrStdout(), a.Hardware(), a.Thermometer(), cfg.Tank.HeightCm)
	},
}

func probe(ctx context.Context, w io.Writer, hw *gpio.Hardware, thermometer sensor.Sensor, tankHeight float32) error {
	levels, err := hw.Buttons.Levels()
	if err != nil {
		return err
	}
	for _, b := range input.Buttons {
		fmt.Fprintf(w, "%s: %s\n", b, pressedString(levels[b]))
	}

	if d, err := hw.Distance.Measure(ctx); err != nil {
		fmt.Fprintf(w, "distance: %s (%v)\n", sensor.Classify(err), err)
	} else {
		fmt.Fprintf(w, "distance: %.1f cm, fill %d%%\n", d, level.FillPercent(d, tankHeight))
	}

	temp, err := thermometer.Measure(ctx)
	if err == nil {
		err = sensor.PlausibleTemperature(temp)
	}
	if err != nil {
		fmt.Fprintf(w, "temperature: %s (%v)\n", sensor.Classify(err), err)
	} else {
		fmt.Fprintf(w, "temperature: %.1f .C\n", temp)
	}
	return nil
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
