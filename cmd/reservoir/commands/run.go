package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/kit/log/level"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sweeney/reservoir-monitor/internal/app"
	"github.com/sweeney/reservoir-monitor/internal/version"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("simulate", false, "Run against the simulated tank instead of GPIO and one-wire")
	runCmd.Flags().String("display", "", "Override the display backend (log, ssd1306, serial, none)")

	viper.BindPFlag("simulate", runCmd.Flags().Lookup("simulate"))
	viper.BindPFlag("display", runCmd.Flags().Lookup("display"))
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the controller",
	Long: `Starts the sensor, actuator and button loops and runs until interrupted.
Both actuators are switched off before exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, boot := newLogger(os.Stderr)

		a, err := app.New(app.Options{
			Config:   cfg,
			Logger:   logger,
			Boot:     boot,
			Simulate: viper.GetBool("simulate"),
			Display:  viper.GetString("display"),
		})
		if err != nil {
			return err
		}
		defer a.Close()

		level.Info(logger).Log("msg", "boot", "version", version.Version, "name", cfg.Name,
			"config", viper.GetString("config"), "simulate", viper.GetBool("simulate"))

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return a.Run(ctx)
	},
}
