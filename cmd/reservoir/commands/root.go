package commands

import (
	"io"
	"os"
	"strings"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sweeney/reservoir-monitor/internal/config"
	"github.com/sweeney/reservoir-monitor/internal/logging"
	"github.com/sweeney/reservoir-monitor/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   version.BinaryName,
	Short: "Reservoir level and temperature controller",
	Long: `Controls a small water reservoir: an ultrasonic sensor measures the
fill level and a one-wire probe the temperature. A pump refills the tank with
hysteresis, a heater keeps the water above a threshold and three buttons
adjust both thresholds.`,
	Version:       version.VersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	viper.SetEnvPrefix("reservoir")
	viper.AutomaticEnv()
	replacer := strings.NewReplacer("-", "_")
	viper.SetEnvKeyReplacer(replacer)

	rootCmd.PersistentFlags().StringP("config", "c", "/etc/reservoir/config.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Boolean flag to enable verbose logging")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// Execute is the main entry point for our cobra commands
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		level.Error(logging.New(os.Stderr, false)).Log("msg", "fatal", "err", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetString("config"))
}

func newLogger(w io.Writer) (kitlog.Logger, string) {
	return logging.WithBoot(logging.New(w, viper.GetBool("verbose")))
}
