package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sweeney/reservoir-monitor/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [file]",
	Short: "Write the default configuration",
	Long: `Writes a configuration file holding every default value. Without an
argument the effective configuration loaded from --config is validated and
summarised instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if err := config.Default().Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "name=%s tank_cm=%.1f display=%s remote=%t mode=%s fill_threshold=%d temperature_threshold=%.0f\n",
			cfg.Name, cfg.Tank.HeightCm, cfg.Display.Backend, cfg.Remote.Enabled,
			cfg.Thresholds.Mode, cfg.Thresholds.Fill, cfg.Thresholds.Temperature)
		return nil
	},
}
