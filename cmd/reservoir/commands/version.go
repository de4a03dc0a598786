package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sweeney/reservoir-monitor/internal/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.BinaryName, version.VersionString())
	},
}
