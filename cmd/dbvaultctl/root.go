package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dbvaultctl",
	Short: "Manage the host-bound credential vault of the backup system",
	Long: `Manage the host-bound credential vault of the backup system.

Credentials are encrypted with a key derived from the host identity. A vault
file copied to another host cannot be opened there.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: $DBVAULT_CONFIG_PATH/dbvault.yml)")
	rootCmd.PersistentFlags().String("audit-log", "", "Append RFC5424 audit lines to this file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		exitOnError(err)
	}
}

func main() {
	Execute()
}
