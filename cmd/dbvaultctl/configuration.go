package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbvault/pkg/config"
)

// configurationCmd represents the configuration command
var configurationCmd = &cobra.Command{
	Use:   "configuration",
	Short: "Manage dbvault configuration",
	Long:  `Manage dbvault configuration settings.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'configuration' requires a subcommand (show)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show dbvault configuration attributes and their sources",
	Long: `Show dbvault configuration attributes and their sources.

Passwords from the legacy sections are masked.

Config file location: /etc/dbvault/dbvault.yml (or DBVAULT_CONFIG_PATH)

Example:
  dbvaultctl configuration show
  dbvaultctl configuration show --output json`,
	Run: run(func(cmd *cobra.Command, a *app) error {
		output, _ := cmd.Flags().GetString("output")
		return showConfiguration(os.Stdout, a.cfg, output)
	}),
}

func init() {
	rootCmd.AddCommand(configurationCmd)
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showConfiguration(w io.Writer, cfg *config.Config, output string) error {
	if output == "json" {
		jsonOutput, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, jsonOutput)
		return nil
	}

	fmt.Fprint(w, cfg.FormatText())
	return nil
}
