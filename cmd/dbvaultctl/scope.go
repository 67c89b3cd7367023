package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbvault/pkg/scope"
)

// scopeCmd represents the scope command
var scopeCmd = &cobra.Command{
	Use:   "scope",
	Short: "Compute which databases of an instance get backed up",
	Long: `Compute the effective backup scope of an instance from its configured
whitelist (database), blacklist (db_ignore) and system exclusions against
the databases the server currently has.

Example:
  dbvaultctl scope --instance 1 --available app,billing,mysql,sys`,
	Run: run(func(cmd *cobra.Command, a *app) error {
		instance, _ := cmd.Flags().GetString("instance")
		available, _ := cmd.Flags().GetStringSlice("available")

		rule, err := a.cfg.ScopeRule(instance)
		if err != nil {
			return err
		}
		return showScope(os.Stdout, a.logger, rule, available)
	}),
}

func init() {
	rootCmd.AddCommand(scopeCmd)
	scopeCmd.Flags().String("instance", "", "Instance id")
	scopeCmd.Flags().StringSlice("available", nil, "Databases present on the server")
	_ = scopeCmd.MarkFlagRequired("instance")
}

func showScope(w io.Writer, logger zerolog.Logger, rule scope.Rule, available []string) error {
	result := rule.Apply(available)

	for _, name := range result.MissingWhitelisted {
		logger.Warn().Str("instance", result.InstanceID).Str("database", name).Msg("whitelisted database not found on server")
	}
	for _, name := range result.ExcludedWhitelisted {
		logger.Warn().Str("instance", result.InstanceID).Str("database", name).Msg("whitelisted database is a system database, skipped")
	}

	if len(result.Databases) == 0 {
		fmt.Fprintf(w, "Instance %s: nothing to back up\n", result.InstanceID)
		return nil
	}
	fmt.Fprintf(w, "Instance %s: %d database(s)\n", result.InstanceID, len(result.Databases))
	fmt.Fprintf(w, "  %s\n", strings.Join(result.Databases, "\n  "))
	return nil
}
