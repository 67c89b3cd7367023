package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbvault/pkg/resolver"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show where a credential would be resolved from",
	Long: `Resolve a credential key the way the backup jobs do and show its
provenance: the vault, the legacy configuration, or neither.

The secret itself is never printed.

Example:
  dbvaultctl resolve --key db_1
  dbvaultctl resolve --key smtp --required`,
	Run: run(func(cmd *cobra.Command, a *app) error {
		key, _ := cmd.Flags().GetString("key")
		required, _ := cmd.Flags().GetBool("required")
		return resolveKey(os.Stdout, a.newResolver(), key, required)
	}),
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().String("key", "", "Credential key, e.g. db_1 or smtp")
	resolveCmd.Flags().Bool("required", false, "Fail when the key is in neither source")
	_ = resolveCmd.MarkFlagRequired("key")
}

func resolveKey(w io.Writer, r *resolver.Resolver, key string, required bool) error {
	res, err := r.Resolve(key, required)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Key:      %s\n", res.Key)
	fmt.Fprintf(w, "Found:    %t\n", res.Found)
	fmt.Fprintf(w, "Source:   %s\n", res.Source)
	fmt.Fprintf(w, "Reason:   %s\n", res.Reason)
	if res.Found {
		fmt.Fprintf(w, "Username: %s\n", res.Username)
	}
	return nil
}
