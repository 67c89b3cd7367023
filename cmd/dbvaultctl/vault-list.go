package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbvault/pkg/vault"
)

// vaultListCmd represents the vault-list command
var vaultListCmd = &cobra.Command{
	Use:   "vault-list",
	Short: "List credential ids in the vault",
	Long: `List credential ids in the vault with their description and last update.

No secret is decrypted to produce the listing.`,
	Run: run(func(cmd *cobra.Command, a *app) error {
		store, err := a.openStore()
		if err != nil {
			return err
		}
		return listCredentials(os.Stdout, store)
	}),
}

func init() {
	rootCmd.AddCommand(vaultListCmd)
}

func listCredentials(w io.Writer, store *vault.Store) error {
	ids := store.List()
	if len(ids) == 0 {
		fmt.Fprintln(w, "No credentials in vault")
		return nil
	}

	fmt.Fprintf(w, "%-24s %-26s %s\n", "ID", "UPDATED", "DESCRIPTION")
	fmt.Fprintf(w, "%-24s %-26s %s\n", "--", "-------", "-----------")
	for _, id := range ids {
		meta, err := store.Metadata(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-24s %-26s %s\n", meta.ID, meta.UpdatedAt.Format(time.RFC3339), meta.Description)
	}
	return nil
}
