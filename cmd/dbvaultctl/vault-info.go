package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbvault/pkg/hostkey"
	"github.com/doodlesbykumbi/dbvault/pkg/vault"
)

// vaultInfoCmd represents the vault-info command
var vaultInfoCmd = &cobra.Command{
	Use:   "vault-info",
	Short: "Show the vault file and the host key it is bound to",
	Long: `Show the vault file location, permissions and credential count together
with the host identity and a fingerprint of the derived key.

The fingerprint identifies the key without revealing it. Two hosts that
print different fingerprints cannot read each other's vault.`,
	Run: run(func(cmd *cobra.Command, a *app) error {
		identity, err := a.hostIdentity()
		if err != nil {
			return err
		}
		store, err := a.newStore()
		if err != nil {
			return err
		}
		return showVaultInfo(os.Stdout, store, identity)
	}),
}

func init() {
	rootCmd.AddCommand(vaultInfoCmd)
}

func showVaultInfo(w io.Writer, store *vault.Store, identity string) error {
	loadErr := store.Load()

	info, err := store.Info()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Vault file:       %s\n", info.Path)
	if !info.Exists {
		fmt.Fprintln(w, "Status:           not created yet")
	} else {
		fmt.Fprintf(w, "Permissions:      %s\n", info.Mode)
		if info.Mode != vault.FileMode {
			fmt.Fprintf(w, "                  WARNING: expected %s, the next save will fix this\n", vault.FileMode)
		}
		fmt.Fprintf(w, "Size:             %d bytes\n", info.Size)
		fmt.Fprintf(w, "Modified:         %s\n", info.ModTime.Format(time.RFC3339))
	}

	fmt.Fprintf(w, "Host identity:    %s\n", identity)
	fmt.Fprintf(w, "Key fingerprint:  %s\n", hostkey.Fingerprint(hostkey.DeriveKey(identity)))

	if loadErr != nil {
		fmt.Fprintf(w, "Readable:         no (%s)\n", errorKind(loadErr))
	} else {
		fmt.Fprintln(w, "Readable:         yes")
		fmt.Fprintf(w, "Format version:   %s\n", info.Version)
		fmt.Fprintf(w, "Credentials:      %d\n", info.Count)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Note: the vault file is not locked. Do not run two commands that modify")
	fmt.Fprintln(w, "the vault at the same time; the last save wins.")
	return nil
}
