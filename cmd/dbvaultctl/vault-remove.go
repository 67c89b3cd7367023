package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbvault/pkg/audit"
	"github.com/doodlesbykumbi/dbvault/pkg/vault"
)

// vaultRemoveCmd represents the vault-remove command
var vaultRemoveCmd = &cobra.Command{
	Use:   "vault-remove",
	Short: "Remove a credential from the vault",
	Long: `Remove a credential from the vault.

Asks for confirmation unless --force is given.

Example:
  dbvaultctl vault-remove --id db_1
  dbvaultctl vault-remove --id db_1 --force`,
	Run: run(func(cmd *cobra.Command, a *app) error {
		id, _ := cmd.Flags().GetString("id")
		force, _ := cmd.Flags().GetBool("force")

		store, err := a.openStore()
		if err != nil {
			return err
		}
		return removeCredential(os.Stdin, os.Stdout, store, a.audit, id, force)
	}),
}

func init() {
	rootCmd.AddCommand(vaultRemoveCmd)
	vaultRemoveCmd.Flags().String("id", "", "Credential id")
	vaultRemoveCmd.Flags().Bool("force", false, "Do not ask for confirmation")
	_ = vaultRemoveCmd.MarkFlagRequired("id")
}

func removeCredential(in io.Reader, w io.Writer, store *vault.Store, sink audit.Sink, id string, force bool) error {
	if _, err := store.Metadata(id); err != nil {
		return err
	}

	if !force {
		fmt.Fprintf(w, "Remove credential '%s'? [y/N]: ", id)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(w, "Aborted")
			return nil
		}
	}

	if err := store.Remove(id); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		sink.Log(audit.VaultEvent{Operation: "remove", CredentialID: id, ErrorMessage: err.Error()})
		return err
	}
	sink.Log(audit.VaultEvent{Operation: "remove", CredentialID: id, Success: true})

	fmt.Fprintf(w, "Removed credential '%s'\n", id)
	return nil
}
