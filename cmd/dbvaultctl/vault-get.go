package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbvault/pkg/vault"
)

const maskedPassword = "********"

// vaultGetCmd represents the vault-get command
var vaultGetCmd = &cobra.Command{
	Use:   "vault-get",
	Short: "Show a credential from the vault",
	Long: `Show a credential from the vault.

The password is masked unless --show-password is given.

Example:
  dbvaultctl vault-get --id db_1
  dbvaultctl vault-get --id smtp --show-password`,
	Run: run(func(cmd *cobra.Command, a *app) error {
		id, _ := cmd.Flags().GetString("id")
		showPassword, _ := cmd.Flags().GetBool("show-password")

		store, err := a.openStore()
		if err != nil {
			return err
		}
		return showCredential(os.Stdout, store, id, showPassword)
	}),
}

func init() {
	rootCmd.AddCommand(vaultGetCmd)
	vaultGetCmd.Flags().String("id", "", "Credential id")
	vaultGetCmd.Flags().Bool("show-password", false, "Print the password in clear text")
	_ = vaultGetCmd.MarkFlagRequired("id")
}

func showCredential(w io.Writer, store *vault.Store, id string, showPassword bool) error {
	cred, err := store.Credential(id)
	if err != nil {
		return err
	}

	password := maskedPassword
	if showPassword {
		password = cred.Secret
	}

	fmt.Fprintf(w, "ID:          %s\n", cred.ID)
	fmt.Fprintf(w, "Username:    %s\n", cred.Username)
	fmt.Fprintf(w, "Password:    %s\n", password)
	fmt.Fprintf(w, "Description: %s\n", cred.Description)
	fmt.Fprintf(w, "Created:     %s\n", cred.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Updated:     %s\n", cred.UpdatedAt.Format(time.RFC3339))
	return nil
}
