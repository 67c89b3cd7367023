package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbvault/pkg/audit"
	"github.com/doodlesbykumbi/dbvault/pkg/vault"
)

// vaultAddCmd represents the vault-add command
var vaultAddCmd = &cobra.Command{
	Use:   "vault-add",
	Short: "Add or update a credential in the vault",
	Long: `Add or update a credential in the vault.

Credential ids follow the resolver's naming: "db_<instance id>" for database
instances and "smtp" for the mail transport.

With --from-file, a JSON array of {"id", "username", "password",
"description"} objects is imported. Invalid entries are reported and
skipped; the valid ones are still saved.

Example:
  dbvaultctl vault-add --id db_1 --username backup --password 's3cr3t'
  dbvaultctl vault-add --from-file credentials.json`,
	Run: run(func(cmd *cobra.Command, a *app) error {
		var opts addOptions
		opts.id, _ = cmd.Flags().GetString("id")
		opts.username, _ = cmd.Flags().GetString("username")
		opts.password, _ = cmd.Flags().GetString("password")
		opts.description, _ = cmd.Flags().GetString("description")
		opts.fromFile, _ = cmd.Flags().GetString("from-file")

		store, err := a.openStore()
		if err != nil {
			return err
		}
		return addCredential(os.Stdout, store, a.audit, opts)
	}),
}

func init() {
	rootCmd.AddCommand(vaultAddCmd)
	vaultAddCmd.Flags().String("id", "", "Credential id, e.g. db_1 or smtp")
	vaultAddCmd.Flags().String("username", "", "Username")
	vaultAddCmd.Flags().String("password", "", "Password or secret")
	vaultAddCmd.Flags().String("description", "", "Free-form description")
	vaultAddCmd.Flags().String("from-file", "", "Import credentials from a JSON file")
	vaultAddCmd.MarkFlagsMutuallyExclusive("from-file", "id")
}

type addOptions struct {
	id, username, password, description string
	fromFile                            string
}

func addCredential(w io.Writer, store *vault.Store, sink audit.Sink, opts addOptions) error {
	if opts.fromFile != "" {
		return importCredentials(w, store, sink, opts.fromFile)
	}

	_, err := store.Metadata(opts.id)
	operation := "add"
	if err == nil {
		operation = "update"
	}

	if err := store.Set(opts.id, opts.username, opts.password, opts.description); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		sink.Log(audit.VaultEvent{Operation: operation, CredentialID: opts.id, ErrorMessage: err.Error()})
		return err
	}
	sink.Log(audit.VaultEvent{Operation: operation, CredentialID: opts.id, Success: true})

	if operation == "add" {
		fmt.Fprintf(w, "Added credential '%s'\n", opts.id)
	} else {
		fmt.Fprintf(w, "Updated credential '%s'\n", opts.id)
	}
	return nil
}

func importCredentials(w io.Writer, store *vault.Store, sink audit.Sink, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: opening import file: %w", vault.ErrIO, err)
	}
	defer f.Close()

	result, err := store.ImportJSON(f)
	if err != nil {
		return err
	}

	changed := result.Added + result.Updated
	if changed > 0 {
		if err := store.Save(); err != nil {
			sink.Log(audit.VaultEvent{Operation: "import", Count: changed, ErrorMessage: err.Error()})
			return err
		}
	}
	sink.Log(audit.VaultEvent{Operation: "import", Count: changed, Success: result.Failed == 0})

	fmt.Fprintf(w, "Imported: %d added, %d updated, %d failed\n", result.Added, result.Updated, result.Failed)
	for _, failure := range result.Failures {
		id := failure.ID
		if id == "" {
			id = "(no id)"
		}
		fmt.Fprintf(w, "  entry %d %s: %s\n", failure.Index, id, failure.Reason)
	}

	if result.Failed > 0 {
		return fmt.Errorf("%w: %d of %d entries were not imported", vault.ErrValidation, result.Failed, changed+result.Failed)
	}
	return nil
}
