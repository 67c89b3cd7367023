package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbvault/pkg/audit"
	"github.com/doodlesbykumbi/dbvault/pkg/resolver"
	"github.com/doodlesbykumbi/dbvault/pkg/vault"
)

const migratedDescription = "migrated from legacy configuration"

// vaultMigrateCmd represents the vault-migrate command
var vaultMigrateCmd = &cobra.Command{
	Use:   "vault-migrate",
	Short: "Copy plaintext credentials from the config file into the vault",
	Long: `Copy the plaintext credentials of the config file into the vault.

Every instance with a password becomes "db_<id>" and the smtp section becomes
"smtp". Credentials already in the vault are left alone unless --overwrite
is given. Remove the plaintext passwords from the config file afterwards.`,
	Run: run(func(cmd *cobra.Command, a *app) error {
		overwrite, _ := cmd.Flags().GetBool("overwrite")

		store, err := a.openStore()
		if err != nil {
			return err
		}
		return migrateLegacy(os.Stdout, store, a.audit, a.cfg.LegacyCredentials(), overwrite)
	}),
}

func init() {
	rootCmd.AddCommand(vaultMigrateCmd)
	vaultMigrateCmd.Flags().Bool("overwrite", false, "Replace credentials that are already in the vault")
}

func migrateLegacy(w io.Writer, store *vault.Store, sink audit.Sink, legacy resolver.LegacyMap, overwrite bool) error {
	if len(legacy) == 0 {
		fmt.Fprintln(w, "No plaintext credentials in the configuration")
		return nil
	}

	var migrated, skipped int
	for _, key := range slices.Sorted(maps.Keys(legacy)) {
		_, err := store.Metadata(key)
		switch {
		case err == nil && !overwrite:
			fmt.Fprintf(w, "  skip     %s (already in vault)\n", key)
			skipped++
			continue
		case err != nil && !errors.Is(err, vault.ErrNotFound):
			return err
		}

		cred := legacy[key]
		if err := store.Set(key, cred.Username, cred.Secret, migratedDescription); err != nil {
			return fmt.Errorf("migrating %s: %w", key, err)
		}
		fmt.Fprintf(w, "  migrate  %s\n", key)
		migrated++
	}

	if migrated > 0 {
		if err := store.Save(); err != nil {
			sink.Log(audit.VaultEvent{Operation: "migrate", Count: migrated, ErrorMessage: err.Error()})
			return err
		}
	}
	sink.Log(audit.VaultEvent{Operation: "migrate", Count: migrated, Success: true})

	fmt.Fprintf(w, "Migrated %d credential(s), skipped %d\n", migrated, skipped)
	return nil
}
