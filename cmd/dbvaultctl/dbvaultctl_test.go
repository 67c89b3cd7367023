package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/dbvault/pkg/audit"
	"github.com/doodlesbykumbi/dbvault/pkg/config"
	"github.com/doodlesbykumbi/dbvault/pkg/hostkey"
	"github.com/doodlesbykumbi/dbvault/pkg/resolver"
	"github.com/doodlesbykumbi/dbvault/pkg/retention"
	"github.com/doodlesbykumbi/dbvault/pkg/scope"
	"github.com/doodlesbykumbi/dbvault/pkg/vault"
)

type recordingSink struct {
	events []audit.Event
}

func (s *recordingSink) Log(event audit.Event) {
	s.events = append(s.events, event)
}

func testStore(t *testing.T) *vault.Store {
	t.Helper()
	cipher, err := hostkey.ForHost("backup-01")
	require.NoError(t, err)
	store := vault.New(filepath.Join(t.TempDir(), "vault.enc"), cipher)
	require.NoError(t, store.Load())
	return store
}

func reopen(t *testing.T, store *vault.Store) *vault.Store {
	t.Helper()
	cipher, err := hostkey.ForHost("backup-01")
	require.NoError(t, err)
	reloaded := vault.New(store.Path(), cipher)
	require.NoError(t, reloaded.Load())
	return reloaded
}

func TestAddCredential(t *testing.T) {
	store := testStore(t)
	sink := &recordingSink{}
	var out bytes.Buffer

	err := addCredential(&out, store, sink, addOptions{id: "db_1", username: "backup", password: "s3cr3t", description: "primary"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Added credential 'db_1'")

	err = addCredential(&out, store, sink, addOptions{id: "db_1", username: "backup", password: "rotated"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Updated credential 'db_1'")

	got, err := reopen(t, store).Get("db_1")
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.Secret)

	require.Len(t, sink.events, 2)
	assert.Equal(t, "update", sink.events[1].(audit.VaultEvent).Operation)
	assert.NotContains(t, out.String(), "s3cr3t")
}

func TestAddCredentialValidation(t *testing.T) {
	store := testStore(t)

	err := addCredential(&bytes.Buffer{}, store, &recordingSink{}, addOptions{id: "db_1", username: "backup"})
	assert.ErrorIs(t, err, vault.ErrValidation)
	assert.Equal(t, "Error (ValidationError): ", formatError(err)[:len("Error (ValidationError): ")])
}

func TestImportCredentials(t *testing.T) {
	store := testStore(t)
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "db_1", "username": "backup", "password": "one"},
		{"username": "orphan", "password": "two"}
	]`), 0o600))
	var out bytes.Buffer

	err := addCredential(&out, store, &recordingSink{}, addOptions{fromFile: path})
	assert.ErrorIs(t, err, vault.ErrValidation, "partial failure exits non-zero")
	assert.Contains(t, out.String(), "1 added, 0 updated, 1 failed")
	assert.Contains(t, out.String(), "entry 1 (no id)")
	assert.NotContains(t, out.String(), "two")

	assert.Equal(t, []string{"db_1"}, reopen(t, store).List(), "valid entries are saved")
}

func TestShowCredentialMasksPassword(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Set("smtp", "mailer", "hunter2", "relay"))

	var out bytes.Buffer
	require.NoError(t, showCredential(&out, store, "smtp", false))
	assert.Contains(t, out.String(), "mailer")
	assert.Contains(t, out.String(), maskedPassword)
	assert.NotContains(t, out.String(), "hunter2")

	out.Reset()
	require.NoError(t, showCredential(&out, store, "smtp", true))
	assert.Contains(t, out.String(), "hunter2")

	err := showCredential(&out, store, "db_9", false)
	assert.ErrorIs(t, err, vault.ErrNotFound)
	assert.Equal(t, "NotFoundError", errorKind(err))
}

func TestListCredentials(t *testing.T) {
	store := testStore(t)
	var out bytes.Buffer

	require.NoError(t, listCredentials(&out, store))
	assert.Contains(t, out.String(), "No credentials")

	require.NoError(t, store.Set("smtp", "mailer", "hunter2", "relay"))
	require.NoError(t, store.Set("db_1", "backup", "s3cr3t", "primary"))
	out.Reset()
	require.NoError(t, listCredentials(&out, store))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "db_1"))
	assert.True(t, strings.HasPrefix(lines[3], "smtp"))
	assert.NotContains(t, out.String(), "hunter2")
}

func TestRemoveCredential(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Set("db_1", "backup", "s3cr3t", ""))
	sink := &recordingSink{}
	var out bytes.Buffer

	require.NoError(t, removeCredential(strings.NewReader("n\n"), &out, store, sink, "db_1", false))
	assert.Contains(t, out.String(), "Aborted")
	assert.Equal(t, []string{"db_1"}, store.List())

	require.NoError(t, removeCredential(strings.NewReader("yes\n"), &out, store, sink, "db_1", false))
	assert.Empty(t, reopen(t, store).List())
	require.Len(t, sink.events, 1)

	err := removeCredential(strings.NewReader(""), &out, store, sink, "db_1", true)
	assert.ErrorIs(t, err, vault.ErrNotFound)
}

func TestShowVaultInfo(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Set("db_1", "backup", "s3cr3t", ""))
	require.NoError(t, store.Save())

	var out bytes.Buffer
	require.NoError(t, showVaultInfo(&out, store, "backup-01"))
	assert.Contains(t, out.String(), "Credentials:      1")
	assert.Contains(t, out.String(), hostkey.Fingerprint(hostkey.DeriveKey("backup-01")))
	assert.Contains(t, out.String(), "-rw-------")

	other, err := hostkey.ForHost("backup-02")
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, showVaultInfo(&out, vault.New(store.Path(), other), "backup-02"))
	assert.Contains(t, out.String(), "Readable:         no (DecryptionError)")
}

func TestMigrateLegacy(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Set("smtp", "mailer", "vault-smtp", "already there"))
	legacy := resolver.LegacyMap{
		"db_1": {Username: "backup", Secret: "db1-plaintext"},
		"smtp": {Username: "mailer", Secret: "smtp-plaintext"},
	}
	var out bytes.Buffer

	require.NoError(t, migrateLegacy(&out, store, &recordingSink{}, legacy, false))
	assert.Contains(t, out.String(), "Migrated 1 credential(s), skipped 1")

	reloaded := reopen(t, store)
	got, err := reloaded.Get("db_1")
	require.NoError(t, err)
	assert.Equal(t, "db1-plaintext", got.Secret)
	got, err = reloaded.Get("smtp")
	require.NoError(t, err)
	assert.Equal(t, "vault-smtp", got.Secret)

	out.Reset()
	require.NoError(t, migrateLegacy(&out, store, &recordingSink{}, legacy, true))
	got, err = reopen(t, store).Get("smtp")
	require.NoError(t, err)
	assert.Equal(t, "smtp-plaintext", got.Secret)
	assert.NotContains(t, out.String(), "plaintext")
}

func TestResolveKey(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Set("db_1", "backup", "s3cr3t", ""))
	r := resolver.New(resolver.Available(store), resolver.LegacyMap{
		"smtp": {Username: "mailer", Secret: "hunter2"},
	})
	var out bytes.Buffer

	require.NoError(t, resolveKey(&out, r, "db_1", true))
	assert.Contains(t, out.String(), "Source:   vault")
	assert.Contains(t, out.String(), "Reason:   vault_hit")

	out.Reset()
	require.NoError(t, resolveKey(&out, r, "smtp", true))
	assert.Contains(t, out.String(), "Source:   legacy_fallback")
	assert.Contains(t, out.String(), "Reason:   vault_miss")
	assert.NotContains(t, out.String(), "hunter2")

	err := resolveKey(&out, r, "db_9", true)
	assert.Equal(t, "NotFoundError", errorKind(err))
}

func TestShowScope(t *testing.T) {
	var out, logs bytes.Buffer
	logger := zerolog.New(&logs)
	rule := scope.NewRule("1", []string{"app", "gone", "mysql"}, nil, nil)

	require.NoError(t, showScope(&out, logger, rule, []string{"app", "billing", "mysql"}))
	assert.Contains(t, out.String(), "Instance 1: 1 database(s)")
	assert.Contains(t, out.String(), "app")
	assert.NotContains(t, out.String(), "billing")
	assert.Contains(t, logs.String(), `"database":"gone"`)
	assert.Contains(t, logs.String(), `"database":"mysql"`)
}

func TestApplyRetention(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "1", "app")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	for d := 3; d <= 7; d++ {
		name := fmt.Sprintf("app_202603%02d_020000.sql.gz", d)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	policy := retention.Policy{DailyKeep: 2}
	sink := &recordingSink{}
	var out bytes.Buffer

	require.NoError(t, applyRetention(&out, sink, root, policy, true, nil))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 5, "dry run deletes nothing")
	assert.Contains(t, out.String(), "Keep 2, delete 3")

	out.Reset()
	require.NoError(t, applyRetention(&out, sink, root, policy, false, nil))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Contains(t, out.String(), "Deleted 3")

	require.Len(t, sink.events, 2)
	assert.True(t, sink.events[0].(audit.RetentionEvent).DryRun)
	assert.Equal(t, 3, sink.events[1].(audit.RetentionEvent).Deleted)
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("wrap: %w", vault.ErrDecryption), "DecryptionError"},
		{vault.ErrNotLoaded, "IOError"},
		{hostkey.ErrEmptyIdentity, "ValidationError"},
		{fmt.Errorf("%w: negative", retention.ErrInvalidPolicy), "ValidationError"},
		{fmt.Errorf("unknown flag: --bogus"), "Error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorKind(tt.err), tt.err.Error())
	}
	assert.Equal(t, "Error (IOError): vault I/O failed: vault not loaded", formatError(vault.ErrNotLoaded))
}

func TestShowConfiguration(t *testing.T) {
	t.Setenv("DBVAULT_VAULT_PATH", "/tmp/vault.enc")
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), config.ConfigFileName))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, showConfiguration(&out, cfg, "text"))
	assert.Contains(t, out.String(), "/tmp/vault.enc")
	assert.Contains(t, out.String(), "environment")

	out.Reset()
	require.NoError(t, showConfiguration(&out, cfg, "json"))
	assert.Contains(t, out.String(), `"config_file"`)
}
