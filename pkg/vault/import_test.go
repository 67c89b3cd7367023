package vault

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportBatchPartialFailure(t *testing.T) {
	store := newLoadedStore(t)

	result := store.ImportBatch([]BatchEntry{
		{ID: "a", Username: "u", Password: "p"},
		{Username: "u2"},
	})

	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Contains(t, result.Failures[0].Reason, "id")
	assert.Contains(t, result.Failures[0].Reason, "password")

	got, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, Secret{Username: "u", Secret: "p"}, got)
}

func TestImportBatchCountsUpdates(t *testing.T) {
	store := newLoadedStore(t)
	require.NoError(t, store.Set("db_1", "old", "old", "kept"))

	result := store.ImportBatch([]BatchEntry{
		{ID: "db_1", Username: "backup", Password: "new"},
		{ID: "db_2", Username: "backup", Password: "two", Description: "replica"},
	})

	assert.Equal(t, ImportResult{Added: 1, Updated: 1}, result)

	got, err := store.Get("db_1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Secret)

	meta, err := store.Metadata("db_1")
	require.NoError(t, err)
	assert.Equal(t, "kept", meta.Description)
}

func TestImportJSON(t *testing.T) {
	store := newLoadedStore(t)

	input := `[
		{"id": "db_1", "username": "backup", "password": "one", "description": "primary"},
		{"id": "db_2", "username": "backup"},
		"garbage",
		{"id": 7, "username": "x", "password": "y"},
		{"id": "smtp", "username": "mailer", "password": "two"}
	]`

	result, err := store.ImportJSON(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 3, result.Failed)
	require.Len(t, result.Failures, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{
		result.Failures[0].Index,
		result.Failures[1].Index,
		result.Failures[2].Index,
	})
	assert.Equal(t, "db_2", result.Failures[0].ID)
	assert.Equal(t, []string{"db_1", "smtp"}, store.List())
}

func TestImportJSONMalformed(t *testing.T) {
	store := newLoadedStore(t)

	for name, input := range map[string]string{
		"not json":         "{{",
		"object":           `{"id": "db_1"}`,
		"truncated":        `[{"id": "db_1"`,
		"null":             "null",
		"trailing garbage": `[{"id": "db_1", "username": "u", "password": "p"}] garbage`,
		"two arrays":       `[{"id": "db_1", "username": "u", "password": "p"}][{"id": "db_2"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			result, err := store.ImportJSON(strings.NewReader(input))
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, "ValidationError", KindOf(err))
			assert.Equal(t, ImportResult{}, result)
		})
	}
	assert.Empty(t, store.List(), "a rejected file imports nothing")
}

func TestImportJSONEmptyArray(t *testing.T) {
	store := newLoadedStore(t)

	result, err := store.ImportJSON(strings.NewReader(" [] \n"))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{}, result)
}

func TestImportFailureNeverLeaksPassword(t *testing.T) {
	store := newLoadedStore(t)

	result := store.ImportBatch([]BatchEntry{{ID: "db_1", Password: "topsecret"}})
	require.Len(t, result.Failures, 1)
	assert.NotContains(t, result.Failures[0].Reason, "topsecret")
}
