package hostkey

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, DeriveKey("backup-01"), DeriveKey("backup-01"))
	})

	t.Run("distinct identities yield distinct keys", func(t *testing.T) {
		assert.NotEqual(t, DeriveKey("backup-01"), DeriveKey("backup-02"))
		assert.NotEqual(t, DeriveKey("Backup-01"), DeriveKey("backup-01"))
	})

	t.Run("key length matches AES-256", func(t *testing.T) {
		assert.Len(t, DeriveKey("h"), KeySize)
	})
}

func TestIdentity(t *testing.T) {
	t.Run("override wins", func(t *testing.T) {
		id, err := Identity("  vault-host  ")
		require.NoError(t, err)
		assert.Equal(t, "vault-host", id)
	})

	t.Run("falls back to hostname", func(t *testing.T) {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			t.Skip("hostname unavailable")
		}
		id, err := Identity("")
		require.NoError(t, err)
		assert.Equal(t, hostname, id)
	})
}

func TestForHostRejectsEmptyIdentity(t *testing.T) {
	_, err := ForHost("")
	assert.ErrorIs(t, err, ErrEmptyIdentity)
}

func TestFingerprint(t *testing.T) {
	key := DeriveKey("backup-01")
	fp := Fingerprint(key)

	assert.Len(t, fp, 16)
	assert.Equal(t, fp, Fingerprint(DeriveKey("backup-01")))
	assert.NotEqual(t, fp, Fingerprint(DeriveKey("backup-02")))
}
