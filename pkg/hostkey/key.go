package hostkey

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	keyDerivationSalt = "dbvault-host-bound-vault"
	keyDerivationInfo = "vault-encryption-v1"
)

// ErrEmptyIdentity is returned when no host identity could be determined.
var ErrEmptyIdentity = errors.New("host identity is empty")

// DeriveKey returns the vault key for the given host identity. The same
// identity always yields the same key. identity must be non-empty; callers
// validate that with Identity.
func DeriveKey(identity string) []byte {
	reader := hkdf.New(sha256.New, []byte(identity), []byte(keyDerivationSalt), []byte(keyDerivationInfo))

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		// HKDF-SHA256 can emit up to 8160 bytes, KeySize is far below that.
		panic(fmt.Sprintf("hostkey: hkdf read failed: %v", err))
	}
	return key
}

// Identity returns override when set, otherwise the local hostname.
func Identity(override string) (string, error) {
	if id := strings.TrimSpace(override); id != "" {
		return id, nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to read hostname: %w", err)
	}
	if strings.TrimSpace(hostname) == "" {
		return "", ErrEmptyIdentity
	}
	return hostname, nil
}

// Fingerprint returns a short, non-reversible identifier for a key.
func Fingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:8])
}
