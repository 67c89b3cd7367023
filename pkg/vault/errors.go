package vault

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed input to any operation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a credential id doesn't exist.
	ErrNotFound = errors.New("credential not found")

	// ErrDecryption is returned when the vault or a credential cannot be
	// opened with the host key: wrong host identity or corrupted data.
	ErrDecryption = errors.New("decryption failed")

	// ErrIO is returned for permission and disk failures.
	ErrIO = errors.New("vault I/O failed")

	// ErrNotLoaded is returned when the store is used before Load.
	ErrNotLoaded = fmt.Errorf("%w: vault not loaded", ErrIO)
)

// KindOf names the error category of err for user-facing messages.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrNotFound):
		return "NotFoundError"
	case errors.Is(err, ErrDecryption):
		return "DecryptionError"
	case errors.Is(err, ErrIO):
		return "IOError"
	default:
		return "Error"
	}
}
