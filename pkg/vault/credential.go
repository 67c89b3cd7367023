package vault

import "time"

// FormatVersion is the version written to new vault files.
const FormatVersion = "1"

// Credential is a decrypted vault entry.
type Credential struct {
	ID          string
	Username    string
	Secret      string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Secret is the decrypted connection material of a credential.
type Secret struct {
	Username string
	Secret   string
}

// Metadata is the non-secret part of a credential.
type Metadata struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// File is the decrypted vault document.
type File struct {
	Version     string                          `json:"version"`
	Credentials map[string]*EncryptedCredential `json:"credentials"`
}

// EncryptedCredential holds independently sealed username and secret plus
// plaintext metadata.
type EncryptedCredential struct {
	UsernameEnc []byte    `json:"username_enc"`
	SecretEnc   []byte    `json:"secret_enc"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Description string    `json:"description,omitempty"`
}

func (e *EncryptedCredential) metadata(id string) Metadata {
	return Metadata{
		ID:          id,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
