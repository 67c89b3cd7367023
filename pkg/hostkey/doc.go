// Package hostkey derives the vault encryption key from the local host
// identity and provides the authenticated cipher used to seal vault data.
//
// # Key Derivation
//
// Keys are derived with HKDF-SHA256 from the host identity (the hostname
// unless overridden in configuration). No key material is stored anywhere:
//
//	identity, err := hostkey.Identity(cfg.Vault.HostIdentity)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cipher, err := hostkey.ForHost(identity)
//
// A vault file sealed on one host cannot be opened on a host with a
// different identity. When moving a vault to a new host, carry the identity
// override along with the file.
//
// # Symmetric Encryption
//
// The SymmetricCipher interface provides AES-256-GCM encryption with
// associated data:
//
//	ciphertext, err := cipher.Encrypt([]byte("db_1/secret"), []byte("hunter2"))
//	plaintext, err := cipher.Decrypt([]byte("db_1/secret"), ciphertext)
package hostkey
