// Package vault stores database and service credentials in a single
// encrypted file bound to the local host.
//
// # File Format
//
// The vault file is an AES-256-GCM sealed JSON document:
//
//	{"version": "1", "credentials": {"db_1": {"username_enc": ..., "secret_enc": ...,
//	    "created_at": ..., "updated_at": ..., "description": ...}}}
//
// Usernames and secrets are sealed a second time per field with the
// credential id as associated data, so metadata can be listed without
// opening any secret. The file is written with a temp-file-and-rename and
// mode 0600.
//
// # Usage
//
//	store := vault.New(path, cipher)
//	if err := store.Load(); err != nil {
//	    return err
//	}
//	_ = store.Set("db_1", "backup", "s3cret", "primary MySQL")
//	if err := store.Save(); err != nil {
//	    return err
//	}
//
// # Limitations
//
// The key is derived from the host identity (see package hostkey). A vault
// copied to another host fails to load with ErrDecryption. There is no
// locking between processes: two writers racing on the same file lose the
// earlier Save.
package vault
