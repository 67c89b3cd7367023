package vault

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/doodlesbykumbi/dbvault/pkg/hostkey"
)

const (
	// FileMode is the permission set enforced on the vault file.
	FileMode fs.FileMode = 0o600

	envelopeAAD = "dbvault-envelope"
)

// Store is a file-backed credential vault. The whole file is sealed with the
// host cipher, and each username/secret is sealed again on its own so that
// Load only has to open the envelope.
//
// A Store follows a read-modify-write discipline: Load, then any number of
// Get/Set/Remove, then Save. Nothing coordinates two processes writing the
// same file; the last Save wins.
type Store struct {
	mu      sync.Mutex
	path    string
	cipher  hostkey.SymmetricCipher
	now     func() time.Time
	loaded  bool
	version string
	entries map[string]*EncryptedCredential
	cache   map[string]Secret
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store for the vault file at path. Call Load before use.
func New(path string, cipher hostkey.SymmetricCipher, opts ...Option) *Store {
	s := &Store{
		path:    path,
		cipher:  cipher,
		now:     func() time.Time { return time.Now().UTC() },
		version: FormatVersion,
		entries: map[string]*EncryptedCredential{},
		cache:   map[string]Secret{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the vault file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads and opens the vault file. A missing file is an empty vault.
// On failure the in-memory state is left as it was.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.reset(FormatVersion, map[string]*EncryptedCredential{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrIO, s.path, err)
	}

	plain, err := s.cipher.Decrypt([]byte(envelopeAAD), data)
	if err != nil {
		return fmt.Errorf("%w: vault %s cannot be opened with this host's key", ErrDecryption, s.path)
	}

	var file File
	if err := json.Unmarshal(plain, &file); err != nil {
		return fmt.Errorf("%w: vault %s is corrupted: %v", ErrDecryption, s.path, err)
	}
	if file.Version != FormatVersion {
		return fmt.Errorf("%w: vault %s has unsupported version %q", ErrDecryption, s.path, file.Version)
	}
	if file.Credentials == nil {
		file.Credentials = map[string]*EncryptedCredential{}
	}
	for id, entry := range file.Credentials {
		if entry == nil {
			return fmt.Errorf("%w: vault %s has an empty record for %q", ErrDecryption, s.path, id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(file.Version, file.Credentials)
	return nil
}

func (s *Store) reset(version string, entries map[string]*EncryptedCredential) {
	s.version = version
	s.entries = entries
	s.cache = map[string]Secret{}
	s.loaded = true
}

// Save seals the in-memory state and atomically replaces the vault file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}

	plain, err := json.Marshal(File{Version: s.version, Credentials: s.entries})
	if err != nil {
		return fmt.Errorf("%w: encoding vault: %w", ErrIO, err)
	}

	sealed, err := s.cipher.Encrypt([]byte(envelopeAAD), plain)
	if err != nil {
		return fmt.Errorf("%w: sealing vault: %w", ErrIO, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("%w: creating vault directory: %w", ErrIO, err)
	}
	// atomic.WriteFile gives its temp file the mode of the file it replaces.
	if err := restrictMode(s.path); err != nil {
		return err
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(sealed)); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrIO, s.path, err)
	}
	if err := os.Chmod(s.path, FileMode); err != nil {
		return fmt.Errorf("%w: restricting permissions on %s: %w", ErrIO, s.path, err)
	}
	return nil
}

// restrictMode sets FileMode on an existing vault file. A missing file is
// left alone.
func restrictMode(path string) error {
	err := os.Chmod(path, FileMode)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: restricting permissions on %s: %w", ErrIO, path, err)
}

// Get returns the decrypted username and secret for id.
func (s *Store) Get(id string) (Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return Secret{}, ErrNotLoaded
	}
	entry, ok := s.entries[id]
	if !ok {
		return Secret{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s.open(id, entry)
}

// Credential returns the full decrypted record for id.
func (s *Store) Credential(id string) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return Credential{}, ErrNotLoaded
	}
	entry, ok := s.entries[id]
	if !ok {
		return Credential{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	secret, err := s.open(id, entry)
	if err != nil {
		return Credential{}, err
	}
	return Credential{
		ID:          id,
		Username:    secret.Username,
		Secret:      secret.Secret,
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}, nil
}

// open decrypts entry. The caller holds s.mu.
func (s *Store) open(id string, entry *EncryptedCredential) (Secret, error) {
	if cached, ok := s.cache[id]; ok {
		return cached, nil
	}

	username, err := s.cipher.Decrypt(fieldAAD(id, "username"), entry.UsernameEnc)
	if err != nil {
		return Secret{}, fmt.Errorf("%w: username of %q", ErrDecryption, id)
	}
	secret, err := s.cipher.Decrypt(fieldAAD(id, "secret"), entry.SecretEnc)
	if err != nil {
		return Secret{}, fmt.Errorf("%w: secret of %q", ErrDecryption, id)
	}

	value := Secret{Username: string(username), Secret: string(secret)}
	s.cache[id] = value
	return value, nil
}

// Set inserts or updates a credential. An empty description keeps the
// description of an existing entry.
func (s *Store) Set(id, username, secret, description string) error {
	_, err := s.upsert(id, username, secret, description)
	return err
}

func (s *Store) upsert(id, username, secret, description string) (created bool, err error) {
	if id == "" || username == "" || secret == "" {
		return false, fmt.Errorf("%w: id, username and secret are required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return false, ErrNotLoaded
	}

	usernameEnc, err := s.cipher.Encrypt(fieldAAD(id, "username"), []byte(username))
	if err != nil {
		return false, fmt.Errorf("%w: sealing username of %q: %w", ErrIO, id, err)
	}
	secretEnc, err := s.cipher.Encrypt(fieldAAD(id, "secret"), []byte(secret))
	if err != nil {
		return false, fmt.Errorf("%w: sealing secret of %q: %w", ErrIO, id, err)
	}

	now := s.now()
	entry, exists := s.entries[id]
	if !exists {
		entry = &EncryptedCredential{CreatedAt: now}
		s.entries[id] = entry
	}
	entry.UsernameEnc = usernameEnc
	entry.SecretEnc = secretEnc
	entry.UpdatedAt = now
	if description != "" || !exists {
		entry.Description = description
	}

	delete(s.cache, id)
	return !exists, nil
}

// Remove deletes a credential.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	delete(s.entries, id)
	delete(s.cache, id)
	return nil
}

// List returns all credential ids in lexical order.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Sorted(maps.Keys(s.entries))
}

// Metadata returns the plaintext metadata of id without opening its payload.
func (s *Store) Metadata(id string) (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return Metadata{}, ErrNotLoaded
	}
	entry, ok := s.entries[id]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return entry.metadata(id), nil
}

// Info describes the vault file and its in-memory state.
type Info struct {
	Path    string      `json:"path"`
	Version string      `json:"version"`
	Loaded  bool        `json:"loaded"`
	Count   int         `json:"count"`
	Exists  bool        `json:"exists"`
	Mode    fs.FileMode `json:"mode,omitempty"`
	Size    int64       `json:"size,omitempty"`
	ModTime time.Time   `json:"mod_time,omitempty"`
}

// Info reports on the vault file. A missing file is not an error.
func (s *Store) Info() (Info, error) {
	s.mu.Lock()
	info := Info{
		Path:    s.path,
		Version: s.version,
		Loaded:  s.loaded,
		Count:   len(s.entries),
	}
	s.mu.Unlock()

	stat, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("%w: stat %s: %w", ErrIO, s.path, err)
	}

	info.Exists = true
	info.Mode = stat.Mode().Perm()
	info.Size = stat.Size()
	info.ModTime = stat.ModTime()
	return info, nil
}

func fieldAAD(id, field string) []byte {
	return []byte(id + "/" + field)
}
