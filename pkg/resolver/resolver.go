package resolver

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/doodlesbykumbi/dbvault/pkg/audit"
	"github.com/doodlesbykumbi/dbvault/pkg/vault"
)

// SMTPKey is the credential key of the mail transport.
const SMTPKey = "smtp"

// DatabaseKey returns the credential key of a database instance.
func DatabaseKey(instanceID string) string {
	return "db_" + instanceID
}

// Credential is resolved connection material.
type Credential struct {
	Username string
	Secret   string
}

// LegacySource looks up plaintext credentials from the legacy configuration.
type LegacySource interface {
	Lookup(key string) (Credential, bool)
}

// LegacyMap is a LegacySource backed by a map.
type LegacyMap map[string]Credential

func (m LegacyMap) Lookup(key string) (Credential, bool) {
	c, ok := m[key]
	return c, ok
}

// VaultReader is the part of the vault the resolver needs.
type VaultReader interface {
	Get(id string) (vault.Secret, error)
}

// VaultStatus is the outcome of opening the vault: either a readable vault
// or the reason it is unavailable.
type VaultStatus struct {
	reader VaultReader
	err    error
}

// OpenVault loads store and reports whether it can serve lookups.
func OpenVault(store *vault.Store) VaultStatus {
	if err := store.Load(); err != nil {
		return Unavailable(err)
	}
	return Available(store)
}

// Available wraps a loaded vault.
func Available(reader VaultReader) VaultStatus {
	return VaultStatus{reader: reader}
}

// Unavailable records why the vault could not be used.
func Unavailable(err error) VaultStatus {
	if err == nil {
		err = errors.New("vault not configured")
	}
	return VaultStatus{err: err}
}

func (s VaultStatus) Available() bool {
	return s.reader != nil
}

func (s VaultStatus) Err() error {
	return s.err
}

// Resolution is the result of resolving a credential key.
type Resolution struct {
	Credential
	Key    string
	Source Source
	Reason Reason
	Found  bool
}

// Resolver resolves credential keys against the vault first and the legacy
// plaintext configuration second. Vault failures never escape Resolve.
type Resolver struct {
	status VaultStatus
	legacy LegacySource
	logger zerolog.Logger
	audit  audit.Sink
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for provenance entries.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithAudit sends a ResolveEvent to sink for every resolution.
func WithAudit(sink audit.Sink) Option {
	return func(r *Resolver) {
		r.audit = sink
	}
}

// New creates a Resolver. legacy may be nil when there is no legacy
// configuration.
func New(status VaultStatus, legacy LegacySource, opts ...Option) *Resolver {
	if legacy == nil {
		legacy = LegacyMap{}
	}
	r := &Resolver{
		status: status,
		legacy: legacy,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if !status.Available() {
		r.logger.Warn().Err(status.Err()).Msg("credential vault unavailable, resolving from legacy configuration only")
	}
	return r
}

// VaultAvailable reports whether the vault loaded.
func (r *Resolver) VaultAvailable() bool {
	return r.status.Available()
}

// Resolve looks up key. When neither source has it, a required key fails
// with vault.ErrNotFound and an optional key returns a Resolution with
// Found false and no error.
func (r *Resolver) Resolve(key string, required bool) (Resolution, error) {
	if key == "" {
		return Resolution{}, fmt.Errorf("%w: credential key is empty", vault.ErrValidation)
	}

	res := Resolution{Key: key, Source: SourceNone}

	cred, reason := r.lookupVault(key)
	res.Reason = reason
	if reason == ReasonVaultHit {
		res.Credential = cred
		res.Source = SourceVault
		res.Found = true
		r.record(res, required)
		return res, nil
	}

	if cred, ok := r.legacy.Lookup(key); ok {
		res.Credential = cred
		res.Source = SourceLegacyFallback
		res.Found = true

		event := r.logger.Info()
		if reason == ReasonVaultUnavailable {
			event = r.logger.Warn()
		}
		event.Str("credential", key).
			Stringer("source", res.Source).
			Str("reason", string(reason)).
			Msg("credential resolved from legacy configuration")

		r.record(res, required)
		return res, nil
	}

	r.record(res, required)
	if required {
		r.logger.Error().Str("credential", key).Str("reason", string(reason)).Msg("required credential not found")
		return res, fmt.Errorf("%w: %q is in neither the vault nor the legacy configuration", vault.ErrNotFound, key)
	}
	r.logger.Debug().Str("credential", key).Msg("optional credential not found")
	return res, nil
}

// MustResolve resolves a required key.
func (r *Resolver) MustResolve(key string) (Credential, error) {
	res, err := r.Resolve(key, true)
	if err != nil {
		return Credential{}, err
	}
	return res.Credential, nil
}

func (r *Resolver) lookupVault(key string) (Credential, Reason) {
	if !r.status.Available() {
		return Credential{}, ReasonVaultUnavailable
	}

	secret, err := r.status.reader.Get(key)
	switch {
	case err == nil:
		return Credential{Username: secret.Username, Secret: secret.Secret}, ReasonVaultHit
	case errors.Is(err, vault.ErrNotFound):
		return Credential{}, ReasonVaultMiss
	default:
		r.logger.Warn().Err(err).Str("credential", key).Msg("vault lookup failed")
		return Credential{}, ReasonVaultUnavailable
	}
}

func (r *Resolver) record(res Resolution, required bool) {
	if r.audit == nil {
		return
	}
	r.audit.Log(audit.ResolveEvent{
		Key:      res.Key,
		Source:   res.Source.String(),
		Reason:   string(res.Reason),
		Required: required,
		Found:    res.Found,
	})
}
