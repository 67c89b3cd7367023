package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbvault/pkg/audit"
	"github.com/doodlesbykumbi/dbvault/pkg/config"
	"github.com/doodlesbykumbi/dbvault/pkg/hostkey"
	"github.com/doodlesbykumbi/dbvault/pkg/logging"
	"github.com/doodlesbykumbi/dbvault/pkg/resolver"
	"github.com/doodlesbykumbi/dbvault/pkg/retention"
	"github.com/doodlesbykumbi/dbvault/pkg/vault"
)

// app is what every command needs: configuration, a logger and the audit
// trail.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	audit   *audit.Logger
	closers []io.Closer
}

func newApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logging.New(cfg.Logging()),
	}

	var auditWriter io.Writer
	if auditPath, _ := cmd.Flags().GetString("audit-log"); auditPath != "" {
		f, err := os.OpenFile(auditPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("%w: opening audit log: %w", vault.ErrIO, err)
		}
		a.closers = append(a.closers, f)
		auditWriter = f
	}
	a.audit = audit.NewLogger(auditWriter)
	if identity, err := a.hostIdentity(); err == nil {
		a.audit.WithHostname(identity)
	}

	store, err := audit.NewStore(cfg.AuditDatabaseURL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%w: opening audit database: %w", vault.ErrIO, err)
	}
	if store != nil {
		a.closers = append(a.closers, store)
		a.audit.WithStore(store)
	}
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}

// hostIdentity resolves the identity the vault key is derived from.
func (a *app) hostIdentity() (string, error) {
	return hostkey.Identity(a.cfg.Vault.HostIdentity)
}

// newStore returns the vault store bound to this host. It is not loaded.
func (a *app) newStore() (*vault.Store, error) {
	identity, err := a.hostIdentity()
	if err != nil {
		return nil, err
	}
	cipher, err := hostkey.ForHost(identity)
	if err != nil {
		return nil, err
	}
	return vault.New(a.cfg.Vault.Path, cipher), nil
}

// openStore returns the loaded vault store bound to this host.
func (a *app) openStore() (*vault.Store, error) {
	store, err := a.newStore()
	if err != nil {
		return nil, err
	}
	if err := store.Load(); err != nil {
		return nil, err
	}
	a.logger.Debug().Str("path", store.Path()).Int("credentials", len(store.List())).Msg("vault loaded")
	return store, nil
}

// newResolver opens the vault and falls back to the legacy configuration
// when it cannot be used.
func (a *app) newResolver() *resolver.Resolver {
	var status resolver.VaultStatus
	store, err := a.newStore()
	if err != nil {
		status = resolver.Unavailable(err)
	} else {
		status = resolver.OpenVault(store)
	}
	return resolver.New(status, a.cfg.LegacyCredentials(),
		resolver.WithLogger(a.logger),
		resolver.WithAudit(a.audit),
	)
}

// errorKind names the category printed in front of a failure.
func errorKind(err error) string {
	switch {
	case errors.Is(err, hostkey.ErrEmptyIdentity), errors.Is(err, retention.ErrInvalidPolicy):
		return "ValidationError"
	default:
		return vault.KindOf(err)
	}
}

func formatError(err error) string {
	return fmt.Sprintf("Error (%s): %v", errorKind(err), err)
}

func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, formatError(err))
	os.Exit(1)
}

// run adapts a command body returning an error to cobra's Run.
func run(fn func(cmd *cobra.Command, a *app) error) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd)
		exitOnError(err)

		err = fn(cmd, a)
		a.Close()
		exitOnError(err)
	}
}
