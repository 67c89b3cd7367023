// Package config provides configuration management for dbvault.
//
// Configuration is read from dbvault.yml in $DBVAULT_CONFIG_PATH
// (default /etc/dbvault) and then overridden by environment variables.
// Every attribute remembers whether its value came from the default, the
// file or the environment.
//
// # Configuration Sources
//
//   - Configuration file (optional)
//   - Environment variables (take precedence)
//
// # Key Configuration Options
//
//   - DBVAULT_VAULT_PATH: Encrypted vault file
//   - DBVAULT_HOST_IDENTITY: Host identity the vault key is derived from
//   - DBVAULT_LOG_LEVEL, DBVAULT_LOG_FORMAT: Logging
//   - DBVAULT_BACKUP_ROOT: Backup artifact tree
//   - DBVAULT_RETENTION_DAILY, DBVAULT_RETENTION_WEEKLY, DBVAULT_RETENTION_MONTHLY: GFS keep counts
//   - AUDIT_DATABASE_URL: Postgres audit store
//
// The smtp and instances sections may still carry plaintext passwords from
// before the vault existed. They are exposed through LegacyCredentials as
// the resolver's fallback and are masked whenever the configuration is
// displayed.
package config
