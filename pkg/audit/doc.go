// Package audit records security-relevant vault activity.
//
// Events are written as RFC5424 syslog lines and, when AUDIT_DATABASE_URL is
// configured, persisted to a Postgres "messages" table. The Logger stamps each
// event once into a Record, so the line and the row carry the same timestamp
// and hostname. The hostname is the host identity the vault key is bound to.
//
// # Event Types
//
//   - ResolveEvent: credential provenance (vault, legacy fallback, not found)
//   - VaultEvent: vault add, update, remove, import and migrate
//   - RetentionEvent: eviction plans applied to backup artifacts
//
// # Usage
//
//	logger := audit.NewLogger(os.Stderr)
//	logger.Log(audit.ResolveEvent{Key: "db_1", Source: "vault", Reason: "vault_hit", Found: true})
//
// Events never carry usernames or secrets, only credential ids.
package audit
