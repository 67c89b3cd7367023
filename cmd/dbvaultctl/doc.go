// Command dbvaultctl manages the host-bound credential vault of the
// database backup system and runs its retention and scope tooling.
//
// # Quick Start
//
//	# Move plaintext passwords from dbvault.yml into the vault
//	dbvaultctl vault-migrate
//
//	# Add or rotate a credential
//	dbvaultctl vault-add --id db_1 --username backup --password 's3cr3t'
//
//	# Check where the backup jobs will get a credential from
//	dbvaultctl resolve --key db_1 --required
//
//	# Preview and apply GFS retention
//	dbvaultctl retention plan
//	dbvaultctl retention apply --dry-run
//
// # Environment Variables
//
//   - DBVAULT_CONFIG_PATH: Directory holding dbvault.yml (default: /etc/dbvault)
//   - DBVAULT_VAULT_PATH: Vault file (default: /etc/dbvault/vault.enc)
//   - DBVAULT_HOST_IDENTITY: Host identity override (default: hostname)
//   - DBVAULT_LOG_LEVEL: Log level (trace, debug, info, warn, error)
//   - AUDIT_DATABASE_URL: PostgreSQL connection string for audit messages
//
// Every failure is printed as "Error (<Kind>): <message>" and exits with
// status 1. Secrets never appear in that message.
package main
