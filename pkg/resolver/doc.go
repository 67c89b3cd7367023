// Package resolver decides where a credential comes from: the encrypted
// vault when it has the key, the legacy plaintext configuration otherwise.
//
// Keys follow the existing configuration convention: "db_<instance_id>" for
// database instances and "smtp" for the mail transport. Matching is exact
// and case-sensitive.
package resolver
