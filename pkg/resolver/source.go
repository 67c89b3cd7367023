package resolver

//go:generate go run github.com/dmarkham/enumer -type Source -trimprefix Source -transform snake -json -text -output source.gen.go

// Source is the backing store that supplied a resolved credential.
type Source int

const (
	SourceNone Source = iota
	SourceVault
	SourceLegacyFallback
)

// Reason explains why a source was chosen.
type Reason string

const (
	ReasonVaultHit         Reason = "vault_hit"
	ReasonVaultMiss        Reason = "vault_miss"
	ReasonVaultUnavailable Reason = "vault_unavailable"
)
