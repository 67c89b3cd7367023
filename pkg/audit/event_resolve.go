package audit

import "fmt"

// ResolveEvent records which backing store supplied a credential.
type ResolveEvent struct {
	Key      string
	Source   string // "vault", "legacy_fallback" or "none"
	Reason   string // "vault_hit", "vault_miss", "vault_unavailable"
	Required bool
	Found    bool
}

func (e ResolveEvent) MessageID() string {
	return "resolve"
}

func (e ResolveEvent) Message() string {
	if !e.Found {
		if e.Required {
			return fmt.Sprintf("required credential %s not found in vault or legacy config (%s)", e.Key, e.Reason)
		}
		return fmt.Sprintf("optional credential %s not found in vault or legacy config (%s)", e.Key, e.Reason)
	}
	if e.Source == "vault" {
		return fmt.Sprintf("credential %s resolved from vault", e.Key)
	}
	return fmt.Sprintf("credential %s resolved from %s (%s)", e.Key, e.Source, e.Reason)
}

func (e ResolveEvent) Severity() Severity {
	switch {
	case !e.Found && e.Required:
		return SeverityWarning
	case e.Source == "vault":
		return SeverityInfo
	default:
		return SeverityNotice
	}
}

func (e ResolveEvent) Facility() int {
	return FacilityAuthPriv
}

func (e ResolveEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
			"credential": e.Key,
		},
		SDIDProvenance: {
			"source":   e.Source,
			"reason":   e.Reason,
			"required": fmt.Sprintf("%t", e.Required),
		},
		SDIDAction: {
			"operation": "resolve",
			"result":    result(e.Found),
		},
	}
}
