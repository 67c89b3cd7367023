package audit

import "fmt"

// VaultEvent represents a change to the credential vault
type VaultEvent struct {
	Operation    string // "add", "update", "remove", "import", "migrate"
	CredentialID string
	Count        int
	Success      bool
	ErrorMessage string
}

func (e VaultEvent) MessageID() string {
	return "vault"
}

func (e VaultEvent) Message() string {
	subject := e.CredentialID
	if subject == "" {
		subject = fmt.Sprintf("%d credential(s)", e.Count)
	}
	if e.Success {
		return fmt.Sprintf("vault %s of %s succeeded", e.Operation, subject)
	}
	msg := fmt.Sprintf("vault %s of %s failed", e.Operation, subject)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e VaultEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e VaultEvent) Facility() int {
	return FacilityAuthPriv
}

func (e VaultEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
	if e.CredentialID != "" {
		sd[SDIDSubject] = map[string]string{"credential": e.CredentialID}
	} else {
		sd[SDIDSubject] = map[string]string{"count": fmt.Sprintf("%d", e.Count)}
	}
	return sd
}
