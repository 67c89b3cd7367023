package audit

import "fmt"

// RetentionEvent represents applying an eviction plan to backup artifacts
type RetentionEvent struct {
	Root         string
	Kept         int
	Deleted      int
	Missing      int
	DryRun       bool
	Success      bool
	ErrorMessage string
}

func (e RetentionEvent) MessageID() string {
	return "retention"
}

func (e RetentionEvent) Message() string {
	verb := "deleted"
	if e.DryRun {
		verb = "would delete"
	}
	msg := fmt.Sprintf("retention under %s %s %d artifact(s), kept %d", e.Root, verb, e.Deleted, e.Kept)
	if e.Missing > 0 {
		msg += fmt.Sprintf(", %d already gone", e.Missing)
	}
	if !e.Success && e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e RetentionEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityError
}

func (e RetentionEvent) Facility() int {
	return FacilityLocal0
}

func (e RetentionEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDRetention: {
			"root":    e.Root,
			"kept":    fmt.Sprintf("%d", e.Kept),
			"deleted": fmt.Sprintf("%d", e.Deleted),
			"missing": fmt.Sprintf("%d", e.Missing),
			"dry_run": fmt.Sprintf("%t", e.DryRun),
		},
		SDIDAction: {
			"operation": "evict",
			"result":    result(e.Success),
		},
	}
}
