package audit

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	logger.hostname = "backup-01"
	logger.pid = 42
	logger.now = func() time.Time { return time.Date(2026, 3, 1, 2, 3, 4, 0, time.UTC) }

	logger.Log(ResolveEvent{
		Key:      "db_2",
		Source:   "legacy_fallback",
		Reason:   "vault_miss",
		Required: true,
		Found:    true,
	})

	want := `<85>1 2026-03-01T02:03:04.000Z backup-01 dbvault 42 resolve ` +
		`[action@32473 operation="resolve" result="success"]` +
		`[provenance@32473 reason="vault_miss" required="true" source="legacy_fallback"]` +
		`[subject@32473 credential="db_2"] ` +
		"credential db_2 resolved from legacy_fallback (vault_miss)\n"
	if got := buf.String(); got != want {
		t.Errorf("Log() wrote\n%q\nwant\n%q", got, want)
	}
}

func TestLoggerNilWriter(t *testing.T) {
	logger := NewLogger(nil)
	logger.Log(VaultEvent{Operation: "add", CredentialID: "db_1", Success: true})
}

func TestLoggerPersistsToStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	stamped := time.Date(2026, 3, 1, 2, 3, 4, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs(
			FacilityAuthPriv,
			int(SeverityInfo),
			stamped,
			"vault-host",
			AppName,
			42,
			"vault",
			sqlmock.AnyArg(),
			"vault remove of db_1 succeeded",
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	var buf bytes.Buffer
	logger := NewLogger(&buf).WithHostname("vault-host").WithStore(NewStoreWithDB(db))
	logger.pid = 42
	logger.now = func() time.Time { return stamped.In(time.FixedZone("CET", 3600)) }
	logger.Log(VaultEvent{Operation: "remove", CredentialID: "db_1", Success: true})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "<86>1 2026-03-01T02:03:04.000Z vault-host dbvault 42 vault ") {
		t.Errorf("line and row must share one stamp, got %q", buf.String())
	}
}

func TestLoggerWithHostname(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf).WithHostname("").Log(VaultEvent{Operation: "add", CredentialID: "db_1", Success: true})

	if fields := strings.Fields(buf.String()); len(fields) < 3 || fields[2] != "-" {
		t.Errorf("empty hostname should be written as '-', got %q", buf.String())
	}
}

func TestEscapeSDValue(t *testing.T) {
	got := escapeSDValue(`a"b]c\d`)
	want := `"a\"b\]c\\d"`
	if got != want {
		t.Errorf("escapeSDValue() = %s, want %s", got, want)
	}
}

func TestResolveEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   ResolveEvent
		wantMsg string
		wantSev Severity
	}{
		{
			name:    "vault hit",
			event:   ResolveEvent{Key: "db_1", Source: "vault", Reason: "vault_hit", Found: true},
			wantMsg: "resolved from vault",
			wantSev: SeverityInfo,
		},
		{
			name:    "fallback after vault miss",
			event:   ResolveEvent{Key: "db_2", Source: "legacy_fallback", Reason: "vault_miss", Found: true},
			wantMsg: "(vault_miss)",
			wantSev: SeverityNotice,
		},
		{
			name:    "fallback with vault unavailable",
			event:   ResolveEvent{Key: "smtp", Source: "legacy_fallback", Reason: "vault_unavailable", Found: true},
			wantMsg: "(vault_unavailable)",
			wantSev: SeverityNotice,
		},
		{
			name:    "required key missing",
			event:   ResolveEvent{Key: "db_9", Source: "none", Reason: "vault_miss", Required: true},
			wantMsg: "required credential db_9 not found",
			wantSev: SeverityWarning,
		},
		{
			name:    "optional key missing",
			event:   ResolveEvent{Key: "smtp", Source: "none", Reason: "vault_miss"},
			wantMsg: "optional credential smtp not found",
			wantSev: SeverityNotice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.event.Message(), tt.wantMsg) {
				t.Errorf("Message() = %q, want to contain %q", tt.event.Message(), tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.MessageID() != "resolve" {
				t.Errorf("MessageID() = %v, want 'resolve'", tt.event.MessageID())
			}
		})
	}
}

func TestVaultEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   VaultEvent
		wantMsg string
		wantSev Severity
		wantSD  map[string]string
	}{
		{
			name:    "single credential",
			event:   VaultEvent{Operation: "add", CredentialID: "db_1", Success: true},
			wantMsg: "vault add of db_1 succeeded",
			wantSev: SeverityInfo,
			wantSD:  map[string]string{"credential": "db_1"},
		},
		{
			name:    "batch",
			event:   VaultEvent{Operation: "import", Count: 3, Success: true},
			wantMsg: "vault import of 3 credential(s) succeeded",
			wantSev: SeverityInfo,
			wantSD:  map[string]string{"count": "3"},
		},
		{
			name:    "failure",
			event:   VaultEvent{Operation: "remove", CredentialID: "db_1", ErrorMessage: "not found"},
			wantMsg: "vault remove of db_1 failed: not found",
			wantSev: SeverityWarning,
			wantSD:  map[string]string{"credential": "db_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Message(); got != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", got, tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			subject := tt.event.StructuredData()[SDIDSubject]
			for k, v := range tt.wantSD {
				if subject[k] != v {
					t.Errorf("subject[%s] = %q, want %q", k, subject[k], v)
				}
			}
		})
	}
}

func TestRetentionEvent(t *testing.T) {
	event := RetentionEvent{Root: "/var/backups/db", Kept: 7, Deleted: 3, Missing: 1, DryRun: true, Success: true}

	msg := event.Message()
	if !strings.Contains(msg, "would delete 3") {
		t.Errorf("Message() = %q, want dry-run wording", msg)
	}
	if !strings.Contains(msg, "1 already gone") {
		t.Errorf("Message() = %q, want missing count", msg)
	}
	if event.Facility() != FacilityLocal0 {
		t.Errorf("Facility() = %d, want %d", event.Facility(), FacilityLocal0)
	}
	if event.StructuredData()[SDIDRetention]["dry_run"] != "true" {
		t.Error("expected dry_run=true in structured data")
	}

	failed := RetentionEvent{Root: "/r", ErrorMessage: "permission denied"}
	if failed.Severity() != SeverityError {
		t.Errorf("Severity() = %v, want %v", failed.Severity(), SeverityError)
	}
}
