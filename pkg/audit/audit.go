package audit

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/doodlesbykumbi/dbvault/pkg/hostkey"
)

// AppName is the APP-NAME field of every audit line.
const AppName = "dbvault"

// SDID constants for structured data IDs (RFC5424). 32473 is the
// documentation enterprise number from RFC 5612.
const (
	SDIDSubject    = "subject@32473"
	SDIDAction     = "action@32473"
	SDIDProvenance = "provenance@32473"
	SDIDRetention  = "retention@32473"
)

// Syslog facility constants
const (
	FacilityAuthPriv = 10 // LOG_AUTHPRIV - security/authorization messages (private)
	FacilityLocal0   = 16 // LOG_LOCAL0 - backup housekeeping
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Sink receives audit events.
type Sink interface {
	Log(event Event)
}

// Logger handles audit logging in RFC5424 syslog format
type Logger struct {
	writer   io.Writer
	hostname string
	appName  string
	pid      int
	store    *Store
	now      func() time.Time
}

// NewLogger creates an audit logger writing to w. A nil w discards lines.
// The HOSTNAME field defaults to the host identity the vault key is derived
// from when no override is configured.
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	hostname, _ := hostkey.Identity("")
	return &Logger{
		writer:   w,
		hostname: hostname,
		appName:  AppName,
		pid:      os.Getpid(),
		now:      time.Now,
	}
}

// WithHostname sets the HOSTNAME field, normally the vault host identity.
func (l *Logger) WithHostname(hostname string) *Logger {
	l.hostname = hostname
	return l
}

// WithStore also persists every event to store.
func (l *Logger) WithStore(store *Store) *Logger {
	l.store = store
	return l
}

func (l *Logger) stamp(event Event) Record {
	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}
	return Record{
		Time:     l.now().UTC(),
		Hostname: hostname,
		AppName:  l.appName,
		PID:      l.pid,
		Event:    event,
	}
}

// Log writes an audit event in RFC5424 syslog format and persists the same
// record when a Store is attached.
func (l *Logger) Log(event Event) {
	rec := l.stamp(event)
	_, _ = io.WriteString(l.writer, formatLine(rec))

	if l.store != nil {
		if err := l.store.Save(context.Background(), rec); err != nil {
			fmt.Fprintf(os.Stderr, "audit: failed to save event: %v\n", err)
		}
	}
}

// formatLine renders rec as
// <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func formatLine(rec Record) string {
	pri := rec.Event.Facility()*8 + int(rec.Event.Severity())

	sd := formatStructuredData(rec.Event.StructuredData())
	if sd == "" {
		sd = "-"
	}

	return fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		rec.Time.Format("2006-01-02T15:04:05.000Z"),
		rec.Hostname,
		rec.AppName,
		rec.PID,
		rec.Event.MessageID(),
		sd,
		rec.Event.Message(),
	)
}

// formatStructuredData formats the structured data according to RFC5424
// Format: [sdid param1="value1" param2="value2"][sdid2 ...]
// Elements and params are sorted so lines are stable.
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	var parts []string
	for _, sdid := range slices.Sorted(maps.Keys(sd)) {
		params := sd[sdid]
		paramParts := []string{sdid}
		for _, key := range slices.Sorted(maps.Keys(params)) {
			paramParts = append(paramParts, fmt.Sprintf("%s=%s", key, escapeSDValue(params[key])))
		}
		parts = append(parts, "["+strings.Join(paramParts, " ")+"]")
	}
	return strings.Join(parts, "")
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
