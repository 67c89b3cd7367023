package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const insertRecord = `
	INSERT INTO messages (facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// saveTimeout bounds a single insert so an unreachable database can't stall
// a vault command.
const saveTimeout = 5 * time.Second

// Record is an event stamped by a Logger. The syslog line and the database
// row are both built from the same Record.
type Record struct {
	Time     time.Time
	Hostname string
	AppName  string
	PID      int
	Event    Event
}

// Store persists audit records to the Postgres "messages" table.
type Store struct {
	db *sql.DB
}

// NewStore opens the audit database at dbURL. It returns nil when dbURL is
// empty, which disables persistence.
func NewStore(dbURL string) (*Store, error) {
	if dbURL == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an open database handle.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts rec. A Store without a database drops it.
func (s *Store) Save(ctx context.Context, rec Record) error {
	if s.db == nil {
		return nil
	}

	sdata, err := json.Marshal(rec.Event.StructuredData())
	if err != nil {
		return fmt.Errorf("encoding structured data: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, insertRecord,
		rec.Event.Facility(),
		int(rec.Event.Severity()),
		rec.Time.UTC(),
		rec.Hostname,
		rec.AppName,
		rec.PID,
		rec.Event.MessageID(),
		sdata,
		rec.Event.Message(),
	)
	if err != nil {
		return fmt.Errorf("inserting %s record: %w", rec.Event.MessageID(), err)
	}
	return nil
}
