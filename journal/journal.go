// Package journal persists committed sheet changes to a SQLite database so
// that edits can be audited or shipped to another replica. It consumes the
// sheet's pending-change buffer and never touches undo history.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/javajack/xlgrid"
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS changes (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    sheet       TEXT NOT NULL,
    change_id   INTEGER NOT NULL,
    kind        TEXT NOT NULL,
    ref         TEXT NOT NULL,
    old_type    TEXT NOT NULL,
    old_value   TEXT NOT NULL,
    new_type    TEXT NOT NULL,
    new_value   TEXT NOT NULL,
    old_formula TEXT NOT NULL DEFAULT '',
    new_formula TEXT NOT NULL DEFAULT '',
    timestamp   INTEGER NOT NULL -- UnixNano
);

CREATE INDEX IF NOT EXISTS idx_changes_sheet ON changes(sheet, seq);
`

// Entry is one persisted change.
type Entry struct {
	Seq        int64
	Sheet      string
	ChangeID   uint64
	Kind       string // "value", "style", "formula" or "delete"
	Ref        string
	OldType    string // CellType name of the old value
	OldValue   string
	NewType    string
	NewValue   string
	OldFormula string
	NewFormula string
	Timestamp  time.Time
}

// Journal is a SQLite-backed change log. It is safe for concurrent use.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the journal database at path. Use ":memory:" for a
// throwaway journal.
func Open(path string) (*Journal, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
		dsn += "?_pragma=journal_mode(WAL)" +
			"&_pragma=synchronous(NORMAL)" +
			"&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	if err := checkSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func checkSchema(db *sql.DB) error {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
		if err != nil {
			return fmt.Errorf("record journal schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read journal schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("journal schema version %d, want %d", version, schemaVersion)
	}
	return nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append writes changes for the named sheet in one transaction. Batch
// records are flattened into their constituents. It returns the number of
// rows written.
func (j *Journal) Append(sheet string, changes []*xlgrid.Change) (int, error) {
	flat := flatten(changes, nil)
	if len(flat) == 0 {
		return 0, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	tx, err := j.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin journal transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO changes
		(sheet, change_id, kind, ref, old_type, old_value, new_type, new_value, old_formula, new_formula, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("prepare journal insert: %w", err)
	}
	defer stmt.Close()

	for _, ch := range flat {
		_, err := stmt.Exec(sheet, int64(ch.ID), ch.Kind.String(), ch.Address(),
			ch.OldValue.Kind().String(), ch.OldValue.String(),
			ch.NewValue.Kind().String(), ch.NewValue.String(),
			ch.OldFormula, ch.NewFormula, ch.Timestamp.UnixNano())
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("journal change %d at %s: %w", ch.ID, ch.Address(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit journal transaction: %w", err)
	}
	return len(flat), nil
}

func flatten(changes, out []*xlgrid.Change) []*xlgrid.Change {
	for _, ch := range changes {
		if ch.Kind == xlgrid.ChangeBatch {
			out = flatten(ch.Batch, out)
			continue
		}
		out = append(out, ch)
	}
	return out
}

// Sync appends the sheet's pending changes and, once they are stored,
// commits them so the buffer is empty. On error the buffer is left intact
// for a retry.
func (j *Journal) Sync(s *xlgrid.Sheet) (int, error) {
	n, err := j.Append(s.Name(), s.PendingChanges())
	if err != nil {
		return 0, err
	}
	s.Commit()
	return n, nil
}

// Entries returns the stored changes of the named sheet in append order.
func (j *Journal) Entries(sheet string) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(`SELECT seq, sheet, change_id, kind, ref, old_type, old_value,
		new_type, new_value, old_formula, new_formula, timestamp
		FROM changes WHERE sheet = ? ORDER BY seq`, sheet)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var id, ts int64
		if err := rows.Scan(&e.Seq, &e.Sheet, &id, &e.Kind, &e.Ref, &e.OldType, &e.OldValue,
			&e.NewType, &e.NewValue, &e.OldFormula, &e.NewFormula, &ts); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.ChangeID = uint64(id)
		e.Timestamp = time.Unix(0, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of stored changes of the named sheet.
func (j *Journal) Count(sheet string) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var n int
	if err := j.db.QueryRow("SELECT COUNT(*) FROM changes WHERE sheet = ?", sheet).Scan(&n); err != nil {
		return 0, fmt.Errorf("count journal rows: %w", err)
	}
	return n, nil
}
