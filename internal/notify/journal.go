package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Journal is an append-only SQLite log of operation outcomes, for operator
// inspection after the fact. It is never read back to rebuild coordinator
// state; the registry stays authoritative.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (or creates) the journal at dbPath with WAL enabled.
func OpenJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS outcomes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			op TEXT NOT NULL,
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create outcomes table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Append stores one outcome.
func (j *Journal) Append(o Outcome) error {
	_, err := j.db.Exec(
		"INSERT INTO outcomes (op, level, message, at) VALUES (?, ?, ?, ?)",
		o.Op, string(o.Level), o.Message, o.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}
	return nil
}

// Tail returns the most recent n outcomes, newest last.
func (j *Journal) Tail(ctx context.Context, n int) ([]Outcome, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT op, level, message, at FROM outcomes ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var level string
		var at int64
		if err := rows.Scan(&o.Op, &level, &o.Message, &at); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.Level = Level(level)
		o.At = time.UnixMilli(at)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to newest-last to match Queue.Recent.
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}
