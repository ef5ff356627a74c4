package packaging

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger records which package versions have been downloaded and the CAS
// hash of their archive, so repeat runs resolve packages without touching
// the network.
type Ledger struct {
	conn *sql.DB
}

func OpenLedger(dbPath string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	l := &Ledger{conn: conn}
	if err := l.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing ledger schema: %w", err)
	}
	return l, nil
}

func (l *Ledger) Close() error {
	return l.conn.Close()
}

func (l *Ledger) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			url TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			fetched_at TIMESTAMP NOT NULL,
			last_used_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(name, version)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_name ON downloads (name)`,
	}
	for _, q := range queries {
		if _, err := l.conn.Exec(q); err != nil {
			return fmt.Errorf("executing %q: %w", q, err)
		}
	}
	return nil
}

// Lookup returns the archive hash of a previously downloaded package
// version, and marks it as recently used.
func (l *Ledger) Lookup(name, version string) (string, bool, error) {
	var hash string
	err := l.conn.QueryRow(
		`SELECT content_hash FROM downloads WHERE name = ? AND version = ?`,
		name, version).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up %s@%s: %w", name, version, err)
	}

	if _, err := l.conn.Exec(
		`UPDATE downloads SET last_used_at = ? WHERE name = ? AND version = ?`,
		time.Now().UTC(), name, version); err != nil {
		return "", false, fmt.Errorf("touching %s@%s: %w", name, version, err)
	}
	return hash, true, nil
}

// Record stores the archive hash of a downloaded package version.
func (l *Ledger) Record(name, version, url, hash string) error {
	_, err := l.conn.Exec(
		`INSERT INTO downloads (name, version, url, content_hash, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name, version) DO UPDATE SET
		   url = excluded.url,
		   content_hash = excluded.content_hash,
		   fetched_at = excluded.fetched_at`,
		name, version, url, hash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording %s@%s: %w", name, version, err)
	}
	return nil
}

// Prune removes ledger entries not used since the cutoff. The CAS files are
// left in place; they are shared and cheap to keep.
func (l *Ledger) Prune(cutoff time.Time) (int64, error) {
	res, err := l.conn.Exec(`DELETE FROM downloads WHERE last_used_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning ledger: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Entries lists the recorded downloads, most recently used first.
func (l *Ledger) Entries() ([]LedgerEntry, error) {
	rows, err := l.conn.Query(
		`SELECT name, version, url, content_hash, fetched_at, last_used_at
		 FROM downloads ORDER BY last_used_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing ledger: %w", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.Name, &e.Version, &e.URL, &e.ContentHash, &e.FetchedAt, &e.LastUsedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type LedgerEntry struct {
	Name        string
	Version     string
	URL         string
	ContentHash string
	FetchedAt   time.Time
	LastUsedAt  time.Time
}
