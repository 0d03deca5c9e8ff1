package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stahnma/gh-repometa/internal/format"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    saved_at TEXT NOT NULL,
    body TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS totals (
    date TEXT PRIMARY KEY,
    total INTEGER
);
CREATE TABLE IF NOT EXISTS repositories (
    repository TEXT PRIMARY KEY,
    first_seen TEXT
);
`

// SQLiteSink keeps every saved snapshot plus the date each repository was first seen.
type SQLiteSink struct {
	db  *sql.DB
	Now func() time.Time
}

// OpenSQLite opens (and creates if needed) the history database at path.
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=30000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history tables: %w", err)
	}
	return &SQLiteSink{db: db, Now: time.Now}, nil
}

func (s *SQLiteSink) Save(ctx context.Context, name string, v any) error {
	body, err := format.MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	now := s.Now().UTC()
	date := now.Format("2006-01-02")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO snapshots (name, saved_at, body) VALUES (?, ?, ?)",
		name, now.Format(time.RFC3339), string(body)); err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	if named, ok := v.(Named); ok {
		names := named.RepositoryNames()
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO totals (date, total) VALUES (?, ?)", date, len(names)); err != nil {
			return fmt.Errorf("recording total: %w", err)
		}
		for _, repo := range names {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO repositories (repository, first_seen) VALUES (?, ?) ON CONFLICT(repository) DO UPDATE SET first_seen = MIN(first_seen, ?)",
				repo, date, date); err != nil {
				return fmt.Errorf("recording %s: %w", repo, err)
			}
		}
	}
	return tx.Commit()
}

// FirstSeen returns the date a repository first appeared in a saved snapshot.
func (s *SQLiteSink) FirstSeen(ctx context.Context, repo string) (string, bool, error) {
	var date string
	err := s.db.QueryRowContext(ctx, "SELECT first_seen FROM repositories WHERE repository = ?", repo).Scan(&date)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return date, true, nil
}

// Total returns the repository count recorded for date (YYYY-MM-DD).
func (s *SQLiteSink) Total(ctx context.Context, date string) (int, bool, error) {
	var total int
	err := s.db.QueryRowContext(ctx, "SELECT total FROM totals WHERE date = ?", date).Scan(&total)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return total, true, nil
}

// Snapshots returns how many snapshots were saved under name.
func (s *SQLiteSink) Snapshots(ctx context.Context, name string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshots WHERE name = ?", name).Scan(&n)
	return n, err
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
