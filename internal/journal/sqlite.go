package journal

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/sirupsen/logrus"

	ioutils "github.com/handiism/artinject/internal/io"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS injections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		format TEXT NOT NULL,
		cover TEXT NOT NULL,
		injected_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS injections_path ON injections (path);
	`

// SQLiteStore is a Store backed by a SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *logrus.Entry
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the journal database at path.
func OpenSQLite(path string, logger *logrus.Entry) (*SQLiteStore, error) {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("%w: %w (%w)", ErrJournal, ErrOpen, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w (%w)", ErrJournal, ErrOpen, err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w (%w)", ErrJournal, ErrOpen, err)
	}

	logger.WithField("path", path).Debug("Journal opened")

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Record implements Store.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	if e.InjectedAt.IsZero() {
		e.InjectedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO injections (path, format, cover, injected_at) VALUES (?, ?, ?, ?)",
		e.Path, e.Format, e.Cover, e.InjectedAt.UTC())
	if err != nil {
		return fmt.Errorf("%w: %w (%w)", ErrJournal, ErrWrite, err)
	}

	return nil
}

// Entries implements Store.
func (s *SQLiteStore) Entries(ctx context.Context, path string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, format, cover, injected_at FROM injections WHERE path = ? ORDER BY id", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w (%w)", ErrJournal, ErrRead, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Path, &e.Format, &e.Cover, &e.InjectedAt); err != nil {
			return nil, fmt.Errorf("%w: %w (%w)", ErrJournal, ErrRead, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w (%w)", ErrJournal, ErrRead, err)
	}

	return entries, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM injections").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w (%w)", ErrJournal, ErrRead, err)
	}
	return count, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.logger.Debug("Journal closed")
	return err
}
