package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hapkit/internal/modules/pattern/domain"
	patternout "hapkit/internal/modules/pattern/port/out"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

type SQLitePatternIndex struct {
	db *sql.DB
}

func NewSQLitePatternIndex(dbPath string) (patternout.PatternIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	index := &SQLitePatternIndex{db: db}
	if err := index.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return index, nil
}

func (s *SQLitePatternIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS patterns (
  name TEXT PRIMARY KEY,
  path TEXT NOT NULL,
  events INTEGER NOT NULL,
  transients INTEGER NOT NULL,
  continuous INTEGER NOT NULL,
  duration REAL NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create patterns table: %w", err)
	}
	return nil
}

func (s *SQLitePatternIndex) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM patterns`); err != nil {
		return fmt.Errorf("reset patterns: %w", err)
	}
	return nil
}

func (s *SQLitePatternIndex) Upsert(ctx context.Context, entry domain.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	const stmt = `
INSERT INTO patterns (name, path, events, transients, continuous, duration, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
  path=excluded.path,
  events=excluded.events,
  transients=excluded.transients,
  continuous=excluded.continuous,
  duration=excluded.duration,
  updated_at=excluded.updated_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		entry.Name,
		entry.Path,
		entry.Events,
		entry.Transients,
		entry.Continuous,
		entry.Duration,
		entry.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert pattern: %w", err)
	}
	return nil
}

func (s *SQLitePatternIndex) List(ctx context.Context) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, path, events, transients, continuous, duration, updated_at
FROM patterns ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.Entry
	for rows.Next() {
		var entry domain.Entry
		var updatedAt string
		if err := rows.Scan(&entry.Name, &entry.Path, &entry.Events, &entry.Transients, &entry.Continuous, &entry.Duration, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan pattern row: %w", err)
		}
		if ts, err := time.Parse(timeLayout, updatedAt); err == nil {
			entry.UpdatedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pattern rows: %w", err)
	}
	return entries, nil
}
