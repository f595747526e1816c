package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a file-backed Store.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the cache database at path, creating its
// directory when missing.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS responses (
			key TEXT PRIMARY KEY,
			status INTEGER NOT NULL,
			content_type TEXT NOT NULL,
			body BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (Entry, bool, error) {
	var (
		e       Entry
		expires int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT status, content_type, body, expires_at FROM responses WHERE key = ?`, key,
	).Scan(&e.StatusCode, &e.ContentType, &e.Body, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	if s.now().UnixNano() >= expires {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE key = ?`, key); err != nil {
			return Entry{}, false, fmt.Errorf("evict cache entry: %w", err)
		}
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	body := entry.Body
	if body == nil {
		body = []byte{}
	}
	// A zero ttl keeps the entry, as redis does.
	expires := int64(math.MaxInt64)
	if ttl > 0 {
		expires = s.now().Add(ttl).UnixNano()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO responses (key, status, content_type, body, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			status = excluded.status,
			content_type = excluded.content_type,
			body = excluded.body,
			expires_at = excluded.expires_at`,
		key, entry.StatusCode, entry.ContentType, body, expires,
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
