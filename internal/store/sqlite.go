package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements ProfileCache using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
// The parent directory is created when missing.
func NewSQLite(dsn string, ttl time.Duration) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "project_profiles.db"
	}
	if !strings.HasPrefix(dsn, "file:") && !strings.Contains(dsn, ":memory:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, eris.Wrapf(err, "sqlite: create dir %s", dir)
			}
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}, nil
}

// created_at holds unix milliseconds so range deletes compare numerically.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS project_profiles (
	reference_url TEXT PRIMARY KEY,
	profile_json  TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_project_profiles_created_at ON project_profiles(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT profile_json, created_at FROM project_profiles WHERE reference_url = ?`,
		key,
	)

	var (
		value string
		ms    int64
	)
	err := row.Scan(&value, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get profile %s", key)
	}

	e := &Entry{Key: key, Value: []byte(value), CreatedAt: time.UnixMilli(ms).UTC()}
	if !e.Fresh(s.now(), s.ttl) {
		if err := s.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return e, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO project_profiles (reference_url, profile_json, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(reference_url) DO UPDATE SET profile_json = excluded.profile_json, created_at = excluded.created_at`,
		key, string(value), s.now().UTC().UnixMilli(),
	)
	return eris.Wrapf(err, "sqlite: set profile %s", key)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM project_profiles WHERE reference_url = ?`, key)
	return eris.Wrapf(err, "sqlite: delete profile %s", key)
}

func (s *SQLiteStore) PurgeExpired(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-ttl).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM project_profiles WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: purge expired profiles")
	}
	return rowsAffected(res)
}

func (s *SQLiteStore) Flush(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM project_profiles`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: flush profiles")
	}
	return rowsAffected(res)
}

func rowsAffected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return int(n), nil
}
