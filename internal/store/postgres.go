package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of *pgxpool.Pool used by PostgresStore.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements ProfileCache using pgxpool.
type PostgresStore struct {
	pool Pool
	ttl  time.Duration
	now  func() time.Time
}

// NewPostgres creates a PostgresStore with a small connection pool.
func NewPostgres(ctx context.Context, connString string, ttl time.Duration) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, ttl: ttl, now: time.Now}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS project_profiles (
	reference_url TEXT PRIMARY KEY,
	profile_json  JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_project_profiles_created_at ON project_profiles(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*Entry, error) {
	var (
		value     []byte
		createdAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT profile_json, created_at FROM project_profiles WHERE reference_url = $1`,
		key,
	).Scan(&value, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get profile %s", key)
	}

	e := &Entry{Key: key, Value: value, CreatedAt: createdAt}
	if !e.Fresh(s.now(), s.ttl) {
		if err := s.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return e, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO project_profiles (reference_url, profile_json, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (reference_url) DO UPDATE SET profile_json = EXCLUDED.profile_json, created_at = EXCLUDED.created_at`,
		key, string(value), s.now().UTC(),
	)
	return eris.Wrapf(err, "postgres: set profile %s", key)
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM project_profiles WHERE reference_url = $1`, key)
	return eris.Wrapf(err, "postgres: delete profile %s", key)
}

func (s *PostgresStore) PurgeExpired(ctx context.Context, ttl time.Duration) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM project_profiles WHERE created_at < $1`,
		s.now().UTC().Add(-ttl),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: purge expired profiles")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) Flush(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM project_profiles`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: flush profiles")
	}
	return int(tag.RowsAffected()), nil
}
