// Package store persists reference project profiles keyed by reference URL.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/config"
)

// Entry is one cached profile. Value is the serialized ProjectProfile.
type Entry struct {
	Key       string
	Value     []byte
	CreatedAt time.Time
}

// Fresh reports whether e was written less than ttl before now.
func (e *Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return e != nil && !e.CreatedAt.Before(now.Add(-ttl))
}

// ProfileCache stores at most one entry per key. Writes are last-write-wins.
type ProfileCache interface {
	// Get returns the entry for key, or nil when it is missing or older
	// than the cache TTL.
	Get(ctx context.Context, key string) (*Entry, error)
	// Set upserts value under key with a fresh timestamp.
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// PurgeExpired removes entries older than ttl and returns how many were
	// removed.
	PurgeExpired(ctx context.Context, ttl time.Duration) (int, error)
	// Flush removes every entry and returns how many were removed.
	Flush(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the backend named by cfg.Driver and runs its migration.
func Open(ctx context.Context, cfg config.StoreConfig, ttl time.Duration) (ProfileCache, error) {
	var (
		cache ProfileCache
		err   error
	)
	switch cfg.Driver {
	case "", "sqlite":
		cache, err = NewSQLite(cfg.DatabaseURL, ttl)
	case "postgres":
		cache, err = NewPostgres(ctx, cfg.DatabaseURL, ttl)
	case "redis":
		cache, err = NewRedis(ctx, cfg.RedisURL, ttl)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := cache.Migrate(ctx); err != nil {
		cache.Close() //nolint:errcheck
		return nil, err
	}
	return cache, nil
}
