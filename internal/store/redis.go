package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

const redisKeyPrefix = "lead-scout:profile:"

// RedisStore implements ProfileCache on Redis hashes. Keys expire natively
// after the TTL, so PurgeExpired has nothing to do.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedis connects to the Redis server at url (redis://...).
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "redis: parse url")
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "redis: ping")
	}
	return &RedisStore{client: client, ttl: ttl, now: time.Now}, nil
}

// Migrate only checks connectivity.
func (s *RedisStore) Migrate(ctx context.Context) error {
	return eris.Wrap(s.client.Ping(ctx).Err(), "redis: migrate")
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	fields, err := s.client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return nil, eris.Wrapf(err, "redis: get profile %s", key)
	}
	value, ok := fields["value"]
	if !ok {
		return nil, nil
	}
	ms, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, nil
	}
	e := &Entry{Key: key, Value: []byte(value), CreatedAt: time.UnixMilli(ms).UTC()}
	if !e.Fresh(s.now(), s.ttl) {
		return nil, nil
	}
	return e, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	k := redisKeyPrefix + key
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, "value", string(value), "created_at", s.now().UTC().UnixMilli())
		if s.ttl > 0 {
			p.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	return eris.Wrapf(err, "redis: set profile %s", key)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return eris.Wrapf(s.client.Del(ctx, redisKeyPrefix+key).Err(), "redis: delete profile %s", key)
}

func (s *RedisStore) PurgeExpired(context.Context, time.Duration) (int, error) {
	return 0, nil
}

func (s *RedisStore) Flush(ctx context.Context) (int, error) {
	var (
		n      int
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return n, eris.Wrap(err, "redis: scan profiles")
		}
		if len(keys) > 0 {
			deleted, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return n, eris.Wrap(err, "redis: flush profiles")
			}
			n += int(deleted)
		}
		if next == 0 {
			return n, nil
		}
		cursor = next
	}
}
