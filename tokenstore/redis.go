package tokenstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore shares the session id between hosts talking to the same
// daemon.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects using a redis:// URL. The id is stored under
// prefix + Key.
func NewRedisStore(ctx context.Context, connectionURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(connectionURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return &RedisStore{client: client, key: prefix + Key}, nil
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	value, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "get session id")
	}
	return value, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string) error {
	return errors.Wrap(s.client.Set(ctx, s.key, sessionID, 0).Err(), "set session id")
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
