package travel

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// SharedStore is a second cache tier shared between processes.
type SharedStore interface {
	Get(ctx context.Context, key string) (Estimate, bool, error)
	Set(ctx context.Context, key string, e Estimate) error
}

type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisStore{rdb: redis.NewClient(opt), ttl: ttl, prefix: "travel:"}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (Estimate, bool, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Estimate{}, false, nil
	}
	if err != nil {
		return Estimate{}, false, err
	}
	var e Estimate
	if err := json.Unmarshal(raw, &e); err != nil {
		return Estimate{}, false, err
	}
	return e, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, e Estimate) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.prefix+key, data, s.ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
