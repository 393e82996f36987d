package selection

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps selections in Redis under <prefix>:selected:<kind>:<actor>
// so they survive restarts and are shared between bot replicas.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(actorID string, kind Kind) string {
	return fmt.Sprintf("%s:selected:%s:%s", s.prefix, kind, actorID)
}

func (s *RedisStore) Get(ctx context.Context, actorID string, kind Kind) (int, bool, error) {
	v, err := s.rdb.Get(ctx, s.key(actorID, kind)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get selection: %w", err)
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("decode selection %q: %w", v, err)
	}
	return id, true, nil
}

func (s *RedisStore) Set(ctx context.Context, actorID string, kind Kind, id int) error {
	if err := s.rdb.Set(ctx, s.key(actorID, kind), id, 0).Err(); err != nil {
		return fmt.Errorf("set selection: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, actorID string, kind Kind) error {
	if err := s.rdb.Del(ctx, s.key(actorID, kind)).Err(); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}
