package dedup

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSet is a Set backed by a Redis set per protocol, for deployments
// where processed state must survive restarts.
type RedisSet struct {
	rdb       *redis.Client
	keyPrefix string
}

// NewRedisSet connects to Redis and verifies connectivity.
func NewRedisSet(ctx context.Context, addr, password string, db int) (*RedisSet, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &RedisSet{rdb: rdb, keyPrefix: "arbdetect:seen:"}, nil
}

// Compile-time interface check.
var _ Set = (*RedisSet)(nil)

func (s *RedisSet) key(protocol string) string {
	return s.keyPrefix + protocol
}

// Seen reports whether the signature was already marked.
func (s *RedisSet) Seen(ctx context.Context, protocol, signature string) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, s.key(protocol), signature).Result()
	if err != nil {
		return false, fmt.Errorf("redis: sismember: %w", err)
	}
	return ok, nil
}

// Mark records the signature as processed.
func (s *RedisSet) Mark(ctx context.Context, protocol, signature string) error {
	if err := s.rdb.SAdd(ctx, s.key(protocol), signature).Err(); err != nil {
		return fmt.Errorf("redis: sadd: %w", err)
	}
	return nil
}

// Close closes the underlying Redis connection.
func (s *RedisSet) Close() error {
	return s.rdb.Close()
}
