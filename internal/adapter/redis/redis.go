package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

const opTimeout = 2 * time.Second

type RedisAdapter struct {
	client *redis.Client
}

var _ ports.CachePort = (*RedisAdapter)(nil)

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

// Get returns redis.Nil when the key is absent.
func (r *RedisAdapter) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.client.Get(ctx, key).Bytes()
}

func (r *RedisAdapter) Set(key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisAdapter) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.client.Del(ctx, key).Err()
}
