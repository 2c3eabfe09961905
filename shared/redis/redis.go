package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"customer-feedback-hub/backend/pkg/resilience"

	"github.com/redis/go-redis/v9"
)

// Options configures the Redis-backed cache
type Options struct {
	Addr      string
	Password  string
	DB        int
	TTL       time.Duration
	KeyPrefix string
}

// RedisClient is a cache.Store backed by Redis. Every call goes through a
// circuit breaker so an unreachable Redis degrades to cache misses.
type RedisClient struct {
	client  *redis.Client
	breaker *resilience.CircuitBreaker
	ttl     time.Duration
	prefix  string
}

func NewRedisClient(opts Options, breaker *resilience.CircuitBreaker) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisClientFrom(client, opts, breaker)
}

// NewRedisClientFrom wraps an existing go-redis client
func NewRedisClientFrom(client *redis.Client, opts Options, breaker *resilience.CircuitBreaker) *RedisClient {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "feedback-hub:"
	}
	return &RedisClient{client: client, breaker: breaker, ttl: opts.TTL, prefix: prefix}
}

func (r *RedisClient) Get(ctx context.Context, key string, dst any) (bool, error) {
	var data []byte
	err := r.breaker.Execute(func() error {
		var err error
		data, err = r.client.Get(ctx, r.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil || data == nil {
		return false, err
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisClient) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.breaker.Execute(func() error {
		return r.client.Set(ctx, r.prefix+key, data, r.ttl).Err()
	})
}

func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.prefix + key
	}
	return r.breaker.Execute(func() error {
		return r.client.Del(ctx, prefixed...).Err()
	})
}

// Ping reports whether Redis is reachable, bypassing the breaker
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
