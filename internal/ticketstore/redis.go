package ticketstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	valueField   = "v"
	counterField = "n"
)

var compareAndDeleteScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], ARGV[1]) == ARGV[2] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

var incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
    return -1
end
return redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
`)

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// RedisStore is a Store backed by Redis hashes. Each entry is a hash holding the value and
// the counter; key expiry is delegated to Redis. CompareAndDelete and Increment run as Lua
// scripts so they are atomic across processes.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a RedisStore that namespaces every key with prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Ping reports whether Redis is reachable. Used by the readiness endpoint.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) key(key string) string {
	return r.prefix + key
}

// Put implements Store.
func (r *RedisStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	k := r.key(key)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, valueField, value, counterField, 0)
		if ttl > 0 {
			pipe.PExpire(ctx, k, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put ticket: %w", err)
	}
	return nil
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	values, err := r.client.HMGet(ctx, r.key(key), valueField, counterField).Result()
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if len(values) != 2 || values[0] == nil {
		return nil, ErrNotFound
	}

	value, ok := values[0].(string)
	if !ok {
		return nil, fmt.Errorf("get ticket: unexpected value type %T", values[0])
	}

	var counter int64
	if raw, ok := values[1].(string); ok {
		counter, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("get ticket: parse counter: %w", err)
		}
	}

	return &Entry{Value: value, Counter: counter}, nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	return nil
}

// CompareAndDelete implements Store.
func (r *RedisStore) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	deleted, err := compareAndDeleteScript.Run(ctx, r.client, []string{r.key(key)}, valueField, expected).Int64()
	if err != nil {
		return false, fmt.Errorf("compare and delete ticket: %w", err)
	}
	return deleted == 1, nil
}

// Increment implements Store.
func (r *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	counter, err := incrementScript.Run(ctx, r.client, []string{r.key(key)}, counterField).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment ticket: %w", err)
	}
	if counter < 0 {
		return 0, ErrNotFound
	}
	return counter, nil
}
