package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/telhawk-systems/telhawk-csv/internal/csv/headers"
	"github.com/telhawk-systems/telhawk-csv/internal/event"
)

// RedisStore keeps each header block in a Redis hash keyed by source. The hash
// fields are the property names of the block.
type RedisStore struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl keeps blocks forever.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: client, prefix: prefix, ttl: ttl}
}

// NewRedisStoreFromURL connects to the Redis server at url.
func NewRedisStoreFromURL(url, prefix string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opts), prefix, ttl), nil
}

func (s *RedisStore) key(source string) string {
	return s.prefix + source
}

func (s *RedisStore) Save(ctx context.Context, source string, h *headers.Headers) error {
	rec, err := snapshot(source, h)
	if err != nil {
		return err
	}

	values := make(map[string]interface{}, len(rec.tokens)+1)
	if rec.hasLine {
		values[event.LineNumberProperty] = rec.lineNumber
	}
	for k, v := range rec.tokens {
		values[k] = v
	}

	key := s.key(source)
	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, key)
	if len(values) > 0 {
		pipe.HSet(ctx, key, values)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save header block: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, source string) (*headers.Headers, error) {
	values, err := s.redis.HGetAll(ctx, s.key(source)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get header block: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrNotFound
	}

	rec := &record{tokens: make(map[string]string, len(values))}
	for k, v := range values {
		if k == event.LineNumberProperty {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid stored line number %q: %w", v, err)
			}
			rec.lineNumber, rec.hasLine = n, true
			continue
		}
		rec.tokens[k] = v
	}
	return rec.restore(), nil
}

func (s *RedisStore) Delete(ctx context.Context, source string) error {
	n, err := s.redis.Del(ctx, s.key(source)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete header block: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() error { return s.redis.Close() }
