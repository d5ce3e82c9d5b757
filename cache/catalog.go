// Package cache is the optional read-through cache for catalog listings.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"groovy/logger"

	"github.com/redis/go-redis/v9"
)

const (
	// CatalogPrefix namespaces every cached catalog listing.
	CatalogPrefix = "groovy:catalog:"

	KeyArtists = CatalogPrefix + "artists"
	KeyAlbums  = CatalogPrefix + "albums"
	KeySongs   = CatalogPrefix + "songs"

	// generationKey lives outside CatalogPrefix so Invalidate never drops it.
	generationKey = "groovy:catalog-generation"

	scanBatch = 100
)

// Store caches JSON encoded values.
type Store interface {
	// Get decodes the value under key into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	// Invalidate drops every key starting with prefix and bumps the generation.
	Invalidate(ctx context.Context, prefix string) error
	Generation(ctx context.Context) (int64, error)
	// SetAt stores value only while the generation is still gen.
	SetAt(ctx context.Context, key string, value interface{}, gen int64) (bool, error)
}

var errStaleGeneration = errors.New("cache generation changed")

// RedisStore keeps values in Redis with a fixed TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *RedisStore) Generation(ctx context.Context) (int64, error) {
	gen, err := s.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

// SetAt watches the generation key, so an Invalidate racing the write
// aborts the transaction.
func (s *RedisStore) SetAt(ctx context.Context, key string, value interface{}, gen int64) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, generationKey)
	switch {
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return true, nil
}

// Invalidate walks the keyspace with SCAN so large databases are not blocked.
func (s *RedisStore) Invalidate(ctx context.Context, prefix string) error {
	if err := s.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}
	iter := s.client.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Noop is used when caching is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, interface{}) error { return nil }
func (Noop) Invalidate(context.Context, string) error { return nil }
func (Noop) Generation(context.Context) (int64, error) { return 0, nil }
func (Noop) SetAt(context.Context, string, interface{}, int64) (bool, error) { return false, nil }

// Remember returns the cached value under key, or calls load and caches its
// result. A result loaded while the catalog was invalidated is returned but
// not cached. Cache failures are logged and never fail the request.
func Remember[T any](ctx context.Context, store Store, key string, load func() (T, error)) (T, error) {
	var cached T
	hit, err := store.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("cache read failed", logger.String("key", key), logger.ErrorField(err))
	}
	if hit {
		return cached, nil
	}

	gen, genErr := store.Generation(ctx)
	if genErr != nil {
		logger.Warn("cache generation read failed", logger.String("key", key), logger.ErrorField(genErr))
	}
	value, err := load()
	if err != nil || genErr != nil {
		return value, err
	}
	stored, err := store.SetAt(ctx, key, value, gen)
	if err != nil {
		logger.Warn("cache write failed", logger.String("key", key), logger.ErrorField(err))
	} else if !stored {
		logger.Debug("catalog changed while loading, result not cached", logger.String("key", key))
	}
	return value, nil
}
