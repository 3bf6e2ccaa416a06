package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Store wraps Redis with read-through and write-invalidate helpers. Postgres
// stays the source of truth: any Redis failure degrades to the loader and is
// logged, it never fails the request.
type Store struct {
	client *redis.Client
	logger *slog.Logger
	group  singleflight.Group
}

// NewStore instantiates the cache helper.
func NewStore(client *redis.Client, logger *slog.Logger) *Store {
	return &Store{client: client, logger: logger}
}

// FetchJSON loads a cached value or populates it from the loader. A loader
// error caches nothing, so absence is never cached. Concurrent misses on the
// same key are collapsed into a single loader call.
func (s *Store) FetchJSON(ctx context.Context, key string, ttl time.Duration, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if s == nil || s.client == nil {
		return s.loadInto(ctx, dest, loader)
	}

	payload, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		uerr := json.Unmarshal(payload, dest)
		if uerr == nil {
			return nil
		}
		// A corrupt or schema-incompatible payload must not pin the key
		// until its TTL: drop it and rebuild from the store.
		s.warn("cache payload unreadable, rebuilding", key, uerr)
		s.Invalidate(ctx, key)
	case err != redis.Nil:
		// Cache unavailable: serve from the source of truth instead of
		// failing the request, and skip repopulation.
		s.warn("cache get failed, falling back to store", key, err)
		return s.loadInto(ctx, dest, loader)
	}

	raw, err := s.populate(ctx, key, ttl, loader)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// populate runs the loader and stores its result, collapsing concurrent
// callers for the same key into one database round trip.
func (s *Store) populate(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) (interface{}, error)) ([]byte, error) {
	out, err, _ := s.group.Do(key, func() (interface{}, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
			s.warn("cache set failed", key, err)
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

// Invalidate deletes the given keys. Callers invoke it strictly after the
// database write commits; a failure is reported but does not roll the write
// back.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if s == nil || s.client == nil || len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.warn("cache invalidation failed", keys[0], err)
	}
}

func (s *Store) loadInto(ctx context.Context, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (s *Store) warn(msg, key string, err error) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Warn(msg, slog.String("key", key), slog.Any("error", err))
}
