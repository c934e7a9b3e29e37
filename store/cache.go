package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"items-api/models"
)

const cacheKeyPrefix = "item:"

// CachedItemStore puts a Redis read-through cache in front of another store.
// Single item reads are cached; writes to an item invalidate its key. Redis
// failures are logged and the wrapped store answers instead.
type CachedItemStore struct {
	next   ItemStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ItemStore = (*CachedItemStore)(nil)

func NewCachedItemStore(next ItemStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedItemStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedItemStore{next: next, client: client, ttl: ttl, logger: logger}
}

func cacheKey(id string) string {
	return cacheKeyPrefix + id
}

// versionKey is bumped on every write to an item. Get watches it so a read
// that overlaps a write never puts the old value back.
func versionKey(id string) string {
	return cacheKeyPrefix + id + ":version"
}

func (s *CachedItemStore) List(ctx context.Context) ([]models.Item, error) {
	return s.next.List(ctx)
}

func (s *CachedItemStore) Get(ctx context.Context, id string) (models.Item, error) {
	val, err := s.client.Get(ctx, cacheKey(id)).Result()
	switch {
	case err == nil:
		var item models.Item
		if jsonErr := json.Unmarshal([]byte(val), &item); jsonErr == nil {
			return item, nil
		}
		s.logger.Warn("discarding unreadable cache entry", "item_id", id)
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("cache read failed", "item_id", id, "error", err)
	}

	var (
		item    models.Item
		loadErr error
		loaded  bool
	)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		item, loadErr = s.next.Get(ctx, id)
		loaded = true
		if loadErr != nil {
			return nil
		}
		jsonItem, err := json.Marshal(item)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(id), jsonItem, s.ttl)
			return nil
		})
		return err
	}, versionKey(id))
	switch {
	case errors.Is(err, redis.TxFailedErr):
		s.logger.Debug("item changed while loading, not caching", "item_id", id)
	case err != nil:
		s.logger.Warn("cache write failed", "item_id", id, "error", err)
	}

	if !loaded {
		item, loadErr = s.next.Get(ctx, id)
	}
	if loadErr != nil {
		return models.Item{}, loadErr
	}
	return item, nil
}

func (s *CachedItemStore) Insert(ctx context.Context, in models.CreateItemInput) (models.Item, error) {
	return s.next.Insert(ctx, in)
}

func (s *CachedItemStore) Update(ctx context.Context, id string, in models.UpdateItemInput) (models.Item, error) {
	item, err := s.next.Update(ctx, id, in)
	s.invalidate(ctx, id)
	return item, err
}

func (s *CachedItemStore) Delete(ctx context.Context, id string) error {
	err := s.next.Delete(ctx, id)
	s.invalidate(ctx, id)
	return err
}

func (s *CachedItemStore) invalidate(ctx context.Context, id string) {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(id))
		if s.ttl > 0 {
			pipe.Expire(ctx, versionKey(id), s.ttl)
		}
		pipe.Del(ctx, cacheKey(id))
		return nil
	})
	if err != nil {
		s.logger.Warn("cache invalidation failed", "item_id", id, "error", err)
	}
}
