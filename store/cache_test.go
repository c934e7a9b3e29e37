package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"items-api/models"
	"items-api/store"
)

func newCachedStore(t *testing.T) (*store.CachedItemStore, *store.MemoryItemStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backing := store.NewMemoryItemStore()
	return store.NewCachedItemStore(backing, client, 5*time.Minute, nil), backing, mr
}

func TestCachedItemStore_GetPopulatesCache(t *testing.T) {
	s, _, mr := newCachedStore(t)

	item, err := s.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Item 1", item.Name)

	assert.True(t, mr.Exists("item:1"))
	assert.Equal(t, 5*time.Minute, mr.TTL("item:1"))
}

func TestCachedItemStore_GetServesCachedValue(t *testing.T) {
	s, _, mr := newCachedStore(t)
	require.NoError(t, mr.Set("item:1", `{"id":"1","name":"cached","price":1,"category":"toys"}`))

	item, err := s.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "cached", item.Name)
}

func TestCachedItemStore_MissNotCached(t *testing.T) {
	s, _, mr := newCachedStore(t)

	_, err := s.Get(context.Background(), "404")
	assert.ErrorIs(t, err, store.ErrItemNotFound)
	assert.False(t, mr.Exists("item:404"))
}

func TestCachedItemStore_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	s, _, mr := newCachedStore(t)

	_, err := s.Get(ctx, "1")
	require.NoError(t, err)
	require.True(t, mr.Exists("item:1"))

	updated, err := s.Update(ctx, "1", models.UpdateItemInput{Name: strPtr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.False(t, mr.Exists("item:1"))
	assert.True(t, mr.Exists("item:1:version"))

	got, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	require.NoError(t, s.Delete(ctx, "1"))
	assert.False(t, mr.Exists("item:1"))
	_, err = s.Get(ctx, "1")
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

// racingStore runs onGet after reading, as if a write landed while the
// value was on its way back to the cache.
type racingStore struct {
	store.ItemStore
	onGet func()
}

func (s *racingStore) Get(ctx context.Context, id string) (models.Item, error) {
	item, err := s.ItemStore.Get(ctx, id)
	if s.onGet != nil {
		hook := s.onGet
		s.onGet = nil
		hook()
	}
	return item, err
}

func TestCachedItemStore_ConcurrentWriteNotOverwritten(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backing := &racingStore{ItemStore: store.NewMemoryItemStore()}
	s := store.NewCachedItemStore(backing, client, 5*time.Minute, nil)
	backing.onGet = func() {
		_, err := s.Update(ctx, "1", models.UpdateItemInput{Name: strPtr("renamed")})
		require.NoError(t, err)
	}

	stale, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Item 1", stale.Name)
	assert.False(t, mr.Exists("item:1"), "stale read must not be cached")

	fresh, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", fresh.Name)
	assert.True(t, mr.Exists("item:1"))
}

func TestCachedItemStore_FallsBackWhenRedisDown(t *testing.T) {
	s, _, mr := newCachedStore(t)
	mr.Close()

	item, err := s.Get(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Item 2", item.Name)

	require.NoError(t, s.Delete(context.Background(), "2"))
}
