package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"items-api/models"
	"items-api/store"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func validInput(name string) models.CreateItemInput {
	return models.CreateItemInput{
		Name:     strPtr(name),
		Price:    floatPtr(5),
		Category: strPtr("books"),
	}
}

func TestMemoryItemStore_Seeded(t *testing.T) {
	s := store.NewMemoryItemStore()
	items, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "2", items[1].ID)
	assert.Equal(t, models.CategoryBooks, items[1].Category)
}

func TestMemoryItemStore_InsertAssignsNewID(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryItemStore()

	item, err := s.Insert(ctx, validInput("X"))
	require.NoError(t, err)
	assert.NotContains(t, []string{"1", "2"}, item.ID)

	got, err := s.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item, got)

	items, _ := s.List(ctx)
	assert.Len(t, items, 3)
}

func TestMemoryItemStore_IDsNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryItemStore()

	first, err := s.Insert(ctx, validInput("A"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "2"))

	second, err := s.Insert(ctx, validInput("B"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestMemoryItemStore_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryItemStore()

	updated, err := s.Update(ctx, "1", models.UpdateItemInput{Price: floatPtr(99)})
	require.NoError(t, err)
	assert.Equal(t, 99.0, updated.Price)
	assert.Equal(t, "Item 1", updated.Name)
	assert.Equal(t, "Description 1", updated.Description)
	assert.Equal(t, models.CategoryElectronics, updated.Category)

	_, err = s.Update(ctx, "missing", models.UpdateItemInput{Price: floatPtr(1)})
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestMemoryItemStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryItemStore()

	require.NoError(t, s.Delete(ctx, "1"))
	_, err := s.Get(ctx, "1")
	assert.ErrorIs(t, err, store.ErrItemNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "1"), store.ErrItemNotFound)
}

func TestMemoryItemStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryItemStore()
	_, _ = s.Insert(ctx, validInput("X"))
	_ = s.Delete(ctx, "1")

	s.Reset()

	items, _ := s.List(ctx)
	assert.Equal(t, store.SeedItems(), items)
	item, _ := s.Insert(ctx, validInput("Y"))
	assert.Equal(t, "3", item.ID)
}

func TestMemoryItemStore_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryItemStore()

	items, _ := s.List(ctx)
	items[0].Name = "mutated"

	got, _ := s.Get(ctx, "1")
	assert.Equal(t, "Item 1", got.Name)
}

func TestMemoryItemStore_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryItemStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Insert(ctx, validInput("c"))
		}()
	}
	wg.Wait()

	items, _ := s.List(ctx)
	require.Len(t, items, 52)
	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
		seen[it.ID] = true
	}
}
