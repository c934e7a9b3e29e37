// Package store holds the item storage backends: the seeded in-memory list,
// a MongoDB collection and a Redis read-through cache that can wrap either.
package store

import (
	"context"
	"errors"

	"items-api/models"
)

// ErrItemNotFound is returned when no item has the requested id.
var ErrItemNotFound = errors.New("item not found")

// ItemStore defines the storage operations used by the item controller.
type ItemStore interface {
	// List returns every item in insertion order.
	List(ctx context.Context) ([]models.Item, error)

	// Get returns the item with the given id or ErrItemNotFound.
	Get(ctx context.Context, id string) (models.Item, error)

	// Insert stores a new item and returns it with its assigned id.
	Insert(ctx context.Context, in models.CreateItemInput) (models.Item, error)

	// Update merges the provided fields over the stored item.
	Update(ctx context.Context, id string, in models.UpdateItemInput) (models.Item, error)

	// Delete removes the item with the given id or returns ErrItemNotFound.
	Delete(ctx context.Context, id string) error
}

// SeedItems returns the two records every fresh memory store starts with.
func SeedItems() []models.Item {
	return []models.Item{
		{
			ID:          "1",
			Name:        "Item 1",
			Description: "Description 1",
			Price:       10.99,
			Category:    models.CategoryElectronics,
		},
		{
			ID:          "2",
			Name:        "Item 2",
			Description: "Description 2",
			Price:       25.5,
			Category:    models.CategoryBooks,
		},
	}
}
