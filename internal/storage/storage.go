// Package storage persists the item metadata store that parallels the vector index.
package storage

import (
	"context"

	"github.com/skillsift/skillsift/internal/models"
)

// ItemStore holds catalog items in insertion order. It is the metadata
// half of the persisted index: position N here corresponds to entry N in
// the vector index, and the two are always replaced together.
type ItemStore interface {
	// Replace atomically swaps the stored items for the given list.
	Replace(ctx context.Context, items []models.Assessment) error

	// List returns all items in insertion order.
	List(ctx context.Context) ([]models.Assessment, error)

	// Count returns the number of stored items.
	Count(ctx context.Context) (int64, error)

	Close() error
}
