// Package vector provides a flat exact-search vector index with persistence.
package vector

import (
	"context"
	"errors"
)

// Index errors. Both conditions are detected eagerly at build or load time
// so a provider switch or a truncated artifact surfaces as a rebuild, never
// as silently wrong search results.
var (
	// ErrDimensionMismatch means stored and expected vector sizes disagree.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrIndexCorrupt means a persisted artifact is unreadable or the index
	// and its metadata store disagree in length.
	ErrIndexCorrupt = errors.New("vector index corrupt")
)

// Entry pairs an embedding vector with the identifier of its source item.
// Entries are stored in insertion order; the position is the implicit
// handle mapping a hit back to the parallel metadata store.
type Entry struct {
	ID     string
	Vector []float32
}

// Result is a single search hit, best match first. Distance is squared
// Euclidean: lower means more similar.
type Result struct {
	ID       string
	Distance float64
	Rank     int
}

// Index is nearest-neighbour search over fixed-dimension vectors.
type Index interface {
	Build(entries []Entry) error
	Search(ctx context.Context, query []float32, k int) ([]Result, error)
	Save(path string) error
	Load(path string) error
	Size() int
	Dimensions() int
}
