// Package index stores résumé chunks with their embeddings, one collection per
// document.
package index

import (
	"context"
	"errors"
)

var ErrEmptyCollectionID = errors.New("collection id is required")

// Chunk is one indexed piece of a document.
type Chunk struct {
	Content   string
	Embedding []float32
}

// Gateway is the embedding index. FetchAllChunks returns an empty slice for
// a missing collection. ReplaceCollection swaps the whole collection at once:
// readers see either the previous chunks or the new ones.
type Gateway interface {
	FetchAllChunks(ctx context.Context, collectionID string) ([]string, error)
	ReplaceCollection(ctx context.Context, collectionID string, chunks []Chunk) error
}
