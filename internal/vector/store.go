// Package vector provides the per-user similarity store used by the
// feedback learners: short text documents embedded and indexed in Qdrant,
// one collection per (user, learner kind).
package vector

import "context"

// Match is one nearest-neighbour result, similarity score in [0,1].
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// SimilarityStore is the consumed nearest-neighbour interface. All methods
// operate on a named collection; collections are never merged.
type SimilarityStore interface {
	Upsert(ctx context.Context, collection, docID, text string, metadata map[string]string) error
	Search(ctx context.Context, collection, query string, topK int) ([]Match, error)
	Count(ctx context.Context, collection string) (int, error)
	DeleteCollection(ctx context.Context, collection string) error
}
