package driven

import (
	"context"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
)

// VectorIndex provides semantic similarity search over stored documents.
// Scores are higher-is-better inner products over normalised vectors, so
// they behave as cosine similarity in [0,1] for non-degenerate inputs.
type VectorIndex interface {
	// AddDocuments inserts documents with their embeddings.
	AddDocuments(ctx context.Context, docs []domain.Document) error

	// Search finds the k most similar documents to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// GetDocument retrieves a stored document by ID.
	// Returns domain.ErrNotFound if absent.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Clear removes all documents.
	Clear(ctx context.Context) error

	// Save persists the index to its configured location.
	Save(ctx context.Context) error

	// Load restores the index from its configured location.
	Load(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// Document is the matched document.
	Document domain.Document

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
