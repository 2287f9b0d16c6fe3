// Package memory provides an exact (brute-force) in-memory vector index.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an exact nearest-neighbour index over normalised vectors.
// Scores are inner products, which equal cosine similarity after
// normalisation. Suitable for corpora up to a few hundred thousand
// vectors; larger deployments want an ANN backend.
type Index struct {
	mu        sync.RWMutex
	dimension int
	path      string
	docs      map[string]domain.Document
	order     []string
	closed    bool
}

// Config holds configuration for the in-memory index.
type Config struct {
	// Dimension is the expected embedding size (required).
	Dimension int

	// Path is the snapshot file for Save/Load. Empty disables persistence.
	Path string
}

// New creates an in-memory vector index.
func New(cfg Config) (*Index, error) {
	if cfg.Dimension <= 0 {
		return nil, errors.New("memory index: dimension must be positive")
	}
	return &Index{
		dimension: cfg.Dimension,
		path:      cfg.Path,
		docs:      make(map[string]domain.Document),
	}, nil
}

// AddDocuments inserts documents, normalising their embeddings.
func (idx *Index) AddDocuments(_ context.Context, docs []domain.Document) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return domain.ErrIndexClosed
	}

	for i := range docs {
		doc := docs[i]
		if len(doc.Embedding) != idx.dimension {
			return fmt.Errorf("memory index: document %s has dimension %d, want %d",
				doc.ID, len(doc.Embedding), idx.dimension)
		}
		doc.Embedding = normalize(doc.Embedding)
		if _, exists := idx.docs[doc.ID]; !exists {
			idx.order = append(idx.order, doc.ID)
		}
		idx.docs[doc.ID] = doc
	}
	return nil
}

// Search finds the k most similar documents to the query vector.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, domain.ErrIndexClosed
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("memory index: query has dimension %d, want %d", len(query), idx.dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	normalized := normalize(query)

	hits := make([]driven.VectorHit, 0, len(idx.docs))
	for _, id := range idx.order {
		doc := idx.docs[id]
		hits = append(hits, driven.VectorHit{
			Document:   doc,
			Similarity: dot(normalized, doc.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// GetDocument retrieves a stored document by ID.
func (idx *Index) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, domain.ErrIndexClosed
	}
	doc, ok := idx.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Count returns the number of stored documents.
func (idx *Index) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return 0, domain.ErrIndexClosed
	}
	return len(idx.docs), nil
}

// Clear removes all documents.
func (idx *Index) Clear(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return domain.ErrIndexClosed
	}
	idx.docs = make(map[string]domain.Document)
	idx.order = nil
	return nil
}

// snapshot is the on-disk representation of the index.
type snapshot struct {
	Dimension int               `json:"dimension"`
	Documents []domain.Document `json:"documents"`
}

// Save persists the index to its configured snapshot path.
func (idx *Index) Save(_ context.Context) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return domain.ErrIndexClosed
	}
	if idx.path == "" {
		return nil
	}

	snap := snapshot{Dimension: idx.dimension}
	for _, id := range idx.order {
		snap.Documents = append(snap.Documents, idx.docs[id])
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(idx.path), 0700); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	// Write-then-rename so a crash never leaves a torn snapshot.
	tmp := idx.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, idx.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load restores the index from its configured snapshot path. A missing
// snapshot leaves the index empty.
func (idx *Index) Load(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return domain.ErrIndexClosed
	}
	if idx.path == "" {
		return nil
	}

	data, err := os.ReadFile(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snap.Dimension != idx.dimension {
		return fmt.Errorf("memory index: snapshot dimension %d, want %d", snap.Dimension, idx.dimension)
	}

	idx.docs = make(map[string]domain.Document, len(snap.Documents))
	idx.order = make([]string, 0, len(snap.Documents))
	for _, doc := range snap.Documents {
		idx.docs[doc.ID] = doc
		idx.order = append(idx.order, doc.ID)
	}
	return nil
}

// Close releases resources.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closed = true
	idx.docs = nil
	idx.order = nil
	return nil
}

// normalize returns the unit vector; zero vectors pass through unchanged.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
