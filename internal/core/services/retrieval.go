package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
	"github.com/custodia-labs/volam-cli/internal/logger"
)

// minVOLaMCandidates is the floor on the over-fetch size in VOLaM mode.
const minVOLaMCandidates = 10

// RetrievalService turns a query into raw evidence candidates by calling
// the embedding provider and the vector index.
type RetrievalService struct {
	embeddingService driven.EmbeddingService
	vectorIndex      driven.VectorIndex
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(
	embeddingService driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
) *RetrievalService {
	return &RetrievalService{
		embeddingService: embeddingService,
		vectorIndex:      vectorIndex,
	}
}

// Retrieve fetches candidate evidence for the query. Baseline mode requests
// exactly k candidates; VOLaM mode requests max(2k, 10) to give the ranker
// re-ranking headroom before truncation. Collaborator failures propagate
// without retry.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query string, k int, mode domain.RankingMode,
) ([]domain.Evidence, error) {
	if s.embeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vectorIndex == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	fetch := k
	if mode == domain.ModeVOLaM {
		fetch = 2 * k
		if fetch < minVOLaMCandidates {
			fetch = minVOLaMCandidates
		}
	}
	logger.Debug("Retrieve: query=%q, k=%d, mode=%s, fetch=%d", query, k, mode, fetch)

	embedding, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions, %d tokens", len(embedding.Vector), embedding.Tokens)

	hits, err := s.vectorIndex.Search(ctx, embedding.Vector, fetch)
	if err != nil {
		logger.Warn("Vector index search failed: %v", err)
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector search: %d hits", len(hits))

	evidence := make([]domain.Evidence, len(hits))
	for i, hit := range hits {
		evidence[i] = domain.Evidence{
			ID:          hit.Document.ID,
			Content:     hit.Document.Content,
			Source:      hit.Document.Source,
			CosineScore: hit.Similarity,
			// Naive evidence-level heuristic, distinct from the
			// concept-level nullness tracked over time.
			Nullness:   domain.ClampNullness(1 - hit.Similarity),
			EmpathyFit: 0,
			Metadata:   hit.Document.Metadata,
		}
	}

	return evidence, nil
}
