package driving

import (
	"context"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
)

// RankingService answers a query by retrieving, scoring, and composing
// evidence. This is the primary entry point of the engine.
type RankingService interface {
	// Ask runs the full pipeline: retrieve candidates, annotate empathy
	// fit (VOLaM mode), rank, truncate, compose the answer, and record a
	// nullness observation for the query's concept.
	Ask(ctx context.Context, query string, opts domain.RankOptions) (*domain.RankingResult, error)
}
