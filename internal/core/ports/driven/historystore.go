package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
)

// HistoryStore persists per-concept nullness histories. Histories are
// append-only; entries are never updated or deleted, and no retention
// policy exists. The tracker serialises writers per concept, so
// implementations only need to be safe for concurrent use across concepts.
type HistoryStore interface {
	// Append adds an entry to the concept's history, creating the concept
	// if it does not exist yet.
	Append(ctx context.Context, concept string, entry domain.HistoryEntry) error

	// Latest returns the most recent entry for the concept.
	// Returns domain.ErrNotFound if the concept has no history.
	Latest(ctx context.Context, concept string) (*domain.HistoryEntry, error)

	// Entries returns the concept's history ordered oldest first.
	// A positive limit restricts the result to the most recent entries.
	Entries(ctx context.Context, concept string, limit int) ([]domain.HistoryEntry, error)

	// EntriesSince returns entries at or after the cutoff, ordered oldest first.
	EntriesSince(ctx context.Context, concept string, since time.Time) ([]domain.HistoryEntry, error)

	// Concepts lists all concept keys with at least one entry.
	Concepts(ctx context.Context) ([]string, error)
}
