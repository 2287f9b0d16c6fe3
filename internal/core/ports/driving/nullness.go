package driving

import (
	"context"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
)

// EvidenceUpdate describes an explicit support/refute adjustment.
type EvidenceUpdate struct {
	// Action is the direction of the adjustment.
	Action domain.NullnessAction

	// Strength is the evidence strength in [0,1].
	Strength float64

	// K scales the impact of the evidence.
	K float64

	// Lambda is the time-decay base (lambda^timeDelta).
	Lambda float64

	// TimeDelta is the decay exponent, in hours. Negative values mean
	// "derive from the time since the concept's last entry".
	TimeDelta float64
}

// NullnessService exposes the per-concept uncertainty state machine.
type NullnessService interface {
	// ApplyEvidence applies an explicit support/refute update to the
	// concept and appends a manual_update history entry.
	ApplyEvidence(ctx context.Context, concept string, update EvidenceUpdate) (*domain.NullnessUpdate, error)

	// Record logs an implicit observation (trigger evidence_added).
	// It is never rejected; out-of-range nullness is clamped.
	Record(ctx context.Context, concept string, nullness, confidence float64, evidenceCount int) error

	// Current returns the concept's present nullness, or 0.5 if the
	// concept has no history.
	Current(ctx context.Context, concept string) (float64, error)

	// Delta returns latest minus earliest nullness among entries within
	// the trailing window, or 0 if fewer than two entries qualify.
	Delta(ctx context.Context, concept string, windowHours float64) (float64, error)

	// History returns the concept's entries, oldest first. A positive
	// limit restricts to the most recent entries; a positive windowHours
	// restricts to the trailing window.
	History(ctx context.Context, concept string, limit int, windowHours float64) ([]domain.HistoryEntry, error)
}
