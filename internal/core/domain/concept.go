package domain

import (
	"strings"
	"time"
)

// DefaultNullness is the assumed uncertainty for a concept with no history.
const DefaultNullness = 0.5

// History entry triggers.
const (
	// TriggerEvidenceAdded marks an implicit observation logged after a query.
	TriggerEvidenceAdded = "evidence_added"

	// TriggerManualUpdate marks an explicit support/refute adjustment.
	TriggerManualUpdate = "manual_update"
)

// NullnessAction is the direction of an explicit nullness adjustment.
type NullnessAction string

// Available actions.
const (
	// ActionSupport indicates evidence that reduces uncertainty.
	ActionSupport NullnessAction = "support"

	// ActionRefute indicates evidence that increases uncertainty.
	ActionRefute NullnessAction = "refute"
)

// IsValid returns true if the action is recognised.
func (a NullnessAction) IsValid() bool {
	return a == ActionSupport || a == ActionRefute
}

// String returns the string representation.
func (a NullnessAction) String() string {
	return string(a)
}

// HistoryEntry is one observation in a concept's append-only nullness
// history. Entries are immutable once appended.
type HistoryEntry struct {
	// Timestamp is when the observation was recorded.
	Timestamp time.Time

	// Nullness is the concept uncertainty after this observation, in [0,1].
	Nullness float64

	// Trigger is what caused the entry (TriggerEvidenceAdded or
	// TriggerManualUpdate).
	Trigger string

	// Context is optional free-form detail about the observation.
	Context string
}

// NullnessUpdate is the outcome of an explicit support/refute adjustment.
type NullnessUpdate struct {
	// Concept is the concept key that was updated.
	Concept string

	// Old is the nullness before the adjustment.
	Old float64

	// New is the nullness after the adjustment, clamped to [0,1].
	New float64

	// Delta is New - Old.
	Delta float64

	// Timestamp is when the adjustment was recorded.
	Timestamp time.Time
}

// ClampNullness bounds a nullness value to [0,1].
func ClampNullness(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ConceptID derives the coarse concept key for a query: lowercase, first
// three whitespace tokens, non-alphanumeric characters stripped, joined
// with underscores.
//
// Extraction is intentionally coarse. Distinct queries sharing their first
// three words collide onto the same concept; callers depend on that.
func ConceptID(query string) string {
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) > 3 {
		fields = fields[:3]
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		var b strings.Builder
		for _, r := range f {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}

	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "_")
}
