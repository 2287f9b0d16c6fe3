package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driving"
	"github.com/custodia-labs/volam-cli/internal/logger"
)

// Ensure NullnessTracker implements the interface.
var _ driving.NullnessService = (*NullnessTracker)(nil)

// Default update parameters, used when a caller leaves them unset.
const (
	// DefaultImpactK scales how strongly one piece of evidence moves nullness.
	DefaultImpactK = 0.1

	// DefaultLambda is the time-decay base applied as lambda^timeDelta.
	DefaultLambda = 0.9
)

// NullnessTracker owns per-concept uncertainty state and its append-only
// history. Writers are serialised per concept key so the append-only,
// increasing-timestamp ordering holds; different concepts update in parallel.
type NullnessTracker struct {
	store driven.HistoryStore
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewNullnessTracker creates a tracker backed by the given history store.
func NewNullnessTracker(store driven.HistoryStore) *NullnessTracker {
	return &NullnessTracker{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// SetClock overrides the time source. Useful for testing.
func (t *NullnessTracker) SetClock(now func() time.Time) {
	t.now = now
}

// conceptLock returns the mutex serialising writers for one concept.
func (t *NullnessTracker) conceptLock(concept string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	lock, ok := t.locks[concept]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[concept] = lock
	}
	return lock
}

// Record logs an implicit observation with trigger evidence_added. It is
// never rejected: out-of-range nullness is clamped rather than refused.
func (t *NullnessTracker) Record(
	ctx context.Context, concept string, nullness, confidence float64, evidenceCount int,
) error {
	lock := t.conceptLock(concept)
	lock.Lock()
	defer lock.Unlock()

	entry := domain.HistoryEntry{
		Timestamp: t.now(),
		Nullness:  domain.ClampNullness(nullness),
		Trigger:   domain.TriggerEvidenceAdded,
		Context:   fmt.Sprintf("confidence=%.3f evidence=%d", confidence, evidenceCount),
	}

	if err := t.store.Append(ctx, concept, entry); err != nil {
		return fmt.Errorf("append observation: %w", err)
	}

	logger.Debug("Nullness observation: concept=%s nullness=%.3f", concept, entry.Nullness)
	return nil
}

// ApplyEvidence applies an explicit support/refute update:
//
//	decay  = lambda^timeDelta
//	impact = k * strength * decay
//	new    = clamp(old -/+ impact, 0, 1)
//
// Unknown actions and strength outside [0,1] are rejected with
// domain.ErrInvalidInput before any history is touched.
// Support subtracts the impact, refute adds it. The resulting entry carries
// trigger manual_update. For identical inputs and starting value, support
// and refute deltas are equal in magnitude and opposite in sign, up to
// clamping at the bounds.
func (t *NullnessTracker) ApplyEvidence(
	ctx context.Context, concept string, update driving.EvidenceUpdate,
) (*domain.NullnessUpdate, error) {
	if !update.Action.IsValid() {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, update.Action)
	}
	if update.Strength < 0 || update.Strength > 1 {
		return nil, fmt.Errorf("%w: strength %.3f outside [0,1]", domain.ErrInvalidInput, update.Strength)
	}

	k := update.K
	if k <= 0 {
		k = DefaultImpactK
	}
	lambda := update.Lambda
	if lambda <= 0 {
		lambda = DefaultLambda
	}

	lock := t.conceptLock(concept)
	lock.Lock()
	defer lock.Unlock()

	old, latest, err := t.currentLocked(ctx, concept)
	if err != nil {
		return nil, err
	}

	timeDelta := update.TimeDelta
	if timeDelta < 0 {
		timeDelta = 0
		if latest != nil {
			timeDelta = t.now().Sub(latest.Timestamp).Hours()
		}
	}

	decay := math.Pow(lambda, timeDelta)
	impact := k * update.Strength * decay

	next := old - impact
	if update.Action == domain.ActionRefute {
		next = old + impact
	}
	next = domain.ClampNullness(next)

	now := t.now()
	entry := domain.HistoryEntry{
		Timestamp: now,
		Nullness:  next,
		Trigger:   domain.TriggerManualUpdate,
		Context: fmt.Sprintf("action=%s strength=%.3f k=%.3f lambda=%.3f timeDelta=%.3f",
			update.Action, update.Strength, k, lambda, timeDelta),
	}
	if err := t.store.Append(ctx, concept, entry); err != nil {
		return nil, fmt.Errorf("append update: %w", err)
	}

	logger.Info("Nullness update: concept=%s %s %.3f -> %.3f", concept, update.Action, old, next)

	return &domain.NullnessUpdate{
		Concept:   concept,
		Old:       old,
		New:       next,
		Delta:     next - old,
		Timestamp: now,
	}, nil
}

// Current returns the concept's latest nullness, or 0.5 with no history.
func (t *NullnessTracker) Current(ctx context.Context, concept string) (float64, error) {
	current, _, err := t.currentLocked(ctx, concept)
	return current, err
}

// currentLocked reads the latest entry without acquiring the concept lock;
// callers that mutate must hold it.
func (t *NullnessTracker) currentLocked(
	ctx context.Context, concept string,
) (float64, *domain.HistoryEntry, error) {
	latest, err := t.store.Latest(ctx, concept)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DefaultNullness, nil, nil
		}
		return 0, nil, fmt.Errorf("read latest entry: %w", err)
	}
	return latest.Nullness, latest, nil
}

// Delta returns latest minus earliest nullness among entries within the
// trailing window, or 0 if fewer than two entries qualify.
func (t *NullnessTracker) Delta(
	ctx context.Context, concept string, windowHours float64,
) (float64, error) {
	since := t.now().Add(-time.Duration(windowHours * float64(time.Hour)))
	entries, err := t.store.EntriesSince(ctx, concept, since)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("read window entries: %w", err)
	}

	if len(entries) < 2 {
		return 0, nil
	}
	return entries[len(entries)-1].Nullness - entries[0].Nullness, nil
}

// History returns the concept's entries, oldest first, optionally limited
// to the most recent entries and/or a trailing window.
func (t *NullnessTracker) History(
	ctx context.Context, concept string, limit int, windowHours float64,
) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	var err error

	if windowHours > 0 {
		since := t.now().Add(-time.Duration(windowHours * float64(time.Hour)))
		entries, err = t.store.EntriesSince(ctx, concept, since)
	} else {
		entries, err = t.store.Entries(ctx, concept, 0)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
