package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/volam-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driving"
)

func newTestTracker() *NullnessTracker {
	return NewNullnessTracker(memory.NewHistoryStore())
}

// TestNullnessTracker_CurrentDefaultsToHalf tests the no-history default
func TestNullnessTracker_CurrentDefaultsToHalf(t *testing.T) {
	tracker := newTestTracker()

	current, err := tracker.Current(context.Background(), "fresh_concept")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultNullness, current)
}

// TestNullnessTracker_SupportLowersNullness tests the support direction
func TestNullnessTracker_SupportLowersNullness(t *testing.T) {
	tracker := newTestTracker()

	update, err := tracker.ApplyEvidence(context.Background(), "concept", driving.EvidenceUpdate{
		Action:   domain.ActionSupport,
		Strength: 1.0,
		K:        0.1,
		Lambda:   1.0,
	})

	require.NoError(t, err)
	assert.Equal(t, 0.5, update.Old)
	assert.InDelta(t, 0.4, update.New, 1e-9)
	assert.InDelta(t, -0.1, update.Delta, 1e-9)
}

// TestNullnessTracker_RefuteClampsAtOne tests the upper clamp
func TestNullnessTracker_RefuteClampsAtOne(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()
	require.NoError(t, tracker.Record(ctx, "concept", 0.1, 0, 0))

	update, err := tracker.ApplyEvidence(ctx, "concept", driving.EvidenceUpdate{
		Action:   domain.ActionRefute,
		Strength: 1.0,
		K:        2.0,
		Lambda:   1.0,
	})

	require.NoError(t, err)
	assert.InDelta(t, 0.1, update.Old, 1e-9)
	assert.Equal(t, 1.0, update.New)
	assert.InDelta(t, 0.9, update.Delta, 1e-9)
}

// TestNullnessTracker_SupportRefuteSymmetry tests symmetric deltas away from the bounds
func TestNullnessTracker_SupportRefuteSymmetry(t *testing.T) {
	ctx := context.Background()
	input := driving.EvidenceUpdate{Strength: 0.8, K: 0.2, Lambda: 1.0}

	supportTracker := newTestTracker()
	input.Action = domain.ActionSupport
	support, err := supportTracker.ApplyEvidence(ctx, "concept", input)
	require.NoError(t, err)

	refuteTracker := newTestTracker()
	input.Action = domain.ActionRefute
	refute, err := refuteTracker.ApplyEvidence(ctx, "concept", input)
	require.NoError(t, err)

	assert.InDelta(t, -support.Delta, refute.Delta, 1e-9)
}

// TestNullnessTracker_StrengthMonotonicity tests that stronger evidence moves further
func TestNullnessTracker_StrengthMonotonicity(t *testing.T) {
	ctx := context.Background()

	weak, err := newTestTracker().ApplyEvidence(ctx, "concept", driving.EvidenceUpdate{
		Action: domain.ActionSupport, Strength: 0.2, K: 0.5, Lambda: 1.0,
	})
	require.NoError(t, err)

	strong, err := newTestTracker().ApplyEvidence(ctx, "concept", driving.EvidenceUpdate{
		Action: domain.ActionSupport, Strength: 0.9, K: 0.5, Lambda: 1.0,
	})
	require.NoError(t, err)

	assert.Greater(t, math.Abs(strong.Delta), math.Abs(weak.Delta))
}

// TestNullnessTracker_ImpactScaleMonotonicity tests that a larger k moves further
func TestNullnessTracker_ImpactScaleMonotonicity(t *testing.T) {
	ctx := context.Background()

	small, err := newTestTracker().ApplyEvidence(ctx, "concept", driving.EvidenceUpdate{
		Action: domain.ActionSupport, Strength: 0.5, K: 0.1, Lambda: 1.0,
	})
	require.NoError(t, err)

	large, err := newTestTracker().ApplyEvidence(ctx, "concept", driving.EvidenceUpdate{
		Action: domain.ActionSupport, Strength: 0.5, K: 0.4, Lambda: 1.0,
	})
	require.NoError(t, err)

	assert.Greater(t, math.Abs(large.Delta), math.Abs(small.Delta))
}

// TestNullnessTracker_TimeDecay tests that elapsed time shrinks the impact
func TestNullnessTracker_TimeDecay(t *testing.T) {
	ctx := context.Background()

	fresh, err := newTestTracker().ApplyEvidence(ctx, "concept", driving.EvidenceUpdate{
		Action: domain.ActionSupport, Strength: 1.0, K: 0.2, Lambda: 0.5, TimeDelta: 0,
	})
	require.NoError(t, err)

	stale, err := newTestTracker().ApplyEvidence(ctx, "concept", driving.EvidenceUpdate{
		Action: domain.ActionSupport, Strength: 1.0, K: 0.2, Lambda: 0.5, TimeDelta: 2,
	})
	require.NoError(t, err)

	// decay = 0.5^2 = 0.25: impact 0.2 vs 0.05.
	assert.InDelta(t, -0.2, fresh.Delta, 1e-9)
	assert.InDelta(t, -0.05, stale.Delta, 1e-9)
}

// TestNullnessTracker_DerivedTimeDelta tests the negative-TimeDelta convention
func TestNullnessTracker_DerivedTimeDelta(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker.SetClock(func() time.Time { return base })
	require.NoError(t, tracker.Record(ctx, "concept", 0.5, 0, 0))

	// Two hours later, lambda=0.5 decays the impact to a quarter.
	tracker.SetClock(func() time.Time { return base.Add(2 * time.Hour) })
	update, err := tracker.ApplyEvidence(ctx, "concept", driving.EvidenceUpdate{
		Action:    domain.ActionSupport,
		Strength:  1.0,
		K:         0.2,
		Lambda:    0.5,
		TimeDelta: -1,
	})

	require.NoError(t, err)
	assert.InDelta(t, -0.05, update.Delta, 1e-9)
}

// TestNullnessTracker_DefaultParameters tests the k and lambda fallbacks
func TestNullnessTracker_DefaultParameters(t *testing.T) {
	tracker := newTestTracker()

	update, err := tracker.ApplyEvidence(context.Background(), "concept", driving.EvidenceUpdate{
		Action:   domain.ActionSupport,
		Strength: 1.0,
	})

	require.NoError(t, err)
	// k defaults to 0.1 and timeDelta 0 makes lambda irrelevant.
	assert.InDelta(t, -DefaultImpactK, update.Delta, 1e-9)
}

// TestNullnessTracker_StrengthOutOfRange tests strength validation. A
// negative strength would flip the impact sign and make a support update
// raise nullness, so it must be rejected rather than applied.
func TestNullnessTracker_StrengthOutOfRange(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()

	for _, strength := range []float64{-1.0, -0.001, 1.001, 2.0} {
		_, err := tracker.ApplyEvidence(ctx, "concept", driving.EvidenceUpdate{
			Action:   domain.ActionSupport,
			Strength: strength,
			K:        0.1,
			Lambda:   1.0,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "strength %v", strength)
	}

	// Nothing was appended; the concept still reads as fresh.
	current, err := tracker.Current(ctx, "concept")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultNullness, current)

	entries, err := tracker.History(ctx, "concept", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestNullnessTracker_InvalidAction tests action validation
func TestNullnessTracker_InvalidAction(t *testing.T) {
	tracker := newTestTracker()

	_, err := tracker.ApplyEvidence(context.Background(), "concept", driving.EvidenceUpdate{
		Action:   "dispute",
		Strength: 1.0,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestNullnessTracker_RecordClamps tests that observations are never rejected
func TestNullnessTracker_RecordClamps(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()

	require.NoError(t, tracker.Record(ctx, "concept", 1.7, 0.2, 3))

	current, err := tracker.Current(ctx, "concept")
	require.NoError(t, err)
	assert.Equal(t, 1.0, current)
}

// TestNullnessTracker_HistoryOrderAndLimit tests oldest-first ordering with a limit
func TestNullnessTracker_HistoryOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, v := range []float64{0.5, 0.4, 0.3, 0.2} {
		tick := base.Add(time.Duration(i) * time.Minute)
		tracker.SetClock(func() time.Time { return tick })
		require.NoError(t, tracker.Record(ctx, "concept", v, 0, 0))
	}

	entries, err := tracker.History(ctx, "concept", 2, 0)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, 0.3, entries[0].Nullness)
	assert.Equal(t, 0.2, entries[1].Nullness)
	assert.True(t, entries[0].Timestamp.Before(entries[1].Timestamp))
}

// TestNullnessTracker_HistoryWindow tests the trailing-window filter
func TestNullnessTracker_HistoryWindow(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker.SetClock(func() time.Time { return base.Add(-48 * time.Hour) })
	require.NoError(t, tracker.Record(ctx, "concept", 0.9, 0, 0))
	tracker.SetClock(func() time.Time { return base.Add(-1 * time.Hour) })
	require.NoError(t, tracker.Record(ctx, "concept", 0.4, 0, 0))
	tracker.SetClock(func() time.Time { return base })

	entries, err := tracker.History(ctx, "concept", 0, 24)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, 0.4, entries[0].Nullness)
}

// TestNullnessTracker_Delta tests the window delta computation
func TestNullnessTracker_Delta(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker.SetClock(func() time.Time { return base.Add(-3 * time.Hour) })
	require.NoError(t, tracker.Record(ctx, "concept", 0.8, 0, 0))
	tracker.SetClock(func() time.Time { return base.Add(-1 * time.Hour) })
	require.NoError(t, tracker.Record(ctx, "concept", 0.3, 0, 0))
	tracker.SetClock(func() time.Time { return base })

	delta, err := tracker.Delta(ctx, "concept", 24)
	require.NoError(t, err)
	assert.InDelta(t, -0.5, delta, 1e-9)
}

// TestNullnessTracker_DeltaTooFewEntries tests the fewer-than-two rule
func TestNullnessTracker_DeltaTooFewEntries(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()
	require.NoError(t, tracker.Record(ctx, "concept", 0.8, 0, 0))

	delta, err := tracker.Delta(ctx, "concept", 24)

	require.NoError(t, err)
	assert.Zero(t, delta)
}

// TestNullnessTracker_ConcurrentUpdates tests per-concept writer serialisation
func TestNullnessTracker_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, err := tracker.ApplyEvidence(ctx, "shared_concept", driving.EvidenceUpdate{
				Action:   domain.ActionSupport,
				Strength: 1.0,
				K:        0.01,
				Lambda:   1.0,
			})
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	// Each update observes the previous one, so the value walks down 0.01
	// per step from the 0.5 default.
	current, err := tracker.Current(ctx, "shared_concept")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, current, 1e-9)

	entries, err := tracker.History(ctx, "shared_concept", 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}
