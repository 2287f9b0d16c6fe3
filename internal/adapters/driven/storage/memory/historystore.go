// Package memory provides in-memory implementations of the storage ports.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
// Histories grow without bound; no retention policy exists.
type HistoryStore struct {
	mu      sync.RWMutex
	entries map[string][]domain.HistoryEntry
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		entries: make(map[string][]domain.HistoryEntry),
	}
}

// Append adds an entry to the concept's history.
func (s *HistoryStore) Append(_ context.Context, concept string, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[concept] = append(s.entries[concept], entry)
	return nil
}

// Latest returns the most recent entry for the concept.
func (s *HistoryStore) Latest(_ context.Context, concept string) (*domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.entries[concept]
	if !ok || len(history) == 0 {
		return nil, domain.ErrNotFound
	}
	entry := history[len(history)-1]
	return &entry, nil
}

// Entries returns the concept's history ordered oldest first.
func (s *HistoryStore) Entries(_ context.Context, concept string, limit int) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.entries[concept]
	if !ok {
		return nil, nil
	}

	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	out := make([]domain.HistoryEntry, len(history))
	copy(out, history)
	return out, nil
}

// EntriesSince returns entries at or after the cutoff, ordered oldest first.
func (s *HistoryStore) EntriesSince(_ context.Context, concept string, since time.Time) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.HistoryEntry
	for _, entry := range s.entries[concept] {
		if !entry.Timestamp.Before(since) {
			out = append(out, entry)
		}
	}
	return out, nil
}

// Concepts lists all concept keys with at least one entry.
func (s *HistoryStore) Concepts(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	concepts := make([]string, 0, len(s.entries))
	for concept, history := range s.entries {
		if len(history) > 0 {
			concepts = append(concepts, concept)
		}
	}
	return concepts, nil
}
