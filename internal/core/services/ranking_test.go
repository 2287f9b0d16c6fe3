package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/volam-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
)

// mockEmbeddingService implements driven.EmbeddingService for tests.
type mockEmbeddingService struct {
	vector   []float32
	embedErr error
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) (driven.Embedding, error) {
	if m.embedErr != nil {
		return driven.Embedding{}, m.embedErr
	}
	return driven.Embedding{Vector: m.vector, Tokens: len(text) / 4}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([]driven.Embedding, error) {
	out := make([]driven.Embedding, len(texts))
	for i, text := range texts {
		embedding, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = embedding
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int            { return len(m.vector) }
func (m *mockEmbeddingService) ModelName() string          { return "mock-model" }
func (m *mockEmbeddingService) Ping(context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error               { return nil }

// mockVectorIndex implements driven.VectorIndex for tests. It records the
// requested k so tests can assert the over-fetch behaviour.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
	lastK     int
}

func (m *mockVectorIndex) AddDocuments(context.Context, []domain.Document) error { return nil }

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.hits) > k {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockVectorIndex) GetDocument(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *mockVectorIndex) Count(context.Context) (int, error) { return len(m.hits), nil }
func (m *mockVectorIndex) Clear(context.Context) error        { return nil }
func (m *mockVectorIndex) Save(context.Context) error         { return nil }
func (m *mockVectorIndex) Load(context.Context) error         { return nil }
func (m *mockVectorIndex) Close() error                       { return nil }

// mockProfileStore implements driven.ProfileStore for tests.
type mockProfileStore struct {
	profiles map[string]domain.EmpathyProfile
}

func (m *mockProfileStore) Profile(name string) (domain.EmpathyProfile, error) {
	profile, ok := m.profiles[name]
	if !ok {
		return domain.EmpathyProfile{}, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (m *mockProfileStore) Profiles() map[string]domain.EmpathyProfile { return m.profiles }

func (m *mockProfileStore) Replace(profile domain.EmpathyProfile) {
	m.profiles[profile.Name] = profile
}

// mockTagger implements driven.ContentTagger for tests, returning the same
// tags for every passage.
type mockTagger struct {
	tags domain.ContentTags
}

func (m *mockTagger) Tags(string) domain.ContentTags { return m.tags }

func hit(id, content string, similarity float64) driven.VectorHit {
	return driven.VectorHit{
		Document: domain.Document{
			ID:      id,
			Content: content,
			Source:  "corpus/" + id,
		},
		Similarity: similarity,
	}
}

// newTestPipeline wires a full RankingService over mocks and an in-memory
// history store.
func newTestPipeline(index *mockVectorIndex, tagger driven.ContentTagger) (*RankingService, *memory.HistoryStore) {
	store := memory.NewHistoryStore()
	tracker := NewNullnessTracker(store)

	profiles := &mockProfileStore{profiles: map[string]domain.EmpathyProfile{
		domain.DefaultProfileName: {
			Name:    domain.DefaultProfileName,
			Weights: domain.DefaultStakeholderWeights(),
		},
	}}

	retrieval := NewRetrievalService(&mockEmbeddingService{vector: []float32{1, 0, 0}}, index)
	svc := NewRankingService(
		retrieval,
		tagger,
		NewEmpathyService(profiles),
		NewRanker(),
		NewComposer(tracker),
		tracker,
		domain.DefaultParams(),
	)
	return svc, store
}

// TestRankingService_EmptyQuery tests query validation
func TestRankingService_EmptyQuery(t *testing.T) {
	svc, _ := newTestPipeline(&mockVectorIndex{}, nil)

	_, err := svc.Ask(context.Background(), "   ", domain.RankOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestRankingService_UnknownMode tests mode validation
func TestRankingService_UnknownMode(t *testing.T) {
	svc, _ := newTestPipeline(&mockVectorIndex{}, nil)

	_, err := svc.Ask(context.Background(), "query", domain.RankOptions{Mode: "hybrid"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestRankingService_BaselineDefaults tests the default mode and topK
func TestRankingService_BaselineDefaults(t *testing.T) {
	index := &mockVectorIndex{hits: []driven.VectorHit{
		hit("doc-1", "First passage.", 0.9),
		hit("doc-2", "Second passage.", 0.7),
	}}
	svc, _ := newTestPipeline(index, nil)

	result, err := svc.Ask(context.Background(), "climate policy impact", domain.RankOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.ModeBaseline, result.Mode)
	assert.Equal(t, defaultTopK, index.lastK, "baseline fetches exactly k")
	assert.Zero(t, result.Params, "baseline leaves params unset")
	assert.Empty(t, result.Profile)
	require.Len(t, result.Evidence, 2)
	assert.Equal(t, "doc-1", result.Evidence[0].ID)
	assert.Equal(t, 0.9, result.Evidence[0].Score, "baseline score is the cosine similarity")
	assert.Zero(t, result.Evidence[0].EmpathyFit, "baseline skips empathy annotation")
}

// TestRankingService_VOLaMOverFetch tests the candidate over-fetch floor
func TestRankingService_VOLaMOverFetch(t *testing.T) {
	index := &mockVectorIndex{}
	svc, _ := newTestPipeline(index, nil)

	_, err := svc.Ask(context.Background(), "query", domain.RankOptions{
		Mode: domain.ModeVOLaM,
		TopK: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, index.lastK, "2k below the floor fetches 10")

	_, err = svc.Ask(context.Background(), "query", domain.RankOptions{
		Mode: domain.ModeVOLaM,
		TopK: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, 16, index.lastK, "2k above the floor fetches 2k")
}

// TestRankingService_VOLaMAnnotatesEmpathyFit tests fit annotation and result fields
func TestRankingService_VOLaMAnnotatesEmpathyFit(t *testing.T) {
	index := &mockVectorIndex{hits: []driven.VectorHit{
		hit("doc-1", "Impact on the general public.", 0.8),
	}}
	tagger := &mockTagger{tags: domain.ContentTags{Stakeholders: []string{"general_public"}}}
	svc, _ := newTestPipeline(index, tagger)

	result, err := svc.Ask(context.Background(), "climate policy impact", domain.RankOptions{
		Mode: domain.ModeVOLaM,
		TopK: 1,
	})
	require.NoError(t, err)

	require.Len(t, result.Evidence, 1)
	// Default weights: general_public = 0.4, one match adds a 0.1 bonus.
	assert.InDelta(t, 0.5, result.Evidence[0].EmpathyFit, 1e-9)
	assert.Equal(t, domain.DefaultParams(), result.Params)
	assert.Equal(t, domain.DefaultProfileName, result.Profile)
}

// TestRankingService_VOLaMNilTagger tests VOLaM without a tagger wired
func TestRankingService_VOLaMNilTagger(t *testing.T) {
	index := &mockVectorIndex{hits: []driven.VectorHit{
		hit("doc-1", "A passage.", 0.8),
	}}
	svc, _ := newTestPipeline(index, nil)

	result, err := svc.Ask(context.Background(), "query", domain.RankOptions{
		Mode: domain.ModeVOLaM,
		TopK: 1,
	})
	require.NoError(t, err)

	require.Len(t, result.Evidence, 1)
	assert.Equal(t, 0.5, result.Evidence[0].EmpathyFit, "untagged content gets the neutral fit")
}

// TestRankingService_RecordsObservation tests the post-query nullness entry
func TestRankingService_RecordsObservation(t *testing.T) {
	index := &mockVectorIndex{hits: []driven.VectorHit{
		hit("doc-1", "A passage.", 0.9),
	}}
	svc, store := newTestPipeline(index, nil)

	result, err := svc.Ask(context.Background(), "Climate Change Policy details", domain.RankOptions{TopK: 1})
	require.NoError(t, err)

	entry, err := store.Latest(context.Background(), "climate_change_policy")
	require.NoError(t, err)
	assert.Equal(t, domain.TriggerEvidenceAdded, entry.Trigger)
	assert.InDelta(t, result.AvgNullness, entry.Nullness, 1e-9)
}

// TestRankingService_RetrievalErrorPropagates tests collaborator failure handling
func TestRankingService_RetrievalErrorPropagates(t *testing.T) {
	index := &mockVectorIndex{searchErr: errors.New("index offline")}
	svc, _ := newTestPipeline(index, nil)

	_, err := svc.Ask(context.Background(), "query", domain.RankOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index offline")
}

// TestRankingService_ParamsOverride tests per-request weight overrides
func TestRankingService_ParamsOverride(t *testing.T) {
	index := &mockVectorIndex{hits: []driven.VectorHit{
		hit("doc-1", "A passage.", 0.5),
	}}
	svc, _ := newTestPipeline(index, nil)

	params := domain.VOLaMParams{Alpha: 1, Beta: 0, Gamma: 0}
	result, err := svc.Ask(context.Background(), "query", domain.RankOptions{
		Mode:   domain.ModeVOLaM,
		TopK:   1,
		Params: &params,
	})
	require.NoError(t, err)

	assert.Equal(t, params, result.Params)
	require.Len(t, result.Evidence, 1)
	assert.InDelta(t, 0.5, result.Evidence[0].Score, 1e-9)
}
