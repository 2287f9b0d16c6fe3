package cli

import (
	"context"
	"errors"

	"github.com/custodia-labs/volam-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
	"github.com/custodia-labs/volam-cli/internal/core/services"
)

// stubRankingService returns a canned result for every question.
type stubRankingService struct {
	result *domain.RankingResult
	err    error
}

func (s *stubRankingService) Ask(_ context.Context, query string, opts domain.RankOptions) (*domain.RankingResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := *s.result
	result.Query = query
	result.Mode = opts.Mode
	if result.Mode == "" {
		result.Mode = domain.ModeBaseline
	}
	return &result, nil
}

// stubProfileStore serves a fixed profile set.
type stubProfileStore struct {
	profiles map[string]domain.EmpathyProfile
}

func (s *stubProfileStore) Profile(name string) (domain.EmpathyProfile, error) {
	profile, ok := s.profiles[name]
	if !ok {
		return domain.EmpathyProfile{}, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (s *stubProfileStore) Profiles() map[string]domain.EmpathyProfile { return s.profiles }

func (s *stubProfileStore) Replace(profile domain.EmpathyProfile) {
	s.profiles[profile.Name] = profile
}

// stubVectorIndex tracks document count without real embeddings.
type stubVectorIndex struct {
	count    int
	addErr   error
	clearErr error
}

func (s *stubVectorIndex) AddDocuments(_ context.Context, docs []domain.Document) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.count += len(docs)
	return nil
}

func (s *stubVectorIndex) Search(context.Context, []float32, int) ([]driven.VectorHit, error) {
	return nil, nil
}

func (s *stubVectorIndex) GetDocument(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (s *stubVectorIndex) Count(context.Context) (int, error) { return s.count, nil }

func (s *stubVectorIndex) Clear(context.Context) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.count = 0
	return nil
}

func (s *stubVectorIndex) Save(context.Context) error { return nil }
func (s *stubVectorIndex) Load(context.Context) error { return nil }
func (s *stubVectorIndex) Close() error               { return nil }

// stubEmbeddingService returns a fixed vector for every text.
type stubEmbeddingService struct {
	embedErr error
}

func (s *stubEmbeddingService) Embed(_ context.Context, _ string) (driven.Embedding, error) {
	if s.embedErr != nil {
		return driven.Embedding{}, s.embedErr
	}
	return driven.Embedding{Vector: []float32{1, 0, 0}, Tokens: 4}, nil
}

func (s *stubEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([]driven.Embedding, error) {
	out := make([]driven.Embedding, len(texts))
	for i := range texts {
		embedding, err := s.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = embedding
	}
	return out, nil
}

func (s *stubEmbeddingService) Dimensions() int            { return 3 }
func (s *stubEmbeddingService) ModelName() string          { return "stub-model" }
func (s *stubEmbeddingService) Ping(context.Context) error { return nil }
func (s *stubEmbeddingService) Close() error               { return nil }

func cannedResult() *domain.RankingResult {
	evidence := []domain.Evidence{
		{
			ID:          "doc-1",
			Content:     "Sea levels rose measurably.",
			Source:      "corpus/climate",
			CosineScore: 0.9,
			Nullness:    0.1,
			Score:       0.9,
		},
	}
	return &domain.RankingResult{
		Evidence: evidence,
		Answer: domain.Answer{
			Text: "Based on 1 pieces of evidence: Sea levels rose measurably.",
			Citations: []domain.Citation{
				{EvidenceID: "doc-1", Source: "corpus/climate", QuotedText: "Sea levels rose measurably."},
			},
			Confidence: 0.81,
			Rationale:  "Composed from 1 evidence items in baseline mode (avg score 0.900, avg nullness 0.100); confidence is high.",
		},
		AvgNullness: 0.1,
	}
}

// setupTestServices swaps in stub services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldRanking := rankingService
	oldNullness := nullnessService
	oldProfiles := profileStore
	oldIndex := vectorIndex
	oldEmbedding := embeddingService

	rankingService = &stubRankingService{result: cannedResult()}
	nullnessService = services.NewNullnessTracker(memory.NewHistoryStore())
	profileStore = &stubProfileStore{profiles: map[string]domain.EmpathyProfile{
		domain.DefaultProfileName: {
			Name:    domain.DefaultProfileName,
			Weights: domain.DefaultStakeholderWeights(),
		},
	}}
	vectorIndex = &stubVectorIndex{}
	embeddingService = &stubEmbeddingService{}

	return func() {
		rankingService = oldRanking
		nullnessService = oldNullness
		profileStore = oldProfiles
		vectorIndex = oldIndex
		embeddingService = oldEmbedding
	}
}

var errStub = errors.New("stub failure")
