package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driving"
	"github.com/custodia-labs/volam-cli/internal/logger"
)

// Ensure RankingService implements the interface.
var _ driving.RankingService = (*RankingService)(nil)

// defaultTopK is the number of evidence items returned when unset.
const defaultTopK = 5

// RankingService runs the full query pipeline: retrieval, empathy fit
// annotation (VOLaM mode), ranking, truncation, answer composition, and the
// post-query nullness observation.
type RankingService struct {
	retrieval *RetrievalService
	tagger    driven.ContentTagger
	empathy   *EmpathyService
	ranker    *Ranker
	composer  *Composer
	tracker   driving.NullnessService
	defaults  domain.VOLaMParams
}

// NewRankingService creates the pipeline. The tagger is only consulted in
// VOLaM mode and may be nil; untagged evidence then gets the neutral fit.
func NewRankingService(
	retrieval *RetrievalService,
	tagger driven.ContentTagger,
	empathy *EmpathyService,
	ranker *Ranker,
	composer *Composer,
	tracker driving.NullnessService,
	defaults domain.VOLaMParams,
) *RankingService {
	return &RankingService{
		retrieval: retrieval,
		tagger:    tagger,
		empathy:   empathy,
		ranker:    ranker,
		composer:  composer,
		tracker:   tracker,
		defaults:  defaults,
	}
}

// Ask answers a query end to end.
func (s *RankingService) Ask(
	ctx context.Context, query string, opts domain.RankOptions,
) (*domain.RankingResult, error) {
	logger.Section("Ranking Request")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	mode := opts.Mode
	if mode == "" {
		mode = domain.ModeBaseline
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, opts.Mode)
	}

	k := opts.TopK
	if k <= 0 {
		k = defaultTopK
	}

	params := s.defaults
	if opts.Params != nil {
		params = *opts.Params
	}

	profile := opts.Profile
	if profile == "" {
		profile = domain.DefaultProfileName
	}

	logger.Info("Query: %q (mode=%s, k=%d)", query, mode, k)

	evidence, err := s.retrieval.Retrieve(ctx, query, k, mode)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	logger.Debug("Candidates: %d", len(evidence))

	if mode == domain.ModeVOLaM {
		s.annotateEmpathyFit(evidence, profile)
	}

	ranked := s.ranker.Rank(evidence, mode, params, k)
	logger.Debug("Ranked: %d items after truncation to k=%d", len(ranked), k)

	answer, err := s.composer.Compose(ctx, query, ranked, mode)
	if err != nil {
		return nil, fmt.Errorf("compose answer: %w", err)
	}

	_, avgNullness := averages(ranked)

	// Log the composite outcome against the query's concept. A recording
	// failure does not fail the query; the answer is already composed.
	concept := domain.ConceptID(query)
	if s.tracker != nil {
		if err := s.tracker.Record(ctx, concept, avgNullness, answer.Confidence, len(ranked)); err != nil {
			logger.Warn("Nullness observation failed for concept %s: %v", concept, err)
		}
	}

	result := &domain.RankingResult{
		Query:       query,
		Evidence:    ranked,
		Answer:      answer,
		AvgNullness: avgNullness,
		Mode:        mode,
	}
	if mode == domain.ModeVOLaM {
		result.Params = params
		result.Profile = profile
	}

	logger.Info("Answer confidence: %.3f (%s)", answer.Confidence, domain.ConfidenceBand(answer.Confidence))
	return result, nil
}

// annotateEmpathyFit fills in EmpathyFit for each candidate using the
// content tagger and the named profile.
func (s *RankingService) annotateEmpathyFit(evidence []domain.Evidence, profile string) {
	for i := range evidence {
		var tags domain.ContentTags
		if s.tagger != nil {
			tags = s.tagger.Tags(evidence[i].Content)
		}
		evidence[i].EmpathyFit = s.empathy.Fit(tags, profile)
	}
}
