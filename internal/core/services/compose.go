package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driving"
	"github.com/custodia-labs/volam-cli/internal/logger"
)

// Citation excerpt limits.
const (
	maxQuotedSentence = 100
	quotedPrefixLen   = 97
)

// Composer turns ranked evidence into an answer with citations, a
// confidence value, and a rationale. It consults the nullness tracker for
// the concept-level uncertainty of the query.
type Composer struct {
	nullness driving.NullnessService
}

// NewComposer creates a new answer composer.
func NewComposer(nullness driving.NullnessService) *Composer {
	return &Composer{nullness: nullness}
}

// Compose builds the answer for a query from ranked evidence. An empty
// evidence list is not an error: it yields a templated insufficient-evidence
// answer with confidence 0.
func (c *Composer) Compose(
	ctx context.Context, query string, evidence []domain.Evidence, mode domain.RankingMode,
) (domain.Answer, error) {
	if len(evidence) == 0 {
		logger.Debug("Compose: no evidence for query %q", query)
		return domain.Answer{
			Text:       fmt.Sprintf("There is insufficient evidence to answer %q.", query),
			Citations:  []domain.Citation{},
			Confidence: 0,
			Rationale:  "No evidence was found for this query.",
		}, nil
	}

	citations := make([]domain.Citation, len(evidence))
	for i, ev := range evidence {
		citations[i] = domain.Citation{
			EvidenceID: ev.ID,
			Source:     ev.Source,
			QuotedText: quotedText(ev.Content),
		}
	}

	confidence, err := c.confidence(ctx, query, evidence)
	if err != nil {
		return domain.Answer{}, err
	}

	avgScore, avgNullness := averages(evidence)

	return domain.Answer{
		Text: fmt.Sprintf("Based on %d pieces of evidence: %s",
			len(evidence), citations[0].QuotedText),
		Citations:  citations,
		Confidence: confidence,
		Rationale: fmt.Sprintf(
			"Composed from %d evidence items in %s mode (avg score %.3f, avg nullness %.3f); confidence is %s.",
			len(evidence), mode, avgScore, avgNullness, domain.ConfidenceBand(confidence)),
	}, nil
}

// confidence blends the evidence-score-weighted certainty with the tracked
// concept-level nullness:
//
//	evidenceConfidence = sum(score_i * (1 - nullness_i)) / sum(score_i)
//	confidence         = clamp((1 - conceptNullness) * evidenceConfidence, 0, 1)
//
// The per-item nullness here is the similarity-derived heuristic; the outer
// factor is the tracked concept value. They are independent signals and are
// deliberately not reconciled.
func (c *Composer) confidence(
	ctx context.Context, query string, evidence []domain.Evidence,
) (float64, error) {
	var weighted, total float64
	for _, ev := range evidence {
		weighted += ev.Score * (1 - ev.Nullness)
		total += ev.Score
	}

	evidenceConfidence := 0.0
	if total > 0 {
		evidenceConfidence = weighted / total
	}

	conceptNullness := domain.DefaultNullness
	if c.nullness != nil {
		current, err := c.nullness.Current(ctx, domain.ConceptID(query))
		if err != nil {
			return 0, fmt.Errorf("read concept nullness: %w", err)
		}
		conceptNullness = current
	}

	return domain.ClampNullness((1 - conceptNullness) * evidenceConfidence), nil
}

// quotedText excerpts passage content for a citation: the first sentence if
// it fits in 100 bytes, otherwise a 97-byte prefix with an ellipsis, or the
// full content when it is already short. The prefix never splits a rune.
func quotedText(content string) string {
	content = strings.TrimSpace(content)

	first := firstSentence(content)
	if first != "" && len(first) <= maxQuotedSentence {
		return first
	}
	if len(content) > maxQuotedSentence {
		end := quotedPrefixLen
		for end > 0 && !utf8.RuneStart(content[end]) {
			end--
		}
		return content[:end] + "..."
	}
	return content
}

// firstSentence returns the leading sentence of the content.
func firstSentence(content string) string {
	for i, r := range content {
		if r == '.' || r == '!' || r == '?' {
			return strings.TrimSpace(content[:i+1])
		}
	}
	return strings.TrimSpace(content)
}

// averages returns the mean score and mean per-item nullness.
func averages(evidence []domain.Evidence) (avgScore, avgNullness float64) {
	if len(evidence) == 0 {
		return 0, 0
	}
	for _, ev := range evidence {
		avgScore += ev.Score
		avgNullness += ev.Nullness
	}
	n := float64(len(evidence))
	return avgScore / n, avgNullness / n
}
