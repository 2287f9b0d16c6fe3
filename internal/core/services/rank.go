package services

import (
	"math"
	"sort"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
)

// tieEpsilon is the score gap below which two items count as tied and
// fall back to cosine similarity ordering.
const tieEpsilon = 0.001

// Ranker scores and orders evidence.
type Ranker struct{}

// NewRanker creates a new ranking engine.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank scores each evidence item, sorts descending by score with a cosine
// tie-break, and truncates to k (when k > 0). The input slice is not
// modified. Baseline mode scores by cosine similarity alone; VOLaM mode
// computes alpha*cosine + beta*(1-nullness) + gamma*empathyFit.
func (r *Ranker) Rank(
	evidence []domain.Evidence, mode domain.RankingMode, params domain.VOLaMParams, k int,
) []domain.Evidence {
	scored := make([]domain.Evidence, len(evidence))
	copy(scored, evidence)

	for i := range scored {
		scored[i].Score = r.score(scored[i], mode, params)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if math.Abs(scored[i].Score-scored[j].Score) < tieEpsilon {
			return scored[i].CosineScore > scored[j].CosineScore
		}
		return scored[i].Score > scored[j].Score
	})

	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// score computes the composite ranking score for one item.
func (r *Ranker) score(ev domain.Evidence, mode domain.RankingMode, params domain.VOLaMParams) float64 {
	if mode == domain.ModeVOLaM {
		return params.Alpha*ev.CosineScore +
			params.Beta*(1-ev.Nullness) +
			params.Gamma*ev.EmpathyFit
	}
	return ev.CosineScore
}
