package domain

// RankingMode selects how evidence is scored before sorting.
type RankingMode string

// Available ranking modes.
const (
	// ModeBaseline ranks purely by cosine similarity.
	ModeBaseline RankingMode = "baseline"

	// ModeVOLaM blends similarity, certainty, and empathy fit.
	ModeVOLaM RankingMode = "volam"
)

// IsValid returns true if the ranking mode is recognised.
func (m RankingMode) IsValid() bool {
	switch m {
	case ModeBaseline, ModeVOLaM:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m RankingMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m RankingMode) Description() string {
	switch m {
	case ModeBaseline:
		return "Baseline (cosine similarity only)"
	case ModeVOLaM:
		return "VOLaM (similarity + certainty + empathy fit)"
	default:
		return "Unknown"
	}
}

// VOLaMParams weight the composite ranking formula
// score = Alpha*cosine + Beta*(1-nullness) + Gamma*empathyFit.
// Each weight is conventionally in [0,1]; no sum-to-one constraint is enforced.
type VOLaMParams struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

// DefaultParams returns the standard VOLaM weighting.
func DefaultParams() VOLaMParams {
	return VOLaMParams{Alpha: 0.6, Beta: 0.3, Gamma: 0.1}
}

// EvidenceMetadata carries the known optional fields attached to a passage.
// Extra holds anything genuinely open-ended a source supplies beyond these.
type EvidenceMetadata struct {
	// Domain is the topical domain of the source corpus (e.g. "climate").
	Domain string

	// ChunkIndex is the ordinal position within the source document.
	ChunkIndex int

	// TokenCount is the embedding token count, when the provider reports it.
	TokenCount int

	// Extra contains additional source-specific key-value pairs.
	Extra map[string]string
}

// Evidence is one retrieved passage for one query. It is created fresh per
// query and never persisted past the response.
type Evidence struct {
	// ID is the unique identifier of the underlying passage.
	ID string

	// Content is the passage text.
	Content string

	// Source identifies where the passage came from.
	Source string

	// CosineScore is the similarity score from the vector index, in [0,1].
	CosineScore float64

	// Nullness is the per-item uncertainty heuristic, in [0,1].
	// This is derived from similarity and is distinct from the
	// concept-level nullness tracked over time.
	Nullness float64

	// EmpathyFit is the stakeholder alignment value in [0,1].
	// It stays 0 in baseline mode.
	EmpathyFit float64

	// Score is the composite ranking score.
	Score float64

	// Metadata holds the optional passage fields.
	Metadata EvidenceMetadata
}

// ContentTags is the output of content-tag extraction consumed by the
// empathy fit calculation. The core never produces tags itself.
type ContentTags struct {
	// Stakeholders are the stakeholder identifiers detected in the content.
	Stakeholders []string

	// Topics are the topical labels detected in the content.
	Topics []string
}

// RankOptions configures a ranking request.
type RankOptions struct {
	// Mode selects baseline or VOLaM scoring. Defaults to baseline.
	Mode RankingMode

	// TopK is the number of evidence items to return. Defaults to 5.
	TopK int

	// Params override the VOLaM weights. Nil uses the configured defaults.
	Params *VOLaMParams

	// Profile names the empathy profile to weight stakeholders with.
	// Defaults to "default".
	Profile string
}

// RankingResult is the composed output of a ranking request.
type RankingResult struct {
	// Query is the original query text.
	Query string

	// Evidence is the ranked, truncated evidence list.
	Evidence []Evidence

	// Answer is the composed answer with citations.
	Answer Answer

	// AvgNullness is the mean per-item nullness of the returned evidence.
	AvgNullness float64

	// Mode is the ranking mode that was used.
	Mode RankingMode

	// Params are the VOLaM weights used (zero value in baseline mode).
	Params VOLaMParams

	// Profile is the empathy profile name used (empty in baseline mode).
	Profile string
}
