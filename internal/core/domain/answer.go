package domain

// Confidence bands for answer rationales.
const (
	confidenceHighThreshold     = 0.8
	confidenceModerateThreshold = 0.6
)

// Citation references one evidence item in a composed answer.
type Citation struct {
	// EvidenceID is the cited evidence item.
	EvidenceID string

	// Source identifies where the passage came from.
	Source string

	// QuotedText is a short excerpt from the passage.
	QuotedText string
}

// Answer is the composed response built from ranked evidence.
type Answer struct {
	// Text is the answer body.
	Text string

	// Citations reference the evidence items that back the answer.
	Citations []Citation

	// Confidence is the composed confidence in [0,1].
	Confidence float64

	// Rationale explains how the confidence was reached.
	Rationale string
}

// ConfidenceBand returns the qualitative label for a confidence value:
// "high" at 0.8 and above, "moderate" at 0.6 and above, otherwise "low".
func ConfidenceBand(confidence float64) string {
	switch {
	case confidence >= confidenceHighThreshold:
		return "high"
	case confidence >= confidenceModerateThreshold:
		return "moderate"
	default:
		return "low"
	}
}
