package domain

// DefaultProfileName is the profile used when a requested name is unknown.
const DefaultProfileName = "default"

// EmpathyProfile is a named mapping from stakeholder identifier to weight.
// Weights are each in [0,1]; by convention they sum to 1.0, though that is
// established by normalisation rather than enforced here. Profiles are
// immutable once loaded; replacement is wholesale.
type EmpathyProfile struct {
	// Name identifies the profile.
	Name string

	// Weights maps stakeholder identifiers to their priority weight.
	Weights map[string]float64
}

// DefaultStakeholderWeights is the hard-coded fallback profile used when a
// caller-supplied weight map cannot be normalised (all-zero weights).
func DefaultStakeholderWeights() map[string]float64 {
	return map[string]float64{
		"general_public":       0.4,
		"experts":              0.3,
		"policymakers":         0.2,
		"affected_communities": 0.1,
	}
}

// NormalizeWeights scales raw stakeholder weights so they sum to 1.0.
// A zero (or negative) sum cannot be normalised; the hard-coded default
// weights are substituted instead of producing NaNs.
func NormalizeWeights(weights map[string]float64) map[string]float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}

	if sum <= 0 {
		return DefaultStakeholderWeights()
	}

	normalized := make(map[string]float64, len(weights))
	for id, w := range weights {
		normalized[id] = w / sum
	}
	return normalized
}
