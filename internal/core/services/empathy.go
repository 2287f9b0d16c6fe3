package services

import (
	"errors"
	"math"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
	"github.com/custodia-labs/volam-cli/internal/logger"
)

// Empathy fit policy constants.
const (
	// neutralFit is returned when the content carries no stakeholder tags.
	neutralFit = 0.5

	// unmatchedFit is returned when tagged stakeholders match nothing in
	// the profile. An unmatched stakeholder is evidence of poor alignment,
	// not absence of signal, so this sits below neutral.
	unmatchedFit = 0.2

	// matchBonusPerStakeholder rewards breadth of stakeholder coverage.
	matchBonusPerStakeholder = 0.1

	// maxMatchBonus caps the coverage bonus.
	maxMatchBonus = 0.3
)

// EmpathyService computes stakeholder-weighted relevance for evidence.
type EmpathyService struct {
	profiles driven.ProfileStore
}

// NewEmpathyService creates a new empathy fit calculator.
func NewEmpathyService(profiles driven.ProfileStore) *EmpathyService {
	return &EmpathyService{profiles: profiles}
}

// Fit computes the empathy fit in [0,1] for the given content tags under
// the named profile. Unknown profile names fall back to "default"; if that
// is also missing, the hard-coded default weights apply. Degenerate inputs
// never produce an error.
func (s *EmpathyService) Fit(tags domain.ContentTags, profileName string) float64 {
	if len(tags.Stakeholders) == 0 {
		return neutralFit
	}

	profile := s.resolveProfile(profileName)

	var sum float64
	matched := 0
	for _, stakeholder := range tags.Stakeholders {
		if weight, ok := profile.Weights[stakeholder]; ok {
			sum += weight
			matched++
		}
	}

	if matched == 0 {
		logger.Debug("Empathy fit: no stakeholder matches under profile %q", profile.Name)
		return unmatchedFit
	}

	avgFit := sum / float64(matched)
	bonus := math.Min(float64(matched)*matchBonusPerStakeholder, maxMatchBonus)
	return math.Min(avgFit+bonus, 1.0)
}

// resolveProfile looks up the named profile, falling back to the default
// profile and finally to the hard-coded default weights.
func (s *EmpathyService) resolveProfile(name string) domain.EmpathyProfile {
	if s.profiles != nil {
		profile, err := s.profiles.Profile(name)
		if err == nil {
			return profile
		}
		if errors.Is(err, domain.ErrProfileNotFound) && name != domain.DefaultProfileName {
			logger.Debug("Empathy fit: unknown profile %q, falling back to default", name)
			if fallback, ferr := s.profiles.Profile(domain.DefaultProfileName); ferr == nil {
				return fallback
			}
		}
	}

	return domain.EmpathyProfile{
		Name:    domain.DefaultProfileName,
		Weights: domain.DefaultStakeholderWeights(),
	}
}
