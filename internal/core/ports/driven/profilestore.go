package driven

import "github.com/custodia-labs/volam-cli/internal/core/domain"

// ProfileStore provides read access to the loaded empathy profiles.
// Profiles are read-mostly after load; implementations that support
// reloading must replace the whole profile set atomically (swap, not
// in-place mutation) so readers never observe a partial set.
type ProfileStore interface {
	// Profile returns the named profile.
	// Returns domain.ErrProfileNotFound if the name is unknown.
	Profile(name string) (domain.EmpathyProfile, error)

	// Profiles returns all loaded profiles keyed by name.
	Profiles() map[string]domain.EmpathyProfile

	// Replace swaps in a caller-supplied profile wholesale. Weights are
	// normalised before the swap.
	Replace(profile domain.EmpathyProfile)
}
