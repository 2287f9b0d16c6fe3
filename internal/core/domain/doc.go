// Package domain defines the core business entities for VOLaM.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Evidence: A retrieved passage with its scoring signals
//   - HistoryEntry: One observation in a concept's nullness history
//   - EmpathyProfile: A named stakeholder weight map
//   - RankingResult: The composed output of a ranking request
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
