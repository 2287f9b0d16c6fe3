// Package vector selects and constructs vector index backends.
package vector

import (
	"fmt"

	"github.com/custodia-labs/volam-cli/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
)

// Backend identifies a vector index implementation.
type Backend string

// Supported backends.
const (
	// BackendMemory is the exact in-memory index with JSON snapshots.
	BackendMemory Backend = "memory"
)

// Config holds backend-independent index configuration.
type Config struct {
	// Backend selects the implementation. Defaults to memory.
	Backend Backend

	// Dimension is the embedding size (required).
	Dimension int

	// Path is the persistence location, when the backend supports it.
	Path string
}

// New constructs the configured vector index. Unsupported backends fail
// fast at construction; they are never silently substituted.
func New(cfg Config) (driven.VectorIndex, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendMemory
	}

	switch backend {
	case BackendMemory:
		return memory.New(memory.Config{Dimension: cfg.Dimension, Path: cfg.Path})
	default:
		return nil, fmt.Errorf("%w: vector backend %q", domain.ErrUnsupportedBackend, backend)
	}
}
