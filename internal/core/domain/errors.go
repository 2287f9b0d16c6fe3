package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedBackend indicates an unknown vector index backend.
	// Backend selection fails at construction time, never silently.
	ErrUnsupportedBackend = errors.New("unsupported backend")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Retrieval is impossible without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrProfileNotFound indicates a named empathy profile does not exist.
	// Callers of the fit calculation fall back to the default profile
	// instead of surfacing this; it is returned by direct profile reads.
	ErrProfileNotFound = errors.New("empathy profile not found")

	// ErrIndexClosed indicates the vector index has been closed.
	ErrIndexClosed = errors.New("vector index closed")
)
