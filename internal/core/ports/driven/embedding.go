package driven

import "context"

// Embedding is one generated vector together with its token usage.
type Embedding struct {
	// Vector is the fixed-length embedding.
	Vector []float32

	// Tokens is the token count the provider reported (or estimated)
	// for the input text.
	Tokens int
}

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Empty input is an error.
	Embed(ctx context.Context, text string) (Embedding, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	// An empty batch, or a batch of only empty strings, is an error.
	EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	// This is determined by the model and must match VectorIndex configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup to verify connectivity before accepting queries.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
