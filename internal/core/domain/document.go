package domain

// Document is an indexed passage held by the vector index. The retrieval
// orchestrator turns the documents returned by a similarity search into
// fresh Evidence records.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Content is the passage text.
	Content string

	// Source identifies where the passage came from.
	Source string

	// Embedding is the vector representation used for similarity search.
	Embedding []float32

	// Metadata holds the optional passage fields.
	Metadata EvidenceMetadata
}
