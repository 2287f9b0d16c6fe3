package driven

import "github.com/custodia-labs/volam-cli/internal/core/domain"

// ContentTagger extracts stakeholder and topic tags from passage text.
// The core only consumes its output; how tags are derived (keyword lists,
// classifiers) is an adapter concern.
type ContentTagger interface {
	// Tags returns the stakeholder and topic tags for the content.
	Tags(content string) domain.ContentTags
}
