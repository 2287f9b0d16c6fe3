// Package keyword provides a lexicon-based content tagger.
package keyword

import (
	"sort"
	"strings"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
)

// Ensure Tagger implements the interface.
var _ driven.ContentTagger = (*Tagger)(nil)

// defaultStakeholderLexicon maps stakeholder identifiers to trigger phrases.
var defaultStakeholderLexicon = map[string][]string{
	"general_public":       {"public", "people", "everyone", "community", "citizens", "consumers"},
	"experts":              {"research", "study", "scientists", "analysis", "data", "evidence"},
	"policymakers":         {"policy", "regulation", "government", "legislation", "law"},
	"affected_communities": {"vulnerable", "affected", "impacted", "displaced", "local communities"},
}

// defaultTopicLexicon maps topic labels to trigger phrases.
var defaultTopicLexicon = map[string][]string{
	"climate": {"climate", "warming", "emissions", "carbon"},
	"health":  {"health", "disease", "medical", "hospital"},
	"economy": {"economic", "economy", "cost", "market", "jobs"},
	"energy":  {"energy", "solar", "wind", "renewable", "fossil"},
}

// Tagger extracts stakeholder and topic tags by keyword matching. It is a
// deliberately simple stand-in for a proper classifier; the core only
// consumes the resulting tags.
type Tagger struct {
	stakeholders map[string][]string
	topics       map[string][]string
}

// New creates a tagger with the default lexicons.
func New() *Tagger {
	return &Tagger{
		stakeholders: defaultStakeholderLexicon,
		topics:       defaultTopicLexicon,
	}
}

// NewWithLexicons creates a tagger with caller-supplied lexicons.
func NewWithLexicons(stakeholders, topics map[string][]string) *Tagger {
	return &Tagger{stakeholders: stakeholders, topics: topics}
}

// Tags returns the stakeholder and topic tags found in the content.
// Results are sorted for deterministic output.
func (t *Tagger) Tags(content string) domain.ContentTags {
	lowered := strings.ToLower(content)

	return domain.ContentTags{
		Stakeholders: match(lowered, t.stakeholders),
		Topics:       match(lowered, t.topics),
	}
}

// match returns the lexicon keys whose phrases occur in the content.
func match(content string, lexicon map[string][]string) []string {
	var tags []string
	for tag, phrases := range lexicon {
		for _, phrase := range phrases {
			if strings.Contains(content, phrase) {
				tags = append(tags, tag)
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}
