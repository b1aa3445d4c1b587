package search

import (
	"regexp"
	"strings"

	"github.com/poiesic/refdex/core"
)

// Boost increments per matched identifier. Additive across identifiers
// and uncapped, so a passage naming several queried registers in its
// title can overtake any reranker score.
const (
	boostTitle float32 = 0.20
	boostKey   float32 = 0.10
	boostBody  float32 = 0.05
)

// queryIdentifierPattern matches register-style identifiers in query text.
// Deliberately looser than the document-side pattern: users write
// "tim2_cr1" and peripheral instance digits before the underscore.
var queryIdentifierPattern = regexp.MustCompile(`\b[A-Z]{2,}[0-9]*_[A-Z0-9_]+\b`)

// queryIdentifiers extracts the unique register-style identifiers from a
// query, uppercased, in first-seen order.
func queryIdentifiers(query string) []string {
	matches := queryIdentifierPattern.FindAllString(strings.ToUpper(query), -1)

	seen := make(map[string]struct{}, len(matches))
	identifiers := make([]string, 0, len(matches))
	for _, match := range matches {
		if _, ok := seen[match]; ok {
			continue
		}
		seen[match] = struct{}{}
		identifiers = append(identifiers, match)
	}
	return identifiers
}

// applyKeywordBoost adds identifier-match increments to candidate scores.
// Each identifier scores once per candidate, at the highest-priority
// region it appears in: title, then key-terms line, then body.
// Matches are exact on word boundaries, so a query for AFIO_MAPR never
// credits a chunk that only mentions AFIO_MAPR2.
func applyKeywordBoost(candidates []*core.Candidate, identifiers []string) {
	if len(identifiers) == 0 {
		return
	}

	patterns := make([]*regexp.Regexp, len(identifiers))
	for i, identifier := range identifiers {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(identifier) + `\b`)
	}

	for _, candidate := range candidates {
		title, key := annotationRegions(candidate.Text)
		for _, pattern := range patterns {
			switch {
			case title != "" && pattern.MatchString(title):
				candidate.Score += boostTitle
			case key != "" && pattern.MatchString(key):
				candidate.Score += boostKey
			case pattern.MatchString(candidate.Text):
				candidate.Score += boostBody
			}
		}
	}
}

// annotationRegions extracts the synthesized title line and the key-terms
// line from an annotated chunk text. Either may be absent.
func annotationRegions(text string) (title, key string) {
	for line := range strings.Lines(text) {
		if title == "" && strings.HasPrefix(line, "REGISTER DEFINITION:") {
			title = line
		}
		if key == "" && strings.Contains(line, "[KEY:") {
			key = line
		}
		if title != "" && key != "" {
			break
		}
	}
	return title, key
}
