package chunk

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/poiesic/refdex/core"
)

const (
	maxKeyTermRegisters = 5
	maxKeyTermFields    = 8
)

var (
	// Table separator row, e.g. "|---|---|" or "| :--- | ---: |".
	tableSepPattern = regexp.MustCompile(`(?m)^\|[\s\-:]+\|[\s\-:|]+$`)

	// Register-like identifiers, e.g. AFIO_MAPR, GPIOx_CRL, USART_BRR.
	registerPattern = regexp.MustCompile(`\b([A-Z]{2,}x?_[A-Z0-9_]+)\b`)

	// Declared address offset, hex or decimal.
	offsetPattern = regexp.MustCompile(`Address offset:\s*(0x[0-9A-Fa-f]+|\d+)`)

	// Declared reset value, hex or decimal.
	resetPattern = regexp.MustCompile(`Reset value:\s*(0x[0-9A-Fa-f]+|\d+)`)

	// Bit-field declarations, e.g. "Bit 7 EVOE:" or "Bits 3:0 PIN[3:0]:".
	fieldPattern = regexp.MustCompile(`Bits?\s+\d+(?::\d+)?\s+([A-Z][A-Z0-9_\[\]]+):`)
)

// Classifier assigns each chunk exactly one kind and synthesizes retrieval
// annotations. Rules are evaluated in priority order: register definition,
// overview, regular. Runs once per chunk, after chunking and before overlap
// stitching.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a classifier with the given configuration.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify sets the chunk's Kind and, where warranted, its Title and KeyTerms.
//
// A register definition is a chunk containing a table, a declared address
// offset, and at least one register identifier; it receives a title naming
// the register and a key-term prefix listing the table marker, register
// names, offset, reset value, and bit-field names. An overview chunk names
// four or more distinct registers without defining them; it is tagged
// OVERVIEW:register_list and its register names are deliberately excluded
// from the key terms so it cannot outrank a true definition on an
// exact-register query. Any other chunk is regular, with identifiers listed
// verbatim.
func (cl *Classifier) Classify(chunk *core.Chunk) {
	text := chunk.Body

	var terms []string

	hasTable := tableSepPattern.MatchString(text)
	if hasTable {
		terms = append(terms, "TABLE:register_bitfields")
	}

	registers := uniqueSubmatches(registerPattern, text)
	offset := firstSubmatch(offsetPattern, text)

	switch {
	case hasTable && offset != "" && len(registers) > 0:
		chunk.Kind = core.ChunkRegisterDefinition
		chunk.Title = fmt.Sprintf("REGISTER DEFINITION: %s - Complete bit field specification", registers[0])
		terms = append(terms, limit(registers, maxKeyTermRegisters)...)
	case len(registers) >= cl.cfg.OverviewMinRegisters:
		chunk.Kind = core.ChunkOverview
		terms = append(terms, "OVERVIEW:register_list")
	default:
		chunk.Kind = core.ChunkRegular
		terms = append(terms, limit(registers, maxKeyTermRegisters)...)
	}

	if offset != "" {
		terms = append(terms, "offset:"+offset)
	}
	if reset := firstSubmatch(resetPattern, text); reset != "" {
		terms = append(terms, "reset:"+reset)
	}
	if fields := uniqueSubmatches(fieldPattern, text); len(fields) > 0 {
		terms = append(terms, "fields:"+strings.Join(limit(fields, maxKeyTermFields), ","))
	}

	if len(terms) > 0 {
		chunk.KeyTerms = "[KEY: " + strings.Join(terms, " | ") + "]"
	}
}

// annotated returns the chunk body with its title and key-term prefix
// prepended, in that order, separated by line breaks.
func annotated(chunk *core.Chunk) string {
	var b strings.Builder
	if chunk.Title != "" {
		b.WriteString(chunk.Title)
		b.WriteString("\n")
	}
	if chunk.KeyTerms != "" {
		b.WriteString(chunk.KeyTerms)
		b.WriteString("\n\n")
	}
	b.WriteString(chunk.Body)
	return b.String()
}

// uniqueSubmatches returns the first capture group of every match, deduplicated
// in order of first appearance.
func uniqueSubmatches(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
	}
	return out
}

// firstSubmatch returns the first capture group of the first match, or "".
func firstSubmatch(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func limit(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
