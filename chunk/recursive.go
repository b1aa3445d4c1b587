package chunk

import "strings"

// Boundary precedence for recursive splitting, most preferred first:
// paragraph break, line break, sentence end, single space.
var separators = []string{"\n\n", "\n", ". ", " "}

// splitRecursive splits text into pieces of at most budget units each,
// splitting at the coarsest boundary that yields conforming pieces.
//
// At each boundary level, pieces are greedily accumulated into the current
// chunk until adding the next one would exceed the budget. A single piece
// that itself exceeds the budget recurses into the next boundary level down.
// When no boundary level remains, the piece is emitted whole: an unsplittable
// token run is never truncated.
func splitRecursive(tok Tokenizer, text string, budget int, seps []string) []string {
	if len(seps) == 0 || tok.Count(text) <= budget {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	sep := seps[0]
	rest := seps[1:]

	var chunks []string
	current := ""

	for _, piece := range strings.Split(text, sep) {
		candidate := piece
		if current != "" {
			candidate = current + sep + piece
		}
		if tok.Count(candidate) <= budget {
			current = candidate
			continue
		}

		if current != "" {
			chunks = append(chunks, current)
		}
		if tok.Count(piece) > budget {
			chunks = append(chunks, splitRecursive(tok, piece, budget, rest)...)
			current = ""
		} else {
			current = piece
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}
