package chunk

import (
	"strings"

	"github.com/poiesic/refdex/core"
)

// Overlap delimiter. Text on the overlap side of the marker came from a
// neighboring chunk and is not primary content.
const overlapMarker = "[...]"

// Stitch freezes each chunk's final Text, attaching boundary context from its
// neighbors in the document's chunk sequence. Section boundaries do not block
// overlap. The predecessor contributes its last half tokens of the overlap
// budget, prepended before the chunk's annotated text; the successor
// contributes its first half, appended after. Overlap is taken from the
// neighbors' pre-annotation bodies and is exempt from the chunk-size budget.
func Stitch(tok Tokenizer, chunks []*core.Chunk, overlapBudget int) {
	half := overlapBudget / 2

	for i, chunk := range chunks {
		parts := make([]string, 0, 3)

		if i > 0 && half > 0 {
			tail := strings.TrimSpace(tok.Tail(chunks[i-1].Body, half))
			if tail != "" {
				parts = append(parts, overlapMarker+" "+tail)
			}
		}

		parts = append(parts, annotated(chunk))

		if i < len(chunks)-1 && half > 0 {
			head := strings.TrimSpace(tok.Head(chunks[i+1].Body, half))
			if head != "" {
				parts = append(parts, head+" "+overlapMarker)
			}
		}

		chunk.Text = strings.Join(parts, "\n\n")
	}
}
