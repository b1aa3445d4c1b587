package chunk

import (
	"regexp"
	"strings"
)

// Running header/footer detection. Reference manuals stamp every page with
// short lines like "612/709 RM0041 Rev 6", "RM0041 Rev 6 612/709" or
// "RM0041 Universal synchronous asynchronous receiver"; the exact tag varies
// per document, so detection is frequency-based: short lines that match a
// page-marker or doc-tag shape and whose signature repeats across the
// document are dropped. Page-marker lines collapse digits to get a stable
// signature; doc-tag lines carry a varying chapter title, so the tag alone
// is the signature.
const (
	maxHeaderLineLen = 80
	minHeaderRepeats = 3
)

var (
	pageMarkerPattern = regexp.MustCompile(`\d+\s*/\s*\d+|\bRev\.?\s+\d+\b`)
	docTagPattern     = regexp.MustCompile(`^([A-Z]{2}\d{3,})\s+[A-Za-z]`)
	digitRunPattern   = regexp.MustCompile(`\d+`)
	blankRunPattern   = regexp.MustCompile(`\n{3,}`)
	trailingWSPattern = regexp.MustCompile(`(?m)[ \t]+$`)
)

// Normalize strips layout artifacts from raw extracted text: recurring
// header/footer lines, runs of three or more blank lines (collapsed to one
// blank line), and trailing whitespace per line. Deterministic; always
// produces output, possibly empty.
func Normalize(text string) string {
	lines := strings.Split(text, "\n")

	// First pass: count signatures of header/footer candidates.
	counts := make(map[string]int)
	for _, line := range lines {
		if sig, ok := headerSignature(line); ok {
			counts[sig]++
		}
	}

	// Second pass: drop candidates whose signature repeats.
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if sig, ok := headerSignature(line); ok && counts[sig] >= minHeaderRepeats {
			continue
		}
		kept = append(kept, line)
	}

	out := strings.Join(kept, "\n")
	out = trailingWSPattern.ReplaceAllString(out, "")
	out = blankRunPattern.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// headerSignature returns the digit-insensitive signature of a line and
// whether the line is a header/footer candidate at all.
func headerSignature(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > maxHeaderLineLen {
		return "", false
	}
	if pageMarkerPattern.MatchString(trimmed) {
		return digitRunPattern.ReplaceAllString(trimmed, "#"), true
	}
	if m := docTagPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], true
	}
	return "", false
}
