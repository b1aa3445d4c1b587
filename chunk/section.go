package chunk

import (
	"regexp"
	"strings"

	"github.com/poiesic/refdex/core"
)

var headingPattern = regexp.MustCompile(`^(#{1,4})\s+(.+)$`)

// Page is one physical page of extracted text from a page-scoped source.
type Page struct {
	Number int // 1-based page number
	Text   string
}

// SplitSections divides normalized heading-structured text into sections
// scoped by markdown headings of levels 1-4. Content preceding the first
// heading becomes a section with an empty heading. Ordering is preserved.
func SplitSections(text, source string) []core.Section {
	var sections []core.Section

	heading := ""
	var body []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content != "" {
			sections = append(sections, core.Section{
				Heading: heading,
				Body:    content,
				Source:  source,
			})
		}
		body = body[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			flush()
			heading = strings.TrimSpace(m[2])
			continue
		}
		body = append(body, line)
	}
	flush()

	return sections
}

// PageSections wraps page-extracted text as one section per physical page,
// with an empty heading and the page number recorded. Empty pages are skipped.
func PageSections(pages []Page, source string) []core.Section {
	sections := make([]core.Section, 0, len(pages))
	for _, page := range pages {
		content := strings.TrimSpace(page.Text)
		if content == "" {
			continue
		}
		sections = append(sections, core.Section{
			Body:   content,
			Source: source,
			Page:   page.Number,
		})
	}
	return sections
}

// Table-of-contents noise: entries like "3.2 GPIO registers . . . . . . 123"
// reduce to almost nothing once dot leaders and page numbers are stripped.
var (
	pageNumberLine = regexp.MustCompile(`(?m)^\d+\s*$`)
	dotLeaderTail  = regexp.MustCompile(`(?m)\.[\s.]+\d+\s*$`)
)

// isTOC reports whether a section body is table-of-contents noise: after
// stripping bare page-number lines and dot-leader tails, fewer than minContent
// characters remain.
func isTOC(body string, minContent int) bool {
	withoutNumbers := strings.TrimSpace(pageNumberLine.ReplaceAllString(body, ""))
	withoutLeaders := strings.TrimSpace(dotLeaderTail.ReplaceAllString(body, ""))
	return len(withoutNumbers) < minContent || len(withoutLeaders) < minContent
}
