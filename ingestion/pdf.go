package ingestion

import (
	"fmt"
	"strings"

	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/model"

	"github.com/poiesic/refdex/chunk"
)

// readPDFPages extracts per-page text from a PDF file. The whole file
// is parsed once; extracting page by page would reparse it per page,
// which is prohibitive on manuals hundreds of pages long.
func readPDFPages(path string) ([]chunk.Page, error) {
	doc, _, err := tabula.Open(path).Document()
	if err != nil {
		return nil, fmt.Errorf("extract pdf: %w", err)
	}
	return pagesFromDocument(doc), nil
}

// pagesFromDocument flattens extracted page structure back to text.
// Blank pages are kept; the chunker skips them.
func pagesFromDocument(doc *model.Document) []chunk.Page {
	pages := make([]chunk.Page, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		pages = append(pages, chunk.Page{
			Number: page.Number,
			Text:   strings.TrimSpace(page.ExtractText()),
		})
	}
	return pages
}
