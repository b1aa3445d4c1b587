package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/refdex/chunk"
)

// Document is parsed source content ready for chunking.
// Exactly one of Text or Pages is populated: heading-scoped formats
// carry Text, paginated formats carry Pages.
type Document struct {
	Source string // basename of the input file
	Text   string
	Pages  []chunk.Page
}

// Reader parses one source file into a Document.
type Reader interface {
	Read(path string) (*Document, error)
}

// FileReader dispatches on file extension: PDFs go through the page
// extractor, everything else is treated as UTF-8 text.
type FileReader struct{}

var _ Reader = (*FileReader)(nil)

// Read parses the file at path.
func (FileReader) Read(path string) (*Document, error) {
	source := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		pages, err := readPDFPages(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		return &Document{Source: source, Pages: pages}, nil
	case ".md", ".markdown", ".txt", ".text", "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		return &Document{Source: source, Text: string(data)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
	}
}
