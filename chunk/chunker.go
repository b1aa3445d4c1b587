package chunk

import (
	"log/slog"
	"maps"
	"strings"

	"github.com/poiesic/refdex/core"
)

// Chunker runs the full chunking pipeline for one document. A Chunker is
// immutable after construction and safe for concurrent use.
type Chunker struct {
	cfg        Config
	tok        Tokenizer
	classifier *Classifier
	logger     *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewChunker creates a chunker using the given tokenizer and configuration.
func NewChunker(tok Tokenizer, cfg Config, opts ...Option) (*Chunker, error) {
	if tok == nil {
		return nil, ErrTokenizerRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Chunker{
		cfg:        cfg,
		tok:        tok,
		classifier: NewClassifier(cfg),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ChunkText chunks a heading-structured document (markdown or plain text):
// normalize, split into heading-scoped sections, drop table-of-contents
// noise, then chunk each section. Returns zero chunks for empty or
// all-noise input; that is an outcome, not an error.
func (c *Chunker) ChunkText(text, source string, metadata map[string]string) []*core.Chunk {
	sections := SplitSections(Normalize(text), source)

	kept := sections[:0]
	for _, sec := range sections {
		if isTOC(sec.Body, c.cfg.TOCMinContent) {
			c.logger.Debug("dropping table-of-contents section", "source", source, "heading", sec.Heading)
			continue
		}
		kept = append(kept, sec)
	}

	return c.chunkSections(kept, metadata)
}

// ChunkPages chunks a page-scoped document (typically PDF-extracted text):
// one section per physical page, empty heading, page number recorded.
func (c *Chunker) ChunkPages(pages []Page, source string, metadata map[string]string) []*core.Chunk {
	return c.chunkSections(PageSections(pages, source), metadata)
}

// chunkSections runs recursive splitting, classification, and overlap
// stitching over an ordered section list, producing the document's final
// chunk sequence.
func (c *Chunker) chunkSections(sections []core.Section, metadata map[string]string) []*core.Chunk {
	var all []*core.Chunk

	for _, sec := range sections {
		for _, body := range c.splitSection(sec) {
			chunk := &core.Chunk{
				Body:     body,
				TokenLen: c.tok.Count(body),
				Index:    len(all),
				Source:   sec.Source,
				Section:  sec.Heading,
				Page:     sec.Page,
				Metadata: maps.Clone(metadata),
			}
			c.classifier.Classify(chunk)
			if chunk.TokenLen > c.cfg.ChunkSize {
				// Unsplittable run longer than the budget: emitted whole
				// rather than truncated.
				c.logger.Warn("chunk exceeds token budget",
					"source", chunk.Source, "chunk", chunk.Index,
					"tokens", chunk.TokenLen, "budget", c.cfg.ChunkSize)
			}
			all = append(all, chunk)
		}
	}

	Stitch(c.tok, all, c.cfg.ChunkOverlap)
	return all
}

// splitSection produces the ordered chunk bodies of one section. A section
// fitting the budget is emitted as a single chunk. Otherwise the body is
// split recursively and the heading is prepended to every piece so downstream
// consumers retain context; the heading's token cost is charged against each
// piece's budget.
func (c *Chunker) splitSection(sec core.Section) []string {
	body := strings.TrimSpace(sec.Body)
	if body == "" {
		return nil
	}

	var prefix string
	if sec.Heading != "" {
		prefix = "# " + sec.Heading + "\n\n"
	}

	if c.tok.Count(prefix+body) <= c.cfg.ChunkSize {
		return []string{prefix + body}
	}

	budget := c.cfg.ChunkSize - c.tok.Count(prefix)
	if budget < 1 {
		budget = 1
	}

	pieces := splitRecursive(c.tok, body, budget, separators)
	out := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		out = append(out, prefix+strings.TrimSpace(piece))
	}
	return out
}
