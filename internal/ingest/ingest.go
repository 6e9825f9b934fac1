// Package ingest turns race documents (PDF or plain text) into cleaned,
// chunked, page-attributed text ready for embedding and retrieval.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// Options controls chunking behavior. Sizes are in characters.
type Options struct {
	ChunkSize      int
	ChunkOverlap   int
	MinChunkLength int
	MaxChunkLength int
}

// DefaultOptions returns the chunking defaults tuned for race reports:
// chunks big enough to hold a full paragraph of analysis, overlapped so
// lap references near a boundary stay retrievable from both sides.
func DefaultOptions() Options {
	return Options{
		ChunkSize:      512,
		ChunkOverlap:   128,
		MinChunkLength: 50,
		MaxChunkLength: 2000,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ChunkSize <= 0 {
		o.ChunkSize = d.ChunkSize
	}
	if o.ChunkOverlap < 0 {
		o.ChunkOverlap = d.ChunkOverlap
	}
	if o.MinChunkLength <= 0 {
		o.MinChunkLength = d.MinChunkLength
	}
	if o.MaxChunkLength <= 0 {
		o.MaxChunkLength = d.MaxChunkLength
	}
	return o
}

// ExtractPDF pulls plain text out of a PDF, inserting a [PAGE n] marker
// before each page so chunking can attribute text to pages.
func ExtractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var b strings.Builder
	pages := reader.NumPage()
	for n := 1; n <= pages; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logging.Warn("Failed to extract PDF page", "page", n, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n[PAGE %d]\n%s\n", n, text)
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("no text could be extracted from %s", filepath.Base(path))
	}

	logging.Info("Extracted PDF text", "file", filepath.Base(path), "pages", pages, "chars", b.Len())
	return b.String(), nil
}

// IngestPDF extracts, cleans and chunks a PDF file.
func IngestPDF(path string, opts Options) (*model.Document, []model.Chunk, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("PDF file not found: %s", path)
	}
	raw, err := ExtractPDF(path)
	if err != nil {
		return nil, nil, err
	}
	return build(filepath.Base(path), "pdf", raw, opts)
}

// IngestText cleans and chunks raw text under the given display name.
func IngestText(name, text string, opts Options) (*model.Document, []model.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, fmt.Errorf("document %s is empty", name)
	}
	return build(name, "text", text, opts)
}

func build(name, source, raw string, opts Options) (*model.Document, []model.Chunk, error) {
	opts = opts.withDefaults()

	cleaned := CleanText(raw)
	pieces := ChunkText(cleaned, opts)
	if len(pieces) == 0 {
		return nil, nil, fmt.Errorf("document %s produced no usable chunks", name)
	}

	doc := &model.Document{
		ID:         uuid.New().String(),
		Name:       name,
		Source:     source,
		Text:       cleaned,
		ChunkCount: len(pieces),
		IngestedAt: time.Now().UTC(),
	}
	chunks := attributePages(doc.ID, pieces)

	logging.Info("Ingested document", "name", name, "chunks", len(chunks), "chars", len(cleaned))
	return doc, chunks, nil
}
