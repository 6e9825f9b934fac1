package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/mateluky/f1-race-intelligence/internal/embed"
	"github.com/mateluky/f1-race-intelligence/internal/ingest"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// IngestPDF extracts, chunks, embeds and stores a PDF file.
func (a *App) IngestPDF(ctx context.Context, path string) (model.Document, error) {
	doc, chunks, err := ingest.IngestPDF(path, a.ingestOptions())
	if err != nil {
		return model.Document{}, err
	}
	return a.saveIngested(ctx, doc, chunks)
}

// IngestText chunks, embeds and stores raw text under a display name.
func (a *App) IngestText(ctx context.Context, name, text string) (model.Document, error) {
	doc, chunks, err := ingest.IngestText(name, text, a.ingestOptions())
	if err != nil {
		return model.Document{}, err
	}
	return a.saveIngested(ctx, doc, chunks)
}

// IngestSample loads the bundled race report, so every pipeline can be
// exercised without any input files.
func (a *App) IngestSample(ctx context.Context) (model.Document, error) {
	doc, chunks, err := ingest.IngestText(ingest.SampleName, ingest.SampleDocument(), a.ingestOptions())
	if err != nil {
		return model.Document{}, err
	}
	doc.Source = "sample"
	return a.saveIngested(ctx, doc, chunks)
}

// ListDocuments returns all stored documents, newest first.
func (a *App) ListDocuments() ([]model.Document, error) {
	return a.store.ListDocuments()
}

// Document returns one stored document with its full text.
func (a *App) Document(id string) (model.Document, error) {
	return a.store.GetDocument(id)
}

// DeleteDocument removes a document, its chunks and its retrieval index.
func (a *App) DeleteDocument(id string) error {
	if err := a.store.DeleteDocument(id); err != nil {
		return err
	}
	a.retriever.Invalidate(id)
	logging.Info("document deleted", "id", id)
	return nil
}

// ReembedDocument regenerates the stored chunk embeddings for one
// document, for when the embedder changed or was down at ingest time.
// Returns the number of chunks re-embedded.
func (a *App) ReembedDocument(ctx context.Context, documentID string) (int, error) {
	if a.embedder == nil || !a.embedder.Available() {
		return 0, errors.New("no embedding capability available")
	}
	if _, err := a.store.GetDocument(documentID); err != nil {
		return 0, err
	}
	chunks, err := a.store.GetChunks(documentID)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vecs, err := embed.EmbedAll(ctx, a.embedder, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	embeddings := make(map[int][]float32, len(chunks))
	for i := range chunks {
		embeddings[chunks[i].Index] = vecs[i]
	}
	if err := a.store.SaveChunkEmbeddings(documentID, embeddings); err != nil {
		return 0, fmt.Errorf("store embeddings: %w", err)
	}

	a.retriever.Invalidate(documentID)
	logging.Info("document re-embedded", "id", documentID, "chunks", len(embeddings))
	return len(embeddings), nil
}

func (a *App) ingestOptions() ingest.Options {
	return ingest.Options{
		ChunkSize:      a.cfg.Ingest.ChunkSize,
		ChunkOverlap:   a.cfg.Ingest.ChunkOverlap,
		MinChunkLength: a.cfg.Ingest.MinChunkLength,
		MaxChunkLength: a.cfg.Ingest.MaxChunkLength,
	}
}

func (a *App) saveIngested(ctx context.Context, doc *model.Document, chunks []model.Chunk) (model.Document, error) {
	a.embedChunks(ctx, chunks)
	if err := a.store.SaveDocument(*doc, chunks); err != nil {
		return model.Document{}, fmt.Errorf("store document: %w", err)
	}
	a.retriever.Invalidate(doc.ID)
	logging.Info("document ingested",
		"id", doc.ID, "name", doc.Name, "source", doc.Source, "chunks", len(chunks))
	return *doc, nil
}

// embedChunks fills chunk embeddings in place. Failures are not fatal:
// retrieval falls back to lexical scoring for chunks without vectors.
func (a *App) embedChunks(ctx context.Context, chunks []model.Chunk) {
	if a.embedder == nil || !a.embedder.Available() || len(chunks) == 0 {
		return
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vecs, err := embed.EmbedAll(ctx, a.embedder, texts)
	if err != nil {
		logging.Warn("chunk embedding failed, retrieval will use lexical fallback", "error", err)
		return
	}
	for i := range chunks {
		if i < len(vecs) {
			chunks[i].Embedding = vecs[i]
		}
	}
}
