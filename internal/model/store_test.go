package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestNewStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	// Verify database was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestSaveAndGetDocument(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	doc := Document{
		ID:     "doc1",
		Name:   "2023_monaco_gp_report.pdf",
		Source: "pdf",
		Text:   "Race report text",
		Metadata: SessionMetadata{
			Year:      2023,
			EventName: "Monaco Grand Prix",
			Kind:      SessionRace,
		},
		IngestedAt: time.Now(),
	}
	chunks := []Chunk{
		{DocumentID: "doc1", Index: 0, Text: "First chunk of the report", Page: 1},
		{DocumentID: "doc1", Index: 1, Text: "Second chunk of the report", Page: 2, Embedding: []float32{0.1, 0.2, 0.3}},
	}

	if err := store.SaveDocument(doc, chunks); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	got, err := store.GetDocument("doc1")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got.Name != doc.Name {
		t.Errorf("expected name %q, got %q", doc.Name, got.Name)
	}
	if got.Metadata.EventName != "Monaco Grand Prix" {
		t.Errorf("metadata round trip failed, got %q", got.Metadata.EventName)
	}
	if got.ChunkCount != 2 {
		t.Errorf("expected chunk count 2, got %d", got.ChunkCount)
	}
}

func TestGetDocumentMissing(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	if _, err := store.GetDocument("nope"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("GetDocument(missing) error = %v, want ErrDocumentNotFound", err)
	}
}

func TestGetChunksPreservesEmbeddings(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	doc := Document{ID: "doc1", Name: "report", Source: "text", Text: "text", IngestedAt: time.Now()}
	chunks := []Chunk{
		{DocumentID: "doc1", Index: 0, Text: "chunk a", Embedding: []float32{1.5, -2.25, 0}},
		{DocumentID: "doc1", Index: 1, Text: "chunk b"},
	}
	if err := store.SaveDocument(doc, chunks); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	got, err := store.GetChunks("doc1")
	if err != nil {
		t.Fatalf("GetChunks failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if len(got[0].Embedding) != 3 {
		t.Fatalf("expected 3-dim embedding, got %d", len(got[0].Embedding))
	}
	if got[0].Embedding[1] != -2.25 {
		t.Errorf("embedding round trip failed, got %v", got[0].Embedding)
	}
	if got[1].Embedding != nil {
		t.Errorf("expected nil embedding for chunk b, got %v", got[1].Embedding)
	}
}

func TestSaveChunkEmbeddings(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	doc := Document{ID: "doc1", Name: "report", Source: "text", Text: "text", IngestedAt: time.Now()}
	chunks := []Chunk{
		{DocumentID: "doc1", Index: 0, Text: "chunk a"},
		{DocumentID: "doc1", Index: 1, Text: "chunk b"},
	}
	if err := store.SaveDocument(doc, chunks); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	embeddings := map[int][]float32{
		0: {0.5, 0.5},
		1: {1, 0},
	}
	if err := store.SaveChunkEmbeddings("doc1", embeddings); err != nil {
		t.Fatalf("SaveChunkEmbeddings failed: %v", err)
	}

	got, err := store.GetChunks("doc1")
	if err != nil {
		t.Fatalf("GetChunks failed: %v", err)
	}
	for _, c := range got {
		if len(c.Embedding) != 2 {
			t.Errorf("chunk %d missing embedding", c.Index)
		}
	}
}

func TestSaveDocumentReplacesChunks(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	doc := Document{ID: "doc1", Name: "report", Source: "text", Text: "v1", IngestedAt: time.Now()}
	if err := store.SaveDocument(doc, []Chunk{
		{DocumentID: "doc1", Index: 0, Text: "old 0"},
		{DocumentID: "doc1", Index: 1, Text: "old 1"},
		{DocumentID: "doc1", Index: 2, Text: "old 2"},
	}); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	doc.Text = "v2"
	if err := store.SaveDocument(doc, []Chunk{
		{DocumentID: "doc1", Index: 0, Text: "new 0"},
	}); err != nil {
		t.Fatalf("second SaveDocument failed: %v", err)
	}

	got, err := store.GetChunks("doc1")
	if err != nil {
		t.Fatalf("GetChunks failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk after re-ingest, got %d", len(got))
	}
	if got[0].Text != "new 0" {
		t.Errorf("expected replaced chunk text, got %q", got[0].Text)
	}
}

func TestUpdateDocumentMetadata(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	doc := Document{ID: "doc1", Name: "report", Source: "text", Text: "text", IngestedAt: time.Now()}
	chunks := []Chunk{
		{DocumentID: "doc1", Index: 0, Text: "chunk a"},
		{DocumentID: "doc1", Index: 1, Text: "chunk b"},
	}
	if err := store.SaveDocument(doc, chunks); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	meta := SessionMetadata{Year: 2023, EventName: "Monaco Grand Prix", Kind: SessionRace}
	if err := store.UpdateDocumentMetadata("doc1", meta); err != nil {
		t.Fatalf("UpdateDocumentMetadata failed: %v", err)
	}

	got, err := store.GetDocument("doc1")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got.Metadata.EventName != "Monaco Grand Prix" || got.Metadata.Year != 2023 {
		t.Errorf("metadata not updated: %+v", got.Metadata)
	}

	kept, err := store.GetChunks("doc1")
	if err != nil {
		t.Fatalf("GetChunks failed: %v", err)
	}
	if len(kept) != 2 {
		t.Errorf("expected chunks untouched, got %d", len(kept))
	}

	if err := store.UpdateDocumentMetadata("missing", meta); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("UpdateDocumentMetadata(missing) error = %v, want ErrDocumentNotFound", err)
	}
}

func TestListAndDeleteDocuments(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	for i, id := range []string{"a", "b"} {
		doc := Document{
			ID: id, Name: "doc-" + id, Source: "text", Text: "text",
			IngestedAt: time.Now().Add(time.Duration(i) * time.Second),
		}
		if err := store.SaveDocument(doc, nil); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}
	}

	docs, err := store.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	// Newest first
	if docs[0].ID != "b" {
		t.Errorf("expected doc b first, got %s", docs[0].ID)
	}

	if err := store.DeleteDocument("a"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	count, err := store.DocumentCount()
	if err != nil {
		t.Fatalf("DocumentCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 document after delete, got %d", count)
	}
}

func TestEmbeddingSerializationRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
	}{
		{"nil", nil},
		{"empty", []float32{}},
		{"values", []float32{0, 1, -1, 0.5, 3.14159}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := serializeEmbedding(tt.in)
			out := deserializeEmbedding(blob)
			if len(tt.in) == 0 {
				if out != nil {
					t.Fatalf("expected nil, got %v", out)
				}
				return
			}
			if len(out) != len(tt.in) {
				t.Fatalf("length mismatch: %d vs %d", len(out), len(tt.in))
			}
			for i := range tt.in {
				if out[i] != tt.in[i] {
					t.Errorf("index %d: got %v, want %v", i, out[i], tt.in[i])
				}
			}
		})
	}
}
