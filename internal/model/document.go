package model

import (
	"strconv"
	"time"
)

// Document is one ingested source document.
type Document struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Source     string          `json:"source"` // "pdf", "text", "sample"
	Text       string          `json:"-"`
	Metadata   SessionMetadata `json:"metadata"`
	ChunkCount int             `json:"chunk_count"`
	IngestedAt time.Time       `json:"ingested_at"`
}

// Chunk is one retrievable slice of a document. ChunkID is stable across
// rebuilds: "<document_id>:<index>".
type Chunk struct {
	DocumentID string    `json:"document_id"`
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	Page       int       `json:"page,omitempty"`
	Embedding  []float32 `json:"-"`
}

// ChunkID returns the stable identifier used in citations.
func (c *Chunk) ChunkID() string {
	return c.DocumentID + ":" + strconv.Itoa(c.Index)
}

// SearchResult is one retrieval hit: a chunk plus its similarity score.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
