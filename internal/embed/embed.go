// Package embed generates vector embeddings for document chunks and
// queries, with mock, Ollama and Jina backends.
package embed

import (
	"context"
	"math"
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	// Available returns true if the embedding backend is usable.
	Available() bool
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder extends Embedder with batch support. When EmbedBatch
// returns nil error, the result has the same length as texts, with
// result[i] corresponding to texts[i].
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryEmbedder is implemented by backends that embed queries
// differently from passages. Retrieval prefers it when present.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// EmbedAll embeds texts through the batch path when the embedder
// supports it, falling back to one call per text.
func EmbedAll(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	if batch, ok := e.(BatchEmbedder); ok {
		return batch.EmbedBatch(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

// CosineSimilarity computes similarity between two embeddings.
// Returns 1.0 for identical vectors, 0.0 for orthogonal vectors,
// mismatched lengths or zero vectors.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// IsZero reports whether every component of the vector is zero.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
