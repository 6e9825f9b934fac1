package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// MockEmbedder produces deterministic offline embeddings by hashing
// tokens into a fixed-dimension bag-of-words projection. Texts sharing
// vocabulary land near each other, so retrieval stays meaningful in
// mock mode instead of random.
type MockEmbedder struct {
	dim int
}

// NewMockEmbedder creates a mock embedder. dim defaults to 384.
func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = 384
	}
	return &MockEmbedder{dim: dim}
}

func (e *MockEmbedder) Available() bool {
	return true
}

func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?()[]'\"")
		if len(token) < 2 {
			continue
		}
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()
		idx := int(sum % uint64(e.dim))
		sign := float32(1)
		if sum&(1<<63) != 0 {
			sign = -1
		}
		vec[idx] += sign
	}

	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
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
