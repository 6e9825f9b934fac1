package embed

import (
	"context"
	"math"
	"testing"
)

func TestCosineSimilarityIdentical(t *testing.T) {
	a := []float32{1.0, 2.0, 3.0}
	b := []float32{1.0, 2.0, 3.0}

	result := CosineSimilarity(a, b)
	if math.Abs(float64(result-1.0)) > 1e-6 {
		t.Errorf("CosineSimilarity(identical) = %v, want 1.0", result)
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	a := []float32{1.0, 0.0}
	b := []float32{0.0, 1.0}

	result := CosineSimilarity(a, b)
	if math.Abs(float64(result)) > 1e-6 {
		t.Errorf("CosineSimilarity(orthogonal) = %v, want 0.0", result)
	}
}

func TestCosineSimilarityDegenerate(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
	}{
		{"first zero", []float32{0, 0, 0}, []float32{1, 2, 3}},
		{"second zero", []float32{1, 2, 3}, []float32{0, 0, 0}},
		{"both zero", []float32{0, 0, 0}, []float32{0, 0, 0}},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}},
		{"both empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := CosineSimilarity(tt.a, tt.b); result != 0.0 {
				t.Errorf("CosineSimilarity() = %v, want 0.0", result)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	if !IsZero([]float32{0, 0, 0}) {
		t.Error("IsZero(zeros) = false, want true")
	}
	if IsZero([]float32{0, 0.001, 0}) {
		t.Error("IsZero(non-zero) = true, want false")
	}
	if !IsZero(nil) {
		t.Error("IsZero(nil) = false, want true")
	}
}

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(384)
	ctx := context.Background()

	a1, err := e.Embed(ctx, "safety car deployed on lap 21")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	a2, _ := e.Embed(ctx, "safety car deployed on lap 21")

	if len(a1) != 384 {
		t.Fatalf("Embed() dimension = %d, want 384", len(a1))
	}
	if CosineSimilarity(a1, a2) < 0.9999 {
		t.Error("same text did not produce identical embeddings")
	}
}

func TestMockEmbedderRanksByOverlap(t *testing.T) {
	e := NewMockEmbedder(384)
	ctx := context.Background()

	query, _ := e.Embed(ctx, "safety car pit stop lap 22")
	related, _ := e.Embed(ctx, "the safety car came out and leaders made a pit stop on lap 22")
	unrelated, _ := e.Embed(ctx, "quarterly revenue guidance exceeded analyst expectations")

	if CosineSimilarity(query, related) <= CosineSimilarity(query, unrelated) {
		t.Error("overlapping text did not outrank unrelated text")
	}
}

func TestEmbedAllUsesBatch(t *testing.T) {
	e := NewMockEmbedder(64)
	vectors, err := EmbedAll(context.Background(), e, []string{"one lap", "two laps", "three laps"})
	if err != nil {
		t.Fatalf("EmbedAll() error = %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("EmbedAll() returned %d vectors, want 3", len(vectors))
	}
	for i, v := range vectors {
		if len(v) != 64 {
			t.Errorf("vector[%d] dimension = %d, want 64", i, len(v))
		}
	}
}
