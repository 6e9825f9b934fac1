// Package retrieve finds document chunks relevant to a query. Chunks
// are indexed per document in an HNSW graph over their embeddings; when
// the embedder yields nothing useful the retriever falls back to
// lexical overlap so citations never silently vanish.
package retrieve

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/mateluky/f1-race-intelligence/internal/embed"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// ChunkSource supplies the stored chunks of a document. *model.Store
// satisfies it; tests use in-memory fakes.
type ChunkSource interface {
	GetChunks(documentID string) ([]model.Chunk, error)
}

// Retriever answers similarity queries over ingested documents.
type Retriever struct {
	source   ChunkSource
	embedder embed.Embedder
	topK     int

	mu      sync.Mutex
	indexes map[string]*docIndex
}

// docIndex holds one document's chunks and their HNSW graph.
type docIndex struct {
	graph  *hnsw.Graph[string]
	chunks map[string]model.Chunk
	order  []string
}

// NewRetriever creates a retriever. topK defaults to 5.
func NewRetriever(source ChunkSource, embedder embed.Embedder, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		source:   source,
		embedder: embedder,
		topK:     topK,
		indexes:  make(map[string]*docIndex),
	}
}

// TopK returns the default result count.
func (r *Retriever) TopK() int {
	return r.topK
}

// Invalidate drops the cached index for a document. Call after deleting
// or re-ingesting it.
func (r *Retriever) Invalidate(documentID string) {
	r.mu.Lock()
	delete(r.indexes, documentID)
	r.mu.Unlock()
}

// Retrieve returns the top-k chunks of a document most similar to the
// query. topK <= 0 uses the retriever default.
func (r *Retriever) Retrieve(ctx context.Context, query, documentID string, topK int) ([]model.SearchResult, error) {
	if topK <= 0 {
		topK = r.topK
	}

	idx, err := r.index(documentID)
	if err != nil {
		return nil, err
	}
	if len(idx.order) == 0 {
		return nil, nil
	}

	queryVec := r.embedQuery(ctx, query)
	if queryVec == nil || embed.IsZero(queryVec) {
		logging.Debug("Falling back to lexical retrieval", "query", query)
		return lexicalSearch(query, idx, topK), nil
	}

	results := idx.search(queryVec, topK)
	if len(results) == 0 {
		return lexicalSearch(query, idx, topK), nil
	}
	return results, nil
}

// RetrieveForClaim runs an expanded search for evidence supporting or
// refuting a claim: the claim text plus variants salted with up to
// three entity names, scores averaged when a chunk recurs.
func (r *Retriever) RetrieveForClaim(ctx context.Context, claim model.Claim, documentID string) ([]model.SearchResult, error) {
	topK := r.topK * 2

	queries := []string{claim.Text}
	keywords := append(append([]string{}, claim.Entities.Drivers...), claim.Entities.Teams...)
	if len(keywords) > 3 {
		keywords = keywords[:3]
	}
	for _, kw := range keywords {
		queries = append(queries, claim.Text+" "+kw)
	}

	byID := make(map[string]model.SearchResult)
	for _, q := range queries {
		results, err := r.Retrieve(ctx, q, documentID, topK)
		if err != nil {
			return nil, err
		}
		for _, res := range results {
			id := res.Chunk.ChunkID()
			if prev, ok := byID[id]; ok {
				prev.Score = (prev.Score + res.Score) / 2
				byID[id] = prev
			} else {
				byID[id] = res
			}
		}
	}

	merged := make([]model.SearchResult, 0, len(byID))
	for _, res := range byID {
		merged = append(merged, res)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if len(merged) > topK {
		merged = merged[:topK]
	}
	return merged, nil
}

// ContextWindow returns a chunk with up to size neighbors on each side,
// in document order.
func (r *Retriever) ContextWindow(documentID, chunkID string, size int) ([]model.Chunk, error) {
	idx, err := r.index(documentID)
	if err != nil {
		return nil, err
	}

	pos := -1
	for i, id := range idx.order {
		if id == chunkID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, fmt.Errorf("chunk %s not found in document %s", chunkID, documentID)
	}

	lo := pos - size
	if lo < 0 {
		lo = 0
	}
	hi := pos + size
	if hi > len(idx.order)-1 {
		hi = len(idx.order) - 1
	}

	window := make([]model.Chunk, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		window = append(window, idx.chunks[idx.order[i]])
	}
	return window, nil
}

// index returns the cached HNSW index for a document, building it from
// stored chunks on first use.
func (r *Retriever) index(documentID string) (*docIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.indexes[documentID]; ok {
		return idx, nil
	}

	chunks, err := r.source.GetChunks(documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks for %s: %w", documentID, err)
	}

	idx := newDocIndex(chunks)
	r.indexes[documentID] = idx
	logging.Debug("Built retrieval index", "document", documentID, "chunks", len(chunks))
	return idx, nil
}

func newDocIndex(chunks []model.Chunk) *docIndex {
	graph := hnsw.NewGraph[string]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 32

	idx := &docIndex{
		graph:  graph,
		chunks: make(map[string]model.Chunk, len(chunks)),
	}
	for _, chunk := range chunks {
		id := chunk.ChunkID()
		idx.chunks[id] = chunk
		idx.order = append(idx.order, id)
		if len(chunk.Embedding) > 0 && !embed.IsZero(chunk.Embedding) {
			graph.Add(hnsw.MakeNode(id, chunk.Embedding))
		}
	}
	return idx
}

// search queries the graph and rescores candidates with exact cosine
// similarity, so reported scores are not approximation artifacts.
func (idx *docIndex) search(queryVec []float32, topK int) (results []model.SearchResult) {
	// The graph has panicked on degenerate input before; a lost search
	// must not take the build down.
	defer func() {
		if r := recover(); r != nil {
			logging.Error("HNSW search panic recovered", "error", r)
			results = nil
		}
	}()

	if idx.graph.Len() == 0 {
		return nil
	}

	neighbors := idx.graph.Search(queryVec, topK)
	for _, n := range neighbors {
		chunk, ok := idx.chunks[n.Key]
		if !ok || len(n.Value) != len(queryVec) {
			continue
		}
		score := float64(embed.CosineSimilarity(queryVec, chunk.Embedding))
		results = append(results, model.SearchResult{Chunk: chunk, Score: score})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

// embedQuery embeds the query, preferring a dedicated query mode when
// the backend has one. Returns nil on failure.
func (r *Retriever) embedQuery(ctx context.Context, query string) []float32 {
	if r.embedder == nil || !r.embedder.Available() {
		return nil
	}
	if qe, ok := r.embedder.(embed.QueryEmbedder); ok {
		vec, err := qe.EmbedQuery(ctx, query)
		if err == nil {
			return vec
		}
		logging.Debug("Query embedding failed, trying passage mode", "error", err)
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logging.Warn("Failed to embed query", "error", err)
		return nil
	}
	return vec
}
