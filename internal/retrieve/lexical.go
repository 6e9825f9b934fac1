package retrieve

import (
	"sort"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// lexicalSearch scores chunks by query-token overlap. It backs up the
// vector path when embeddings are unavailable; scores are the fraction
// of query tokens present in the chunk, so they stay in [0, 1] like
// cosine scores.
func lexicalSearch(query string, idx *docIndex, topK int) []model.SearchResult {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return nil
	}

	var results []model.SearchResult
	for _, id := range idx.order {
		chunk := idx.chunks[id]
		haystack := strings.ToLower(chunk.Text)
		hits := 0
		for _, tok := range tokens {
			if strings.Contains(haystack, tok) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		results = append(results, model.SearchResult{
			Chunk: chunk,
			Score: float64(hits) / float64(len(tokens)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

func queryTokens(query string) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		f = strings.Trim(f, ".,;:!?()[]'\"")
		if len(f) < 3 || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}
