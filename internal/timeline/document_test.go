package timeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/retrieve"
)

// scriptedProvider returns a fixed response and counts calls.
type scriptedProvider struct {
	content string
	err     error
	calls   int
}

func (p *scriptedProvider) Name() string    { return "scripted" }
func (p *scriptedProvider) Available() bool { return true }

func (p *scriptedProvider) Generate(ctx context.Context, req brain.Request) (brain.Response, error) {
	p.calls++
	if p.err != nil {
		return brain.Response{}, p.err
	}
	return brain.Response{Content: p.content, Model: "scripted"}, nil
}

// fakeChunks is an in-memory ChunkSource.
type fakeChunks struct {
	chunks map[string][]model.Chunk
}

func (f *fakeChunks) GetChunks(documentID string) ([]model.Chunk, error) {
	chunks, ok := f.chunks[documentID]
	if !ok {
		return nil, fmt.Errorf("no document %s", documentID)
	}
	return chunks, nil
}

// newTestRetriever indexes the texts as one document. No embedder is
// wired, so retrieval exercises the lexical fallback deterministically.
func newTestRetriever(documentID string, texts []string) *retrieve.Retriever {
	chunks := make([]model.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = model.Chunk{DocumentID: documentID, Index: i, Text: text, Page: i + 1}
	}
	source := &fakeChunks{chunks: map[string][]model.Chunk{documentID: chunks}}
	return retrieve.NewRetriever(source, nil, 3)
}

func TestExtractDocumentEvents(t *testing.T) {
	provider := &scriptedProvider{content: `[
	  {"lap": 15, "type": "SC", "title": "Safety car", "description": "Safety car deployed after a crash at Mirabeau", "search_query": "safety car crash Mirabeau"},
	  {"lap": -3, "type": "BANANA", "description": "Unknown happenings"},
	  {"lap": 40, "event_type": "WEATHER", "title": "Rain arrives", "description": "Rain began to fall with fifteen laps to go", "search_query": "rain fall closing laps"}
	]`}
	retriever := newTestRetriever("doc-1", []string{
		"The safety car was deployed after a crash at Mirabeau on lap 15.",
		"Rain began to fall with fifteen laps to go, catching the leaders on slicks.",
	})

	events := extractDocumentEvents(context.Background(), provider, retriever, "doc-1", "full race report text", "2023 Monaco Grand Prix (RACE)")
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	sc := events[0]
	if sc.Kind != model.KindSafetyCar || sc.Lap != 15 {
		t.Errorf("expected SAFETY_CAR at lap 15, got %s at %d", sc.Kind, sc.Lap)
	}
	if len(sc.Citations) == 0 {
		t.Fatal("expected citations from the retriever")
	}
	if sc.Confidence != model.ConfidenceMedium {
		t.Errorf("cited document events are medium confidence, got %s", sc.Confidence)
	}
	if sc.Citations[0].ChunkID != "doc-1:0" {
		t.Errorf("expected the safety car chunk cited first, got %q", sc.Citations[0].ChunkID)
	}

	unknown := events[1]
	if unknown.Kind != model.KindInfo {
		t.Errorf("unknown tag should map to INFO, got %s", unknown.Kind)
	}
	if unknown.Lap != 0 {
		t.Errorf("negative lap should clamp to 0, got %d", unknown.Lap)
	}
	if unknown.Title != "Event" {
		t.Errorf("missing title should default, got %q", unknown.Title)
	}

	weather := events[2]
	if weather.Kind != model.KindWeather {
		t.Errorf("event_type fallback not honored, got %s", weather.Kind)
	}
}

func TestExtractDocumentEventsUncitedAreLowConfidence(t *testing.T) {
	provider := &scriptedProvider{content: `[
	  {"lap": 7, "type": "INCIDENT", "title": "Clash", "description": "Wheel-banging into turn one", "search_query": "zxqv nothing matches"}
	]`}
	retriever := newTestRetriever("doc-1", []string{"A completely unrelated paragraph about championship standings."})

	events := extractDocumentEvents(context.Background(), provider, retriever, "doc-1", "race text", "")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if len(events[0].Citations) != 0 {
		t.Errorf("expected no citations, got %d", len(events[0].Citations))
	}
	if events[0].Confidence != model.ConfidenceLow {
		t.Errorf("uncited document events are low confidence, got %s", events[0].Confidence)
	}
}

func TestExtractDocumentEventsMalformedJSON(t *testing.T) {
	provider := &scriptedProvider{content: "The race had several notable moments but I cannot list them as JSON."}

	events := extractDocumentEvents(context.Background(), provider, nil, "doc-1", "race text", "")
	if events != nil {
		t.Errorf("malformed response should yield no events, got %d", len(events))
	}
}

func TestExtractDocumentEventsProviderError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("model unavailable")}

	events := extractDocumentEvents(context.Background(), provider, nil, "doc-1", "race text", "")
	if events != nil {
		t.Errorf("provider failure should yield no events, got %d", len(events))
	}
}

func TestExtractDocumentEventsSkipsWithoutInput(t *testing.T) {
	provider := &scriptedProvider{content: "[]"}

	if events := extractDocumentEvents(context.Background(), nil, nil, "doc-1", "text", ""); events != nil {
		t.Errorf("nil provider should yield no events")
	}
	if events := extractDocumentEvents(context.Background(), provider, nil, "doc-1", "   ", ""); events != nil {
		t.Errorf("blank document should yield no events")
	}
	if provider.calls != 0 {
		t.Errorf("blank document must not reach the model, got %d calls", provider.calls)
	}
}

func TestExtractDocumentEventsMockProvider(t *testing.T) {
	// The canned mock response covers the whole tag vocabulary the
	// prompt asks for; the wire contract and the parser must agree.
	events := extractDocumentEvents(context.Background(), brain.NewMockProvider(), nil, "doc-1", "race report", "2023 Monaco Grand Prix (RACE)")
	if len(events) != 4 {
		t.Fatalf("expected 4 mock events, got %d", len(events))
	}

	wantKinds := []model.EventKind{
		model.KindIncident,
		model.KindSafetyCar,
		model.KindStrategyChange,
		model.KindPaceChange,
	}
	wantLaps := []int{1, 33, 34, 52}
	for i := range events {
		if events[i].Kind != wantKinds[i] {
			t.Errorf("event %d kind = %s, want %s", i, events[i].Kind, wantKinds[i])
		}
		if events[i].Lap != wantLaps[i] {
			t.Errorf("event %d lap = %d, want %d", i, events[i].Lap, wantLaps[i])
		}
	}
}
