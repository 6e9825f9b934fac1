package timeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/retrieve"
)

const (
	documentExcerptLimit = 4000
	citationsPerEvent    = 3
	citationSnippetLimit = 200
)

// docEvent is the wire shape the extraction prompt asks for. "type" is
// the current contract; "event_type" is accepted for models that echo
// the older field name.
type docEvent struct {
	Lap         int    `json:"lap"`
	Type        string `json:"type"`
	EventType   string `json:"event_type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SearchQuery string `json:"search_query"`
}

// extractDocumentEvents asks the LLM for the document's key events and
// anchors each to the document through retrieval citations. Malformed
// LLM output yields zero events; the telemetry half of the build is
// never blocked by it.
func extractDocumentEvents(ctx context.Context, provider brain.Provider, retriever *retrieve.Retriever, documentID, documentText, sessionContext string) []model.TimelineEvent {
	if provider == nil || strings.TrimSpace(documentText) == "" {
		return nil
	}

	excerpt := documentText
	if len(excerpt) > documentExcerptLimit {
		excerpt = excerpt[:documentExcerptLimit]
	}

	req := brain.TimelineEventsRequest(excerpt, sessionContext)
	resp, err := provider.Generate(ctx, req)
	if err != nil {
		logging.Error("document event extraction failed", "error", err)
		return nil
	}

	var raw []docEvent
	cleaned := brain.CleanJSONText(resp.Content)
	if cleaned == "" || json.Unmarshal([]byte(cleaned), &raw) != nil {
		logging.Warn("document event response was not a JSON array",
			"provider", provider.Name(), "length", len(resp.Content))
		return nil
	}

	events := make([]model.TimelineEvent, 0, len(raw))
	for _, de := range raw {
		tag := de.Type
		if tag == "" {
			tag = de.EventType
		}

		title := strings.TrimSpace(de.Title)
		if title == "" {
			title = "Event"
		}
		query := strings.TrimSpace(de.SearchQuery)
		if query == "" {
			query = de.Description
		}
		lap := de.Lap
		if lap < 0 {
			lap = 0
		}

		event := model.TimelineEvent{
			Lap:         lap,
			Kind:        model.ParseEventKind(tag),
			Title:       title,
			Description: strings.TrimSpace(de.Description),
			Citations:   citationsFor(ctx, retriever, documentID, query),
			Confidence:  model.ConfidenceLow,
		}
		if len(event.Citations) > 0 {
			event.Confidence = model.ConfidenceMedium
		}
		events = append(events, event)
	}

	logging.Info("document events extracted", "document_id", documentID, "events", len(events))
	return events
}

// citationsFor runs the event's search phrase through the retriever and
// converts the top hits into citations.
func citationsFor(ctx context.Context, retriever *retrieve.Retriever, documentID, query string) []model.Citation {
	if retriever == nil || strings.TrimSpace(query) == "" {
		return nil
	}

	results, err := retriever.Retrieve(ctx, query, documentID, citationsPerEvent)
	if err != nil {
		logging.Warn("citation retrieval failed", "document_id", documentID, "error", err)
		return nil
	}

	citations := make([]model.Citation, 0, len(results))
	for _, res := range results {
		snippet := res.Chunk.Text
		if len(snippet) > citationSnippetLimit {
			snippet = snippet[:citationSnippetLimit]
		}
		citations = append(citations, model.Citation{
			ChunkID: res.Chunk.ChunkID(),
			Snippet: snippet,
			Score:   res.Score,
			Page:    res.Chunk.Page,
		})
	}
	return citations
}
