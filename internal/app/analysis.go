package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/brief"
	"github.com/mateluky/f1-race-intelligence/internal/claims"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
)

const (
	askDefaultTopK    = 3
	askSnippetLimit   = 200
	askPassagesPrompt = 5
)

// ExtractMetadata runs session metadata extraction for a stored document
// and persists the result, so later builds skip re-extraction.
func (a *App) ExtractMetadata(ctx context.Context, documentID string) (claims.Detection, error) {
	doc, err := a.store.GetDocument(documentID)
	if err != nil {
		return claims.Detection{}, err
	}
	det, _ := a.extractAndPersist(ctx, doc)
	return det, nil
}

// ExtractClaims pulls verifiable claims out of one stored document
// without settling them against telemetry.
func (a *App) ExtractClaims(ctx context.Context, documentID string) ([]model.Claim, error) {
	doc, err := a.store.GetDocument(documentID)
	if err != nil {
		return nil, err
	}
	return claims.ExtractClaims(ctx, a.provider, doc.Text, 0), nil
}

// BuildTimeline reconstructs the race timeline for a stored document,
// extracting session metadata first when the document has none.
func (a *App) BuildTimeline(ctx context.Context, documentID string) (model.RaceTimeline, error) {
	return a.BuildTimelineWithHints(ctx, documentID, model.SessionMetadata{})
}

// BuildTimelineWithHints builds the timeline with caller-supplied session
// hints taking precedence over extracted metadata. Zero hint fields keep
// the extracted values.
func (a *App) BuildTimelineWithHints(ctx context.Context, documentID string, hints model.SessionMetadata) (model.RaceTimeline, error) {
	doc, err := a.documentWithMetadata(ctx, documentID)
	if err != nil {
		return model.RaceTimeline{}, err
	}
	meta := doc.Metadata
	if hints.Year != 0 {
		meta.Year = hints.Year
	}
	if hints.EventName != "" {
		meta.EventName = hints.EventName
	}
	if hints.Kind != "" {
		meta.Kind = hints.Kind
	}
	return a.timeline.Build(ctx, doc.ID, doc.Text, meta), nil
}

// BuildBrief runs the full analysis pipeline for a stored document.
func (a *App) BuildBrief(ctx context.Context, documentID string) (brief.Brief, error) {
	doc, err := a.documentWithMetadata(ctx, documentID)
	if err != nil {
		return brief.Brief{}, err
	}
	return a.briefs.BuildBrief(ctx, doc)
}

// Story builds the document's timeline and narrates it in the requested
// style (fan, analyst or newbie).
func (a *App) Story(ctx context.Context, documentID, style string) (string, error) {
	tl, err := a.BuildTimeline(ctx, documentID)
	if err != nil {
		return "", err
	}
	if !tl.Diagnostics.SessionFound && len(tl.Events) == 0 {
		return "", fmt.Errorf("no timeline to narrate: %s", tl.Diagnostics.FailureReason)
	}
	return a.briefs.Story(ctx, tl, style)
}

// Answer is a retrieval-grounded response to a question about one
// document.
type Answer struct {
	Question string           `json:"question"`
	Answer   string           `json:"answer"`
	Sources  []model.Citation `json:"sources"`
}

// Ask answers a question strictly from the document's retrieved passages.
// topK <= 0 retrieves the default three.
func (a *App) Ask(ctx context.Context, documentID, question string, topK int) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, errors.New("question is empty")
	}
	if a.provider == nil {
		return Answer{}, errors.New("answering requires a language model capability")
	}
	if topK <= 0 {
		topK = askDefaultTopK
	}

	results, err := a.retriever.Retrieve(ctx, question, documentID, topK)
	if err != nil {
		return Answer{}, err
	}

	ans := Answer{Question: question}
	if len(results) == 0 {
		ans.Answer = "The document contains no passages relevant to this question."
		return ans, nil
	}

	passages := make([]string, 0, len(results))
	for i, res := range results {
		if i == askPassagesPrompt {
			break
		}
		passages = append(passages, res.Chunk.Text)
	}

	resp, err := a.provider.Generate(ctx, brain.AnswerRequest(question, passages))
	if err != nil {
		return Answer{}, fmt.Errorf("answer generation: %w", err)
	}
	ans.Answer = strings.TrimSpace(resp.Content)

	for _, res := range results {
		snippet := res.Chunk.Text
		if len(snippet) > askSnippetLimit {
			snippet = snippet[:askSnippetLimit]
		}
		ans.Sources = append(ans.Sources, model.Citation{
			ChunkID: res.Chunk.ChunkID(),
			Snippet: snippet,
			Score:   res.Score,
			Page:    res.Chunk.Page,
		})
	}
	return ans, nil
}

// Sessions searches remote sessions; an empty name lists the whole year.
func (a *App) Sessions(ctx context.Context, year int, name, kind string) []openf1.Record {
	return a.telemetry.SearchSessions(ctx, year, name, kind)
}

// Health reports which capabilities are live.
type Health struct {
	Status        string `json:"status"`
	TelemetryMode string `json:"telemetry_mode"`
	LLMProvider   string `json:"llm_provider"`
	LLMReady      bool   `json:"llm_available"`
	EmbedderReady bool   `json:"embedder_available"`
	Documents     int    `json:"documents"`
}

// Health returns the capability status snapshot.
func (a *App) Health(ctx context.Context) Health {
	h := Health{
		Status:        "ok",
		TelemetryMode: a.cfg.OpenF1.Mode,
	}
	if a.provider != nil {
		h.LLMProvider = a.provider.Name()
		h.LLMReady = a.provider.Available()
	}
	if a.embedder != nil {
		h.EmbedderReady = a.embedder.Available()
	}
	if count, err := a.store.DocumentCount(); err == nil {
		h.Documents = count
	}
	return h
}

// documentWithMetadata loads a document and guarantees usable session
// metadata, extracting and persisting it on first need.
func (a *App) documentWithMetadata(ctx context.Context, documentID string) (model.Document, error) {
	doc, err := a.store.GetDocument(documentID)
	if err != nil {
		return model.Document{}, err
	}
	if !doc.Metadata.EventNameKnown() {
		_, doc = a.extractAndPersist(ctx, doc)
	}
	return doc, nil
}

func (a *App) extractAndPersist(ctx context.Context, doc model.Document) (claims.Detection, model.Document) {
	chunks, err := a.store.GetChunks(doc.ID)
	if err != nil {
		logging.Warn("chunks unavailable for metadata extraction", "document", doc.ID, "error", err)
	}

	det := a.metadata.Extract(ctx, doc.Name, doc.Text, chunks)
	doc.Metadata = det.Metadata
	if err := a.store.UpdateDocumentMetadata(doc.ID, det.Metadata); err != nil {
		logging.Warn("failed to persist extracted metadata", "document", doc.ID, "error", err)
	}
	logging.Info("session metadata extracted",
		"document", doc.ID, "year", det.Metadata.Year,
		"event", det.Metadata.EventName, "path", det.Path)
	return det, doc
}
