// Package brief turns one ingested document into a race intelligence
// brief: extracted claims settled against telemetry, the merged
// timeline, an executive summary, and the follow-up material an analyst
// would ask for next. Everything degrades gracefully: a missing
// capability drops its section, never the whole brief.
package brief

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/claims"
	"github.com/mateluky/f1-race-intelligence/internal/evidence"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
	"github.com/mateluky/f1-race-intelligence/internal/retrieve"
	"github.com/mateluky/f1-race-intelligence/internal/timeline"
)

const (
	summaryClaimLimit    = 5
	summaryExcerptLimit  = 2000
	followUpSummaryLimit = 500
	followUpClaimLimit   = 3
	claimSnippetLimit    = 50
	claimCitationLimit   = 3
	citationSnippetLimit = 200
)

// ActionItem is one concrete follow-up task derived from claims the
// evidence could not settle.
type ActionItem struct {
	Issue             string `json:"issue"`
	LikelyCause       string `json:"likely_cause"`
	RecommendedAction string `json:"recommended_action"`
}

// SuggestedQuestion is an auto-generated question with a hint about
// which source would answer it.
type SuggestedQuestion struct {
	Question          string `json:"question"`
	SuggestedEvidence string `json:"suggested_evidence"` // "pdf", "openf1" or "both"
	WhyRelevant       string `json:"why_relevant"`
}

// ClaimConfidence scores one claim's support across both sources.
type ClaimConfidence struct {
	ClaimID        string  `json:"claim_id"`
	Text           string  `json:"claim_text"`
	DocumentScore  float64 `json:"document_support_score"`
	TelemetryScore float64 `json:"telemetry_support_score"`
	Combined       float64 `json:"combined_score"`
	Level          string  `json:"confidence_level"`
	Rationale      string  `json:"rationale,omitempty"`
}

// Brief is the full analysis product for one document.
type Brief struct {
	ID               string                  `json:"id"`
	DocumentID       string                  `json:"document_id"`
	Session          model.SessionDescriptor `json:"session"`
	ExecutiveSummary string                  `json:"executive_summary"`
	Entities         model.Entities          `json:"entities"`
	Claims           []model.Claim           `json:"extracted_claims"`
	Stats            model.ClaimStats        `json:"claim_stats"`
	Timeline         model.RaceTimeline      `json:"timeline"`
	FollowUps        []string                `json:"follow_up_questions"`
	ActionItems      []ActionItem            `json:"action_items,omitempty"`
	Questions        []SuggestedQuestion     `json:"suggested_questions,omitempty"`
	Confidence       []ClaimConfidence       `json:"confidence_breakdown,omitempty"`
	GeneratedAt      time.Time               `json:"generated_at"`
}

// Builder orchestrates brief generation. One instance serves all
// documents; each BuildBrief call is independent.
type Builder struct {
	provider  brain.Provider
	retriever *retrieve.Retriever
	timeline  *timeline.Builder
	evidence  *evidence.Mapper
	maxClaims int
}

// NewBuilder wires the brief pipeline. maxClaims <= 0 uses the
// extraction default.
func NewBuilder(provider brain.Provider, telemetry openf1.Client, retriever *retrieve.Retriever, tb *timeline.Builder, maxClaims int) *Builder {
	return &Builder{
		provider:  provider,
		retriever: retriever,
		timeline:  tb,
		evidence:  evidence.NewMapper(provider, telemetry),
		maxClaims: maxClaims,
	}
}

// BuildBrief runs the full pipeline: entities and claims from the
// document, the merged timeline (which resolves the session once),
// evidence settlement per claim, then summary, follow-ups, action
// items, suggested questions and the confidence breakdown.
func (b *Builder) BuildBrief(ctx context.Context, doc model.Document) (Brief, error) {
	if b.provider == nil {
		return Brief{}, errors.New("brief generation requires a language model capability")
	}
	text := doc.Text
	if strings.TrimSpace(text) == "" {
		return Brief{}, fmt.Errorf("document %s has no text", doc.ID)
	}

	logging.Info("building race brief", "document", doc.ID)

	entities := claims.ExtractEntities(ctx, b.provider, text)
	extracted := claims.ExtractClaims(ctx, b.provider, text, b.maxClaims)

	tl := b.timeline.Build(ctx, doc.ID, text, doc.Metadata)

	plan := evidence.PlanRetrieval(extracted)
	for i := range extracted {
		extracted[i] = b.evidence.Settle(ctx, tl.Diagnostics.SessionID, extracted[i], plan[extracted[i].ID])
		b.attachCitations(ctx, &extracted[i], doc.ID)
	}

	stats := model.TallyClaims(extracted)
	summary := b.summarize(ctx, extracted, text)
	followUps := b.followUps(ctx, summary, extracted)

	brief := Brief{
		ID:               uuid.NewString(),
		DocumentID:       doc.ID,
		Session:          tl.Session,
		ExecutiveSummary: summary,
		Entities:         entities,
		Claims:           extracted,
		Stats:            stats,
		Timeline:         tl,
		FollowUps:        followUps,
		ActionItems:      b.ActionItems(ctx, extracted),
		Questions:        AutoQuestions(tl),
		Confidence:       ConfidenceBreakdown(extracted),
		GeneratedAt:      time.Now().UTC(),
	}

	logging.Info("race brief complete",
		"document", doc.ID, "claims", stats.Total,
		"supported", stats.Supported, "contradicted", stats.Contradicted,
		"timeline_events", len(tl.Events))
	return brief, nil
}

// attachCitations anchors a settled claim back into the document via
// the claim-expanded retrieval search.
func (b *Builder) attachCitations(ctx context.Context, claim *model.Claim, documentID string) {
	if b.retriever == nil {
		return
	}
	results, err := b.retriever.RetrieveForClaim(ctx, *claim, documentID)
	if err != nil {
		logging.Debug("claim citation retrieval failed", "claim_id", claim.ID, "error", err)
		return
	}
	if len(results) > claimCitationLimit {
		results = results[:claimCitationLimit]
	}
	for _, res := range results {
		snippet := res.Chunk.Text
		if len(snippet) > citationSnippetLimit {
			snippet = snippet[:citationSnippetLimit]
		}
		claim.Citations = append(claim.Citations, model.Citation{
			ChunkID: res.Chunk.ChunkID(),
			Snippet: snippet,
			Score:   res.Score,
			Page:    res.Chunk.Page,
		})
	}
}

func (b *Builder) summarize(ctx context.Context, settled []model.Claim, text string) string {
	excerpt := text
	if len(excerpt) > summaryExcerptLimit {
		excerpt = excerpt[:summaryExcerptLimit]
	}

	resp, err := b.provider.Generate(ctx, brain.SummaryRequest(claimLines(settled, summaryClaimLimit), excerpt))
	if err != nil {
		logging.Error("summary generation failed", "error", err)
		return "Summary generation failed."
	}
	return strings.TrimSpace(resp.Content)
}

func (b *Builder) followUps(ctx context.Context, summary string, settled []model.Claim) []string {
	if len(summary) > followUpSummaryLimit {
		summary = summary[:followUpSummaryLimit]
	}
	var snippets []string
	for i, c := range settled {
		if i == followUpClaimLimit {
			break
		}
		snippets = append(snippets, clip(c.Text, claimSnippetLimit)+"...")
	}

	var questions []string
	req := brain.FollowUpsRequest(summary, strings.Join(snippets, ", "))
	if err := brain.ExtractJSON(ctx, b.provider, req, &questions); err != nil || len(questions) == 0 {
		logging.Warn("follow-up generation failed, using defaults", "error", err)
		return []string{
			"What external factors influenced the race outcome?",
			"How could different strategic decisions have changed the result?",
		}
	}
	return questions
}

// claimLines renders the top claims as prompt bullet points.
func claimLines(settled []model.Claim, limit int) string {
	var lines []string
	for i, c := range settled {
		if i == limit {
			break
		}
		lines = append(lines, fmt.Sprintf("- %s (%s, confidence=%.2f)", c.Text, c.Type, c.Confidence))
	}
	return strings.Join(lines, "\n")
}

// clip truncates to n runes.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
