package brief

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
)

const (
	actionItemClaimLimit  = 3
	maxSuggestedQuestions = 5

	confidenceHighFloor   = 0.75
	confidenceMediumFloor = 0.5
	sourceSupportWeight   = 0.5
)

// ActionItems turns unsettled claims into concrete next steps. Unclear
// claims are the priority; when every claim settled cleanly the top
// claims by confidence get a once-over instead. The LLM proposes the
// items; a status-derived checklist covers provider failures.
func (b *Builder) ActionItems(ctx context.Context, settled []model.Claim) []ActionItem {
	if len(settled) == 0 {
		return nil
	}

	targets := make([]model.Claim, 0, len(settled))
	for _, c := range settled {
		if c.Status == model.ClaimUnclear {
			targets = append(targets, c)
		}
	}
	if len(targets) == 0 {
		targets = append(targets, settled...)
		sort.SliceStable(targets, func(i, j int) bool { return targets[i].Confidence > targets[j].Confidence })
	}
	if len(targets) > actionItemClaimLimit {
		targets = targets[:actionItemClaimLimit]
	}

	lines := make([]string, 0, len(targets))
	for _, c := range targets {
		lines = append(lines, "- "+c.Text)
	}

	var parsed struct {
		ActionItems []ActionItem `json:"action_items"`
	}
	err := brain.ExtractJSON(ctx, b.provider, brain.ActionItemsRequest(strings.Join(lines, "\n")), &parsed)
	if err != nil || len(parsed.ActionItems) == 0 {
		logging.Warn("action item generation failed, using status checklist", "error", err)
		return heuristicActionItems(settled)
	}
	return parsed.ActionItems
}

// heuristicActionItems derives a checklist from claim statuses alone.
func heuristicActionItems(settled []model.Claim) []ActionItem {
	stats := model.TallyClaims(settled)

	var items []ActionItem
	if stats.Contradicted > 0 {
		items = append(items, ActionItem{
			Issue:             fmt.Sprintf("%d claim(s) contradicted by telemetry", stats.Contradicted),
			LikelyCause:       "The document narrative disagrees with recorded session data.",
			RecommendedAction: "Re-read the cited passages and prefer the telemetry values.",
		})
	}
	if stats.InsufficientData > 0 {
		items = append(items, ActionItem{
			Issue:             fmt.Sprintf("%d claim(s) had no usable telemetry", stats.InsufficientData),
			LikelyCause:       "The session did not resolve or the claim maps to no collection.",
			RecommendedAction: "Check the session metadata and rebuild the brief.",
		})
	}
	if stats.Unclear > 0 {
		items = append(items, ActionItem{
			Issue:             fmt.Sprintf("%d claim(s) remain unclear", stats.Unclear),
			LikelyCause:       "The gathered evidence neither confirms nor contradicts them.",
			RecommendedAction: "Review the attached evidence records manually.",
		})
	}
	return items
}

// AutoQuestions suggests questions from the event kinds the timeline
// actually contains, each tagged with the source likely to answer it.
func AutoQuestions(tl model.RaceTimeline) []SuggestedQuestion {
	counts := tl.EventCounts

	var out []SuggestedQuestion
	add := func(question, source, why string) {
		out = append(out, SuggestedQuestion{Question: question, SuggestedEvidence: source, WhyRelevant: why})
	}

	if counts[model.KindRedFlag] > 0 {
		add("What triggered the red flag and who gained from the restart?",
			"pdf",
			"Stoppages reset tyre choices and erase built-up gaps.")
	}
	if counts[model.KindSafetyCar]+counts[model.KindVirtualSafetyCar] > 0 {
		add("How did the caution periods reshape the pit strategies?",
			"both",
			"Safety cars bunch the field and open cheap pit windows.")
	}
	if counts[model.KindPitStop] > 0 {
		add("Which driver gained the most from pit stop timing?",
			"openf1",
			"Out-lap pace against rivals shows who won the pit cycle.")
	}
	if counts[model.KindWeather] > 0 {
		add("How did the weather change relative pace at the front?",
			"both",
			"Rain transitions reorder teams by tyre call quality.")
	}
	if counts[model.KindOvertake]+counts[model.KindPositionChange] > 0 {
		add("Which on-track passes decided the final order?",
			"openf1",
			"Position traces separate pit-cycle swaps from genuine overtakes.")
	}
	if len(tl.Events) > 0 {
		add("Does the document's narrative match the telemetry timeline?",
			"both",
			"Cross-checking both sources exposes embellished reporting.")
	}

	if len(out) > maxSuggestedQuestions {
		out = out[:maxSuggestedQuestions]
	}
	return out
}

// ConfidenceBreakdown scores each claim's support per source. Each
// citation or evidence record contributes a half point; the combined
// score averages the two and caps at one.
func ConfidenceBreakdown(settled []model.Claim) []ClaimConfidence {
	if len(settled) == 0 {
		return nil
	}

	out := make([]ClaimConfidence, 0, len(settled))
	for _, c := range settled {
		docScore := sourceSupportWeight * float64(len(c.Citations))
		telScore := sourceSupportWeight * float64(len(c.Evidence))
		combined := (docScore + telScore) / 2
		if combined > 1 {
			combined = 1
		}

		level := "Low"
		switch {
		case c.Confidence >= confidenceHighFloor:
			level = "High"
		case c.Confidence >= confidenceMediumFloor:
			level = "Medium"
		}

		out = append(out, ClaimConfidence{
			ClaimID:        c.ID,
			Text:           c.Text,
			DocumentScore:  round2(docScore),
			TelemetryScore: round2(telScore),
			Combined:       round2(combined),
			Level:          level,
			Rationale:      c.Rationale,
		})
	}
	return out
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
