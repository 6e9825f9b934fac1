package brief

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// Narration styles. Unknown styles fall back to StyleFan.
const (
	StyleFan     = "fan"
	StyleAnalyst = "analyst"
	StyleNewbie  = "newbie"
)

const storyEventLimit = 40

// Story narrates a built timeline in the requested style.
func (b *Builder) Story(ctx context.Context, tl model.RaceTimeline, style string) (string, error) {
	if b.provider == nil {
		return "", errors.New("story generation requires a language model capability")
	}
	switch style {
	case StyleFan, StyleAnalyst, StyleNewbie:
	default:
		style = StyleFan
	}

	text := timelineText(tl)
	if text == "" {
		return "", errors.New("timeline has no events to narrate")
	}

	resp, err := b.provider.Generate(ctx, brain.StoryRequest(text, style))
	if err != nil {
		return "", fmt.Errorf("story generation: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

// timelineText flattens the timeline into prompt lines. Long races get
// truncated; forty events is plenty of material for a narration.
func timelineText(tl model.RaceTimeline) string {
	var sb strings.Builder
	for i := range tl.Events {
		if i == storyEventLimit {
			fmt.Fprintf(&sb, "... and %d more events\n", len(tl.Events)-i)
			break
		}
		e := &tl.Events[i]
		if e.Lap > 0 && e.Lap != model.SessionEndLap {
			fmt.Fprintf(&sb, "Lap %d [%s] %s", e.Lap, e.Kind.DisplayName(), e.Description)
		} else {
			fmt.Fprintf(&sb, "[%s] %s", e.Kind.DisplayName(), e.Description)
		}
		if e.ImpactSummary != "" {
			sb.WriteString(" | " + e.ImpactSummary)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
