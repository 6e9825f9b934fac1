package timeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// mergeKeyPrefixLen bounds the description part of the merge key. Two
// events describing the same moment in slightly different words still
// collide; two genuinely different same-lap same-kind events do not.
// Near-duplicates that diverge only past this prefix will not merge;
// accepted behavior, not worth a fuzzier key.
const mergeKeyPrefixLen = 50

func mergeKey(e *model.TimelineEvent) string {
	return fmt.Sprintf("%d|%s|%s", e.Lap, e.Kind, descriptionPrefix(e.Description))
}

func descriptionPrefix(description string) string {
	s := []rune(strings.TrimSpace(strings.ToLower(description)))
	if len(s) > mergeKeyPrefixLen {
		s = s[:mergeKeyPrefixLen]
	}
	return string(s)
}

// mergeEvents deduplicates telemetry and document events into one
// timeline. Telemetry events insert first and are authoritative: a
// colliding document event contributes its citations and confidence but
// never overwrites the telemetry wording. Document events with new keys
// enter as-is. The union/better-confidence collision rule is symmetric,
// so the outcome does not depend on which side of a collision arrived
// first.
func mergeEvents(telemetry, document []model.TimelineEvent) []model.TimelineEvent {
	merged := make(map[string]*model.TimelineEvent, len(telemetry)+len(document))
	var order []string

	insert := func(e model.TimelineEvent) {
		key := mergeKey(&e)
		existing, ok := merged[key]
		if !ok {
			clone := e
			merged[key] = &clone
			order = append(order, key)
			return
		}
		existing.Citations = append(existing.Citations, e.Citations...)
		existing.Evidence = append(existing.Evidence, e.Evidence...)
		existing.AddParticipants(e.Participants...)
		existing.Confidence = model.BetterConfidence(existing.Confidence, e.Confidence)
		if existing.Timestamp == "" {
			existing.Timestamp = e.Timestamp
		}
	}

	for _, e := range telemetry {
		insert(e)
	}
	for _, e := range document {
		insert(e)
	}

	out := make([]model.TimelineEvent, 0, len(order))
	for _, key := range order {
		out = append(out, *merged[key])
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.SortLap() != b.SortLap() {
			return a.SortLap() < b.SortLap()
		}
		return a.Kind < b.Kind
	})
	return out
}
