package timeline

import (
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// controlRule pairs a predicate with the kind it classifies. Rules are
// evaluated top to bottom, first match wins; the slice order IS the
// priority order (a message carrying both "red flag" and "yellow flag"
// is a red flag).
type controlRule struct {
	kind  model.EventKind
	match func(string) bool
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

var controlRules = []controlRule{
	{model.KindRedFlag, func(t string) bool {
		return strings.Contains(t, "red flag")
	}},
	{model.KindSafetyCar, func(t string) bool {
		return strings.Contains(t, "safety car") && !strings.Contains(t, "virtual")
	}},
	{model.KindVirtualSafetyCar, func(t string) bool {
		return strings.Contains(t, "virtual safety car") || strings.Contains(t, "vsc")
	}},
	{model.KindYellowFlag, func(t string) bool {
		return strings.Contains(t, "yellow flag") ||
			(strings.Contains(t, "yellow") && strings.Contains(t, "flag"))
	}},
	{model.KindWeather, func(t string) bool {
		return containsAny(t, "rain", "wet", "track conditions", "weather")
	}},
	{model.KindIncident, func(t string) bool {
		return containsAny(t, "incident", "collision", "crash", "off track", "debris", "investigation", "penalty")
	}},
}

// infoAllowList keeps the rule-relevant announcements; everything else
// classified INFO is routine chatter and dropped.
var infoAllowList = []string{
	"pit lane open",
	"pit lane closed",
	"green light",
	"grid penalty",
	"tyre rule",
}

// classifyControlMessage maps a race-control message onto the event
// taxonomy. The second return is false when the message should be
// dropped (INFO without an allow-listed phrase).
func classifyControlMessage(message string) (model.EventKind, bool) {
	text := strings.ToLower(message)

	for _, rule := range controlRules {
		if rule.match(text) {
			return rule.kind, true
		}
	}
	return model.KindInfo, containsAny(text, infoAllowList...)
}
