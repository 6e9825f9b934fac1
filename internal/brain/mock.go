package brain

import (
	"context"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/logging"
)

// MockProvider returns deterministic canned responses keyed off the prompt
// text. It backs offline mode and tests: every pipeline that talks to the
// LLM capability works end to end without a model running.
type MockProvider struct{}

// NewMockProvider creates a mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Available() bool { return true }

func (m *MockProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	prompt := strings.ToLower(req.SystemPrompt + "\n" + req.UserPrompt)
	logging.Debug("MockProvider.Generate", "prompt_length", len(prompt))

	content := mockContent(prompt)
	return Response{Content: content, Model: "mock", RawResponse: content}, nil
}

// mockContent routes most-specific marker first; several markers share
// substrings ("claim" appears inside the verdict and summary prompts too,
// so it is matched last).
func mockContent(prompt string) string {
	switch {
	case strings.Contains(prompt, "timeline events"):
		return mockTimelineEvents
	case strings.Contains(prompt, "verdict"):
		return mockVerdict
	case strings.Contains(prompt, "session metadata"):
		return mockSessionInfo
	case strings.Contains(prompt, "drivers and teams"):
		return mockEntities
	case strings.Contains(prompt, "action item"):
		return mockActionItems
	case strings.Contains(prompt, "passages:"):
		return mockAnswer
	case strings.Contains(prompt, "follow-up"), strings.Contains(prompt, "question"):
		return mockQuestions
	case strings.Contains(prompt, "story"), strings.Contains(prompt, "summary"):
		return mockSummary
	case strings.Contains(prompt, "claim"):
		return mockClaims
	}
	return "This is a mock response."
}

const mockTimelineEvents = `[
  {"lap": 1, "type": "INCIDENT", "title": "First-corner contact", "description": "Light contact at the first corner forced an early front wing change", "search_query": "first corner contact front wing"},
  {"lap": 33, "type": "SAFETY_CAR", "title": "Safety car deployed", "description": "Safety car deployed after a crash at the chicane", "search_query": "safety car crash chicane"},
  {"lap": 34, "type": "STRATEGY_CHANGE", "title": "Leaders pit under caution", "description": "The leading group pitted for hard tyres during the safety car window", "search_query": "pit stop hard tyres safety car"},
  {"lap": 52, "type": "PACE_CHANGE", "title": "Late charge", "description": "Fastest lap of the race set on fresher rubber in the closing stint", "search_query": "fastest lap closing stint"}
]`

const mockVerdict = `{"status": "unclear", "confidence": 0.6, "rationale": "The telemetry records neither confirm nor contradict the claim directly."}`

const mockSessionInfo = `{"year": 2023, "gp_name": "Monaco Grand Prix", "session_type": "RACE"}`

const mockEntities = `{"drivers": {"Max Verstappen": 1, "Fernando Alonso": 14, "Esteban Ocon": 31}, "teams": ["Red Bull Racing", "Aston Martin", "Alpine"]}`

const mockClaims = `{"claims": [
  {"claim_text": "The leader maintained consistent pace throughout the race", "claim_type": "pace", "drivers": ["Max Verstappen"], "teams": ["Red Bull Racing"], "lap_start": 1, "lap_end": 58, "confidence": 0.85, "rationale": "Consistent lap times reported across stints"},
  {"claim_text": "Strategic pit stop timing provided a track position advantage", "claim_type": "strategy", "drivers": ["Fernando Alonso"], "teams": ["Aston Martin"], "lap_start": 20, "lap_end": 30, "confidence": 0.75, "rationale": "Stop taken during the optimal window"}
]}`

const mockQuestions = `[
  "How would an alternative tyre strategy have affected the final outcome?",
  "What was the impact of safety car windows on pit stop timing?",
  "How did track evolution influence lap times in the final stint?"
]`

const mockActionItems = `{"action_items": [
  {"issue": "Pace claim lacks stint-by-stint corroboration", "likely_cause": "Lap data summarized only at race level", "recommended_action": "Pull per-stint lap times and compare medians"},
  {"issue": "Strategy advantage asserted without a rival baseline", "likely_cause": "Document covers only one team's pit wall", "recommended_action": "Fetch rival pit stop laps for the same window"}
]}`

const mockSummary = `The race was decided by tyre management and pit timing. An early incident compressed the field, the mid-race safety car opened a pit window the leaders took, and the final stint came down to managing degradation on hard tyres.`

const mockAnswer = `Based on the provided passages, the decisive factor was the mid-race safety car: the leaders pitted under caution and kept track position on fresher tyres.`
