package brain

import (
	"fmt"
	"strings"
)

// Prompt builders for the structured tasks the pipeline runs. Each returns
// a full Request so callers never assemble prompt text themselves. The
// document excerpt passed in should already be length-bounded by the caller.

const claimsSystemPrompt = `You are an expert Formula 1 analyst extracting factual claims from race documents.
Extract specific, verifiable claims about driver pace, strategy decisions,
tire compounds, pit stops, incidents, weather and technical issues.
For each claim state it clearly, identify its type, extract drivers, teams
and lap ranges when relevant, and estimate confidence (0-1) based on how
explicit the statement is.`

// ClaimsRequest asks for up to maxClaims structured claims from the excerpt.
func ClaimsRequest(excerpt string, maxClaims int) Request {
	user := fmt.Sprintf(`Extract up to %d claims from this document excerpt:

%s

Return JSON with this structure:
{
  "claims": [
    {
      "claim_text": "string",
      "claim_type": "pace|strategy|incident|tyres|pit_stop|driver_performance|team_radio|weather|technical|other",
      "drivers": ["name1"],
      "teams": ["team1"],
      "lap_start": 10,
      "lap_end": 25,
      "confidence": 0.85,
      "rationale": "why this is a credible claim"
    }
  ]
}`, maxClaims, excerpt)

	return Request{SystemPrompt: claimsSystemPrompt, UserPrompt: user, MaxTokens: 2000}
}

const sessionSystemPrompt = `You are an expert at extracting session metadata from F1 documents.
Extract the race year, the Grand Prix name and the session type.`

// SessionInfoRequest asks for year / GP name / session kind.
func SessionInfoRequest(excerpt string) Request {
	user := fmt.Sprintf(`Extract the session metadata from this document:

%s

Return JSON with this structure:
{
  "year": 2023,
  "gp_name": "Monaco Grand Prix",
  "session_type": "RACE"
}
Use "unknown" for any field the document does not state.`, excerpt)

	return Request{SystemPrompt: sessionSystemPrompt, UserPrompt: user, MaxTokens: 300}
}

const entitiesSystemPrompt = `You are an expert at extracting Formula 1 entities from text.
Extract every mention of drivers and teams, with car numbers where stated.`

// EntitiesRequest asks for the drivers and teams named in the text.
func EntitiesRequest(text string) Request {
	user := fmt.Sprintf(`Extract the drivers and teams from this text:

%s

Return JSON:
{
  "drivers": {"Max Verstappen": 1},
  "teams": ["Red Bull Racing"]
}`, text)

	return Request{SystemPrompt: entitiesSystemPrompt, UserPrompt: user, MaxTokens: 600}
}

const timelineSystemPrompt = `You are an F1 race analyst. Extract key timeline events from race documents.`

// TimelineEventsRequest asks for the document's key timeline events.
// Tags follow the short vocabulary the extractor maps onto the event
// taxonomy; anything unrecognized lands on INFO downstream.
func TimelineEventsRequest(excerpt, sessionContext string) Request {
	var b strings.Builder
	b.WriteString("Analyze this F1 race document and extract the KEY timeline events.\n")
	if sessionContext != "" {
		b.WriteString("\nSession context:\n")
		b.WriteString(sessionContext)
		b.WriteString("\n")
	}
	b.WriteString(`
For each event output:
- lap: lap number (integer, null if not mentioned)
- type: one of SC, VSC, RED, YELLOW, PIT, WEATHER, INCIDENT, PACE, INFO
- title: short title (5-10 words)
- description: detailed description (1-2 sentences)
- search_query: keywords to retrieve supporting passages

Document:
`)
	b.WriteString(excerpt)
	b.WriteString(`

Return a JSON array of events.`)

	return Request{SystemPrompt: timelineSystemPrompt, UserPrompt: b.String(), MaxTokens: 2000}
}

const verdictSystemPrompt = `You are an expert at connecting F1 race claims to objective data.
Given a claim and telemetry evidence (lap times, stints, race control messages),
determine whether the evidence supports, contradicts or is unclear about the claim.`

// VerdictRequest asks for a supported/contradicted/unclear verdict on a claim.
func VerdictRequest(claimText, evidenceData string) Request {
	user := fmt.Sprintf(`Evaluate this claim against the evidence and return a verdict.

Claim: %s

Telemetry evidence:
%s

Return JSON:
{
  "status": "supported|contradicted|unclear|insufficient_data",
  "confidence": 0.85,
  "rationale": "explanation"
}`, claimText, evidenceData)

	return Request{SystemPrompt: verdictSystemPrompt, UserPrompt: user, MaxTokens: 500}
}

const summarySystemPrompt = `You are an expert Formula 1 analyst writing executive summaries.
Highlight the significant race events, the strategic decisions and their
impact, driver performances and the moments that decided the race.
Keep it professional, factual and focused.`

// SummaryRequest asks for a 2-3 paragraph executive summary.
func SummaryRequest(claimsSummary, excerpt string) Request {
	user := fmt.Sprintf(`Write a 2-3 paragraph executive summary of this F1 race.

Key claims:
%s

Document excerpt:
%s`, claimsSummary, excerpt)

	return Request{SystemPrompt: summarySystemPrompt, UserPrompt: user, MaxTokens: 800}
}

// StoryRequest asks for a narrative retelling of the merged timeline in one
// of three registers: fan, analyst or newbie.
func StoryRequest(timelineText, style string) Request {
	var voice string
	switch style {
	case "analyst":
		voice = "Write for a professional strategist: precise, numbers-first, no hype."
	case "newbie":
		voice = "Write for someone watching their first race: explain terms like safety car and undercut as they come up."
	default:
		voice = "Write for a passionate fan: vivid and dramatic, but never invent facts."
	}

	user := fmt.Sprintf(`Tell the story of this race from its timeline. %s

Timeline:
%s`, voice, timelineText)

	return Request{SystemPrompt: summarySystemPrompt, UserPrompt: user, MaxTokens: 1200}
}

const actionItemsSystemPrompt = `You are an F1 race engineer turning uncertain findings into concrete next steps.`

// ActionItemsRequest asks for 2-3 action items derived from the least
// settled claims.
func ActionItemsRequest(claimLines string) Request {
	user := fmt.Sprintf(`These claims could not be settled confidently. Suggest 2-3 action items:

%s

Return JSON:
{
  "action_items": [
    {"issue": "what needs investigation", "likely_cause": "why it is unclear", "recommended_action": "what to do next"}
  ]
}`, claimLines)

	return Request{SystemPrompt: actionItemsSystemPrompt, UserPrompt: user, MaxTokens: 600}
}

const followUpSystemPrompt = `You are an expert Formula 1 strategist generating follow-up questions for deeper analysis.
Questions should be specific and testable against telemetry.`

// FollowUpsRequest asks for 3-5 follow-up questions on a race brief.
func FollowUpsRequest(summary, claimsSummary string) Request {
	user := fmt.Sprintf(`Generate 3-5 follow-up questions for this race brief:

Summary: %s

Claims: %s

Return a JSON array of strings, each a follow-up question.`, summary, claimsSummary)

	return Request{SystemPrompt: followUpSystemPrompt, UserPrompt: user, MaxTokens: 500}
}

const answerSystemPrompt = `You are an expert Formula 1 analyst. Answer strictly from the provided
document passages; say so when the passages do not contain the answer.`

// AnswerRequest asks a question grounded in retrieved passages.
func AnswerRequest(question string, passages []string) Request {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nPassages:\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, p)
	}
	return Request{SystemPrompt: answerSystemPrompt, UserPrompt: b.String(), MaxTokens: 800}
}
