package model

import "strings"

// SessionKind is the session taxonomy used when resolving a document to a
// remote session.
type SessionKind string

const (
	SessionRace       SessionKind = "RACE"
	SessionQualifying SessionKind = "QUALIFYING"
	SessionSprint     SessionKind = "SPRINT"
	SessionPractice1  SessionKind = "PRACTICE_1"
	SessionPractice2  SessionKind = "PRACTICE_2"
	SessionPractice3  SessionKind = "PRACTICE_3"
)

// ParseSessionKind normalizes external session labels ("Race", "QUALI",
// "Practice 2", ...) onto the taxonomy. Unknown labels default to RACE,
// matching what race documents overwhelmingly describe.
func ParseSessionKind(s string) SessionKind {
	switch t := strings.ToUpper(strings.TrimSpace(s)); {
	case t == "" || t == "UNKNOWN":
		return SessionRace
	case strings.Contains(t, "SPRINT"):
		return SessionSprint
	case strings.Contains(t, "QUALI"):
		return SessionQualifying
	case strings.Contains(t, "PRACTICE 1") || t == "FP1" || t == "PRACTICE_1":
		return SessionPractice1
	case strings.Contains(t, "PRACTICE 2") || t == "FP2" || t == "PRACTICE_2":
		return SessionPractice2
	case strings.Contains(t, "PRACTICE 3") || t == "FP3" || t == "PRACTICE_3":
		return SessionPractice3
	default:
		return SessionRace
	}
}

// MatchesLabel reports whether an API session label refers to this kind,
// case-insensitively ("Race" matches RACE, "Qualifying" matches
// QUALIFYING, "Practice 2" matches PRACTICE_2).
func (k SessionKind) MatchesLabel(label string) bool {
	t := strings.ToUpper(strings.TrimSpace(label))
	if t == "" {
		return false
	}
	switch k {
	case SessionRace:
		return t == "RACE" || t == "R"
	case SessionQualifying:
		return strings.Contains(t, "QUALI") && !strings.Contains(t, "SPRINT")
	case SessionSprint:
		return strings.Contains(t, "SPRINT") && !strings.Contains(t, "QUALI")
	case SessionPractice1:
		return t == "PRACTICE 1" || t == "FP1" || t == "PRACTICE_1"
	case SessionPractice2:
		return t == "PRACTICE 2" || t == "FP2" || t == "PRACTICE_2"
	case SessionPractice3:
		return t == "PRACTICE 3" || t == "FP3" || t == "PRACTICE_3"
	}
	return false
}

// SessionMetadata is the input triple a build starts from. EventName may
// be "unknown" when upstream extraction failed; the resolver fails fast
// on that.
type SessionMetadata struct {
	Year      int         `json:"year"`
	EventName string      `json:"event_name"`
	Kind      SessionKind `json:"session_kind"`
}

// EventNameKnown reports whether the event name is usable for resolution.
func (m SessionMetadata) EventNameKnown() bool {
	name := strings.TrimSpace(m.EventName)
	return name != "" && !strings.EqualFold(name, "unknown")
}

// SessionDescriptor identifies one resolved remote session. Resolved once
// per build and immutable afterward.
type SessionDescriptor struct {
	Year      int         `json:"year"`
	EventName string      `json:"event_name"`
	Kind      SessionKind `json:"session_kind"`
	SessionID string      `json:"session_id"`
	Location  string      `json:"location,omitempty"`
	Date      string      `json:"date,omitempty"`
}
