// Package model holds the domain types shared across the pipeline and the
// SQLite document store behind them.
//
// The timeline types follow one rule everywhere: an event is only as good
// as its provenance. Every TimelineEvent carries document citations,
// telemetry evidence, or both; events with neither never reach a caller.
package model

import (
	"sort"
	"strings"
)

// EventKind is the closed taxonomy for timeline events. External tags
// (LLM output, API payloads) are mapped through ParseEventKind and never
// flow past that boundary as free text.
type EventKind string

const (
	KindSafetyCar        EventKind = "SAFETY_CAR"
	KindVirtualSafetyCar EventKind = "VIRTUAL_SAFETY_CAR"
	KindRedFlag          EventKind = "RED_FLAG"
	KindYellowFlag       EventKind = "YELLOW_FLAG"
	KindPitStop          EventKind = "PIT_STOP"
	KindStrategyChange   EventKind = "STRATEGY_CHANGE"
	KindWeather          EventKind = "WEATHER"
	KindIncident         EventKind = "INCIDENT"
	KindPaceChange       EventKind = "PACE_CHANGE"
	KindOvertake         EventKind = "OVERTAKE"
	KindPositionChange   EventKind = "POSITION_CHANGE"
	KindStartingGrid     EventKind = "STARTING_GRID"
	KindSessionResult    EventKind = "SESSION_RESULT"
	KindInfo             EventKind = "INFO"
)

// ParseEventKind maps an external tag onto the taxonomy. Both the short
// tags the extraction prompt uses (SC, VSC, RED, ...) and full kind names
// are accepted; anything else coerces to INFO.
func ParseEventKind(tag string) EventKind {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "SC", "SAFETY_CAR", "SAFETY CAR":
		return KindSafetyCar
	case "VSC", "VIRTUAL_SAFETY_CAR", "VIRTUAL SAFETY CAR":
		return KindVirtualSafetyCar
	case "RED", "RED_FLAG", "RED FLAG":
		return KindRedFlag
	case "YELLOW", "YELLOW_FLAG", "YELLOW FLAG":
		return KindYellowFlag
	case "PIT", "PIT_STOP", "PIT STOP":
		return KindPitStop
	case "STRATEGY", "STRATEGY_CHANGE":
		return KindStrategyChange
	case "WEATHER":
		return KindWeather
	case "INCIDENT":
		return KindIncident
	case "PACE", "PACE_CHANGE":
		return KindPaceChange
	case "OVERTAKE":
		return KindOvertake
	case "POSITION", "POSITION_CHANGE":
		return KindPositionChange
	case "GRID", "STARTING_GRID":
		return KindStartingGrid
	case "RESULT", "SESSION_RESULT":
		return KindSessionResult
	default:
		return KindInfo
	}
}

// DisplayName returns the human form of a kind ("SAFETY_CAR" ->
// "Safety Car") for titles and UI badges.
func (k EventKind) DisplayName() string {
	words := strings.Split(string(k), "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = w[:1] + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// Confidence grades how well an event is backed. Telemetry-sourced events
// are High; document events are Medium with citations, Low without.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// BetterConfidence returns the stronger of the two grades.
func BetterConfidence(a, b Confidence) Confidence {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// SessionEndLap is the sentinel lap for end-of-session events (the race
// result summary) so they sort after every real lap. Events with no lap
// context carry Lap 0 and sort after numbered laps but before this.
const SessionEndLap = 999999

// Citation points into the source document: the chunk that supports an
// event, with its retrieval score.
type Citation struct {
	ChunkID string  `json:"chunk_id"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
	Page    int     `json:"page,omitempty"`
}

// Evidence points into telemetry data: the raw record that supports an
// event, tagged with the collection it came from.
type Evidence struct {
	Kind    string         `json:"kind"`
	ID      string         `json:"id,omitempty"`
	Snippet string         `json:"snippet"`
	Raw     map[string]any `json:"raw,omitempty"`
}

// TimelineEvent is the canonical unit of the merged timeline.
type TimelineEvent struct {
	Lap           int        `json:"lap,omitempty"`
	Timestamp     string     `json:"timestamp,omitempty"`
	Kind          EventKind  `json:"event_kind"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Citations     []Citation `json:"document_citations,omitempty"`
	Evidence      []Evidence `json:"telemetry_evidence,omitempty"`
	Participants  []string   `json:"impacted_participants,omitempty"`
	ImpactSummary string     `json:"impact_summary,omitempty"`
	Confidence    Confidence `json:"confidence_level"`
}

// HasProvenance reports whether the event is backed by at least one
// citation or evidence record.
func (e *TimelineEvent) HasProvenance() bool {
	return len(e.Citations) > 0 || len(e.Evidence) > 0
}

// SortLap is the ordering key for the merged timeline: numbered laps
// first, lap-less events next, the session-end sentinel last.
func (e *TimelineEvent) SortLap() int {
	switch e.Lap {
	case 0:
		return SessionEndLap - 1
	case SessionEndLap:
		return SessionEndLap
	default:
		return e.Lap
	}
}

// AddParticipants merges names into the participant set, keeping it
// sorted and deduplicated.
func (e *TimelineEvent) AddParticipants(names ...string) {
	seen := make(map[string]bool, len(e.Participants)+len(names))
	for _, n := range e.Participants {
		seen[n] = true
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		e.Participants = append(e.Participants, n)
	}
	sort.Strings(e.Participants)
}

// Diagnostics explains how a build went so a caller can tell "no events
// happened" from "resolution failed". It always accompanies a timeline.
type Diagnostics struct {
	SessionFound    bool           `json:"session_found"`
	ResolvedYear    int            `json:"resolved_year,omitempty"`
	ResolvedEvent   string         `json:"resolved_event,omitempty"`
	SessionID       string         `json:"session_id,omitempty"`
	FailureReason   string         `json:"failure_reason,omitempty"`
	FetchCounts     map[string]int `json:"fetch_counts,omitempty"`
	AvailableEvents []string       `json:"available_events,omitempty"`
	DocumentEvents  int            `json:"document_events"`
	TelemetryEvents int            `json:"telemetry_events"`
	MergedEvents    int            `json:"merged_events"`
}

// RaceTimeline is the aggregate a build returns: ordered events plus
// summary rollups and diagnostics. Every build recomputes it from scratch.
type RaceTimeline struct {
	DocumentID      string            `json:"document_id"`
	Session         SessionDescriptor `json:"session"`
	Events          []TimelineEvent   `json:"events"`
	EventCounts     map[EventKind]int `json:"event_counts"`
	DriversInvolved []string          `json:"drivers_involved"`
	Diagnostics     Diagnostics       `json:"diagnostics"`
}

// Finalize orders the events and recomputes the rollup fields. Callers
// can append events in any order and rely on race order afterwards.
func (t *RaceTimeline) Finalize() {
	sort.SliceStable(t.Events, func(i, j int) bool {
		return t.Events[i].SortLap() < t.Events[j].SortLap()
	})
	t.EventCounts = make(map[EventKind]int, len(t.Events))
	drivers := make(map[string]bool)
	for i := range t.Events {
		t.EventCounts[t.Events[i].Kind]++
		for _, d := range t.Events[i].Participants {
			drivers[d] = true
		}
	}
	t.DriversInvolved = make([]string, 0, len(drivers))
	for d := range drivers {
		t.DriversInvolved = append(t.DriversInvolved, d)
	}
	sort.Strings(t.DriversInvolved)
	t.Diagnostics.MergedEvents = len(t.Events)
}
