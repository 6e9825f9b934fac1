// Package timeline reconstructs a race's event sequence by fusing two
// sources: structured telemetry collections fetched per session, and
// events a language model reads out of the ingested document. Every
// event on the final timeline carries provenance (telemetry evidence,
// document citations, or both); anything unverifiable is dropped.
package timeline

import (
	"context"
	"fmt"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/config"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
	"github.com/mateluky/f1-race-intelligence/internal/retrieve"
)

// Builder runs the full reconstruction pipeline for one document. Safe
// for concurrent use; each Build is independent.
type Builder struct {
	telemetry openf1.Client
	provider  brain.Provider
	retriever *retrieve.Retriever
	cfg       config.TimelineConfig
}

func NewBuilder(telemetry openf1.Client, provider brain.Provider, retriever *retrieve.Retriever, cfg config.TimelineConfig) *Builder {
	return &Builder{
		telemetry: telemetry,
		provider:  provider,
		retriever: retriever,
		cfg:       cfg,
	}
}

// Build resolves the session, extracts both event streams, merges them
// and annotates impact. A failed resolution returns an empty timeline
// with diagnostics; no collections are fetched and the document is not
// re-read.
func (b *Builder) Build(ctx context.Context, documentID, documentText string, meta model.SessionMetadata) model.RaceTimeline {
	timeline := model.RaceTimeline{
		DocumentID: documentID,
		Events:     []model.TimelineEvent{},
	}

	res := (&resolver{client: b.telemetry, extraYears: b.cfg.ExtraFallbackYears}).resolve(ctx, meta)
	timeline.Session = res.Descriptor
	timeline.Diagnostics = model.Diagnostics{
		SessionFound:    res.Found,
		FailureReason:   res.FailureReason,
		AvailableEvents: res.AvailableEvents,
	}
	if !res.Found {
		logging.Warn("session resolution failed",
			"document", documentID, "year", meta.Year, "event", meta.EventName,
			"reason", res.FailureReason)
		timeline.Finalize()
		return timeline
	}
	timeline.Diagnostics.ResolvedYear = res.Descriptor.Year
	timeline.Diagnostics.ResolvedEvent = res.Descriptor.EventName
	timeline.Diagnostics.SessionID = res.Descriptor.SessionID

	data := extractTelemetry(ctx, b.telemetry, res.Descriptor.SessionID)
	timeline.Diagnostics.FetchCounts = data.FetchCounts
	timeline.Diagnostics.TelemetryEvents = len(data.Events)

	sessionContext := fmt.Sprintf("%d %s (%s)",
		res.Descriptor.Year, res.Descriptor.EventName, res.Descriptor.Kind)
	docEvents := extractDocumentEvents(ctx, b.provider, b.retriever, documentID, documentText, sessionContext)
	timeline.Diagnostics.DocumentEvents = len(docEvents)

	merged := mergeEvents(data.Events, docEvents)

	// An event nothing backs is an LLM guess; it does not ship.
	events := merged[:0]
	for i := range merged {
		if merged[i].HasProvenance() {
			events = append(events, merged[i])
		}
	}

	computeImpact(events, data.Laps, data.Pits, data.DriverNames, b.cfg.PitImpactThreshold)

	timeline.Events = events
	timeline.Finalize()
	logging.Info("timeline built",
		"document", documentID, "session", res.Descriptor.SessionID,
		"telemetry_events", timeline.Diagnostics.TelemetryEvents,
		"document_events", timeline.Diagnostics.DocumentEvents,
		"merged_events", timeline.Diagnostics.MergedEvents)
	return timeline
}
