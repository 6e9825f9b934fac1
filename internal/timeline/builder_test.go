package timeline

import (
	"context"
	"strings"
	"testing"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/config"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
)

func TestBuildEndToEnd(t *testing.T) {
	// Chunks worded so each mock document event finds a citation.
	retriever := newTestRetriever("doc-1", []string{
		"Light contact at the first corner forced an early front wing change for two midfield runners.",
		"The safety car was deployed after a heavy crash at the chicane on lap 33.",
		"Under the safety car the leading group pitted for hard tyres, banking a cheap stop.",
		"The fastest lap of the race came in the closing stint on fresher rubber.",
	})
	builder := NewBuilder(openf1.NewMockClient(), brain.NewMockProvider(), retriever,
		config.TimelineConfig{PitImpactThreshold: 0.05})

	timeline := builder.Build(context.Background(), "doc-1", "full race report", model.SessionMetadata{
		Year: 2023, EventName: "Monaco Grand Prix", Kind: model.SessionRace,
	})

	d := timeline.Diagnostics
	if !d.SessionFound {
		t.Fatalf("expected session to resolve: %s", d.FailureReason)
	}
	if d.SessionID != "9222" || d.ResolvedYear != 2023 || d.ResolvedEvent != "Monaco Grand Prix" {
		t.Errorf("unexpected resolution diagnostics: %+v", d)
	}
	if d.TelemetryEvents != 24 {
		t.Errorf("telemetry events = %d, want 24", d.TelemetryEvents)
	}
	if d.DocumentEvents != 4 {
		t.Errorf("document events = %d, want 4", d.DocumentEvents)
	}
	if d.MergedEvents != len(timeline.Events) {
		t.Errorf("merged count %d disagrees with events %d", d.MergedEvents, len(timeline.Events))
	}
	// No overlap between the mock document wording and the telemetry
	// wording, so the merged timeline is the sum of both sides.
	if len(timeline.Events) != 28 {
		t.Errorf("expected 28 events, got %d", len(timeline.Events))
	}

	for i := range timeline.Events {
		if !timeline.Events[i].HasProvenance() {
			t.Errorf("event %q shipped without provenance", timeline.Events[i].Title)
		}
		if timeline.Events[i].ImpactSummary == "" {
			t.Errorf("event %q has no impact summary", timeline.Events[i].Title)
		}
	}

	// Ordering: numbered laps ascending, lap-less next, result last.
	if timeline.Events[0].Lap != 1 {
		t.Errorf("first event at lap %d, want 1", timeline.Events[0].Lap)
	}
	last := timeline.Events[len(timeline.Events)-1]
	if last.Kind != model.KindSessionResult {
		t.Errorf("last event is %s, want SESSION_RESULT", last.Kind)
	}
	prev := 0
	for i := range timeline.Events {
		lap := timeline.Events[i].SortLap()
		if lap < prev {
			t.Fatalf("events out of order at index %d", i)
		}
		prev = lap
	}

	// The lap-21 safety car opened the lap-22 pit window.
	sc := findEvent(t, timeline.Events, 21, model.KindSafetyCar)
	if !strings.Contains(sc.ImpactSummary, "benefited from pit opportunity during safety car period") {
		t.Errorf("safety car impact = %q", sc.ImpactSummary)
	}

	// Pit impact: Verstappen's out-lap pace cleared the 5% threshold,
	// Alonso's did not.
	pit := findEvent(t, timeline.Events, 22, model.KindPitStop)
	if !strings.Contains(pit.ImpactSummary, "Max Verstappen benefited: 5.8% faster after the stop.") {
		t.Errorf("pit impact = %q", pit.ImpactSummary)
	}
	if strings.Contains(pit.ImpactSummary, "Fernando Alonso benefited") {
		t.Errorf("Alonso should stay unclassified: %q", pit.ImpactSummary)
	}

	// The document-only lap-33 safety car keeps its citations and its
	// medium confidence; impact still finds the lap-34 stop in its window.
	docSC := findEvent(t, timeline.Events, 33, model.KindSafetyCar)
	if len(docSC.Citations) == 0 {
		t.Error("document event lost its citations")
	}
	if docSC.Confidence != model.ConfidenceMedium {
		t.Errorf("document event confidence = %s, want MEDIUM", docSC.Confidence)
	}
	if !strings.Contains(docSC.ImpactSummary, "Esteban Ocon") {
		t.Errorf("expected Ocon's lap-34 stop inside the caution window: %q", docSC.ImpactSummary)
	}

	if timeline.EventCounts[model.KindSafetyCar] != 3 {
		t.Errorf("safety car count = %d, want 3 (two telemetry, one document)", timeline.EventCounts[model.KindSafetyCar])
	}
	if len(timeline.DriversInvolved) == 0 {
		t.Error("expected rollup of involved drivers")
	}
}

func findEvent(t *testing.T, events []model.TimelineEvent, lap int, kind model.EventKind) model.TimelineEvent {
	t.Helper()
	for i := range events {
		if events[i].Lap == lap && events[i].Kind == kind {
			return events[i]
		}
	}
	t.Fatalf("no %s event at lap %d", kind, lap)
	return model.TimelineEvent{}
}

func TestBuildUnknownEventShortCircuits(t *testing.T) {
	fake := &fakeTelemetry{}
	provider := &scriptedProvider{content: "[]"}
	builder := NewBuilder(fake, provider, nil, config.TimelineConfig{})

	timeline := builder.Build(context.Background(), "doc-1", "race text", model.SessionMetadata{
		Year: 2023, EventName: "Unknown", Kind: model.SessionRace,
	})

	if timeline.Diagnostics.SessionFound {
		t.Fatal("unknown event must not resolve")
	}
	if len(timeline.Events) != 0 {
		t.Errorf("expected an empty timeline, got %d events", len(timeline.Events))
	}
	if timeline.Diagnostics.FailureReason == "" {
		t.Error("expected a failure reason")
	}
	if timeline.Diagnostics.MergedEvents != 0 || timeline.Diagnostics.DocumentEvents != 0 {
		t.Errorf("diagnostics should report zero events: %+v", timeline.Diagnostics)
	}
	if searches, fetches := fake.calls(); searches != 0 || fetches != 0 {
		t.Errorf("no telemetry calls expected, got %d searches and %d fetches",
			searches, fetches)
	}
	if provider.calls != 0 {
		t.Errorf("document extraction must not run without a session, got %d calls", provider.calls)
	}
}

func TestBuildResolutionFailureListsAvailable(t *testing.T) {
	provider := &scriptedProvider{content: "[]"}
	builder := NewBuilder(openf1.NewMockClient(), provider, nil, config.TimelineConfig{})

	timeline := builder.Build(context.Background(), "doc-1", "race text", model.SessionMetadata{
		Year: 2023, EventName: "Imola Grand Prix", Kind: model.SessionRace,
	})

	if timeline.Diagnostics.SessionFound {
		t.Fatal("Imola should not resolve")
	}
	if len(timeline.Diagnostics.AvailableEvents) != 2 {
		t.Errorf("expected the season's events listed, got %v", timeline.Diagnostics.AvailableEvents)
	}
	if provider.calls != 0 {
		t.Errorf("document extraction must not run after failed resolution")
	}
}

func TestBuildUncorroboratedDocumentEventsDropped(t *testing.T) {
	// No retriever: document events get no citations, stay low
	// confidence, and are filtered before impact.
	builder := NewBuilder(openf1.NewMockClient(), brain.NewMockProvider(), nil,
		config.TimelineConfig{PitImpactThreshold: 0.05})

	timeline := builder.Build(context.Background(), "doc-1", "full race report", model.SessionMetadata{
		Year: 2023, EventName: "Monaco Grand Prix", Kind: model.SessionRace,
	})

	if timeline.Diagnostics.DocumentEvents != 4 {
		t.Errorf("extraction still runs: document events = %d, want 4", timeline.Diagnostics.DocumentEvents)
	}
	if len(timeline.Events) != 24 {
		t.Errorf("expected only the 24 telemetry events to survive, got %d", len(timeline.Events))
	}
	for i := range timeline.Events {
		if !timeline.Events[i].HasProvenance() {
			t.Errorf("unfalsifiable event %q survived the filter", timeline.Events[i].Title)
		}
	}
}

func TestBuildWithoutProviderIsTelemetryOnly(t *testing.T) {
	builder := NewBuilder(openf1.NewMockClient(), nil, nil, config.TimelineConfig{})

	timeline := builder.Build(context.Background(), "doc-1", "full race report", model.SessionMetadata{
		Year: 2023, EventName: "Monaco Grand Prix", Kind: model.SessionRace,
	})

	if timeline.Diagnostics.DocumentEvents != 0 {
		t.Errorf("no provider means no document events, got %d", timeline.Diagnostics.DocumentEvents)
	}
	if len(timeline.Events) != 24 {
		t.Errorf("expected 24 telemetry events, got %d", len(timeline.Events))
	}
}
