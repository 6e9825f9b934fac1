package timeline

import (
	"context"
	"strings"
	"testing"

	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
)

var testNames = map[int]string{
	1:  "Max Verstappen",
	14: "Fernando Alonso",
	16: "Charles Leclerc",
	31: "Esteban Ocon",
	44: "Lewis Hamilton",
}

func lapRec(driver, lap int, duration float64, position int) openf1.Record {
	return openf1.Record{
		"driver_number": driver,
		"lap_number":    lap,
		"lap_duration":  duration,
		"position":      position,
	}
}

func pitRec(driver, lap int, compound string) openf1.Record {
	return openf1.Record{
		"driver_number": driver,
		"lap_number":    lap,
		"compound":      compound,
	}
}

func eventsOfKind(events []model.TimelineEvent, kind model.EventKind) []model.TimelineEvent {
	var out []model.TimelineEvent
	for _, e := range events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestExtractTelemetryMockSession(t *testing.T) {
	data := extractTelemetry(context.Background(), openf1.NewMockClient(), "9222")

	wantCounts := map[string]int{
		"drivers": 5, "race_control": 10, "pit": 3, "stints": 6, "laps": 24,
		"weather": 5, "overtakes": 2, "starting_grid": 5, "session_result": 5,
	}
	for key, want := range wantCounts {
		if got := data.FetchCounts[key]; got != want {
			t.Errorf("fetch count %s = %d, want %d", key, got, want)
		}
	}

	wantEvents := map[model.EventKind]int{
		model.KindInfo:             1,
		model.KindYellowFlag:       1,
		model.KindVirtualSafetyCar: 2,
		model.KindSafetyCar:        2,
		model.KindIncident:         1,
		model.KindWeather:          3, // one control message plus two rainfall transitions
		model.KindPitStop:          2,
		model.KindStrategyChange:   3,
		model.KindPaceChange:       3,
		model.KindPositionChange:   2,
		model.KindOvertake:         2,
		model.KindStartingGrid:     1,
		model.KindSessionResult:    1,
	}
	total := 0
	for kind, want := range wantEvents {
		got := len(eventsOfKind(data.Events, kind))
		if got != want {
			t.Errorf("%s events = %d, want %d", kind, got, want)
		}
		total += want
	}
	if len(data.Events) != total {
		t.Errorf("total events = %d, want %d", len(data.Events), total)
	}

	for i := range data.Events {
		if !data.Events[i].HasProvenance() {
			t.Errorf("telemetry event %q has no evidence", data.Events[i].Title)
		}
	}
	if data.DriverNames[1] != "Max Verstappen" {
		t.Errorf("driver map missing Verstappen: %v", data.DriverNames)
	}
}

func TestExtractTelemetryUnknownSession(t *testing.T) {
	data := extractTelemetry(context.Background(), openf1.NewMockClient(), "0000")
	if len(data.Events) != 0 {
		t.Errorf("unknown session should produce no events, got %d", len(data.Events))
	}
}

func TestExtractControlEvents(t *testing.T) {
	records := []openf1.Record{
		{"lap_number": 12, "date": "2023-05-28T13:21:05+00:00", "message": "VIRTUAL SAFETY CAR DEPLOYED"},
		{"lap_number": 45, "message": "DRS DISABLED"},
		{"message": "RED FLAG"},
	}

	events := extractControlEvents(records)
	if len(events) != 2 {
		t.Fatalf("expected 2 events (chatter dropped), got %d", len(events))
	}

	vsc := events[0]
	if vsc.Kind != model.KindVirtualSafetyCar || vsc.Lap != 12 {
		t.Errorf("expected VSC at lap 12, got %s at lap %d", vsc.Kind, vsc.Lap)
	}
	if vsc.Title != "Virtual Safety Car at Lap 12" {
		t.Errorf("unexpected title %q", vsc.Title)
	}
	if vsc.Description != "VIRTUAL SAFETY CAR DEPLOYED" {
		t.Errorf("description should keep the raw message, got %q", vsc.Description)
	}
	if vsc.Confidence != model.ConfidenceHigh || len(vsc.Evidence) != 1 {
		t.Errorf("expected high confidence with one evidence record")
	}

	if events[1].Lap != 0 || events[1].Title != "Red Flag" {
		t.Errorf("lap-less message should keep a bare title, got %q at lap %d", events[1].Title, events[1].Lap)
	}
}

func TestExtractPitEventsGroupsByLap(t *testing.T) {
	records := []openf1.Record{
		pitRec(1, 22, "HARD"),
		pitRec(14, 22, "HARD"),
		pitRec(31, 34, "INTERMEDIATE"),
	}

	events := extractPitEvents(records, testNames)
	if len(events) != 2 {
		t.Fatalf("expected 2 grouped events, got %d", len(events))
	}

	first := events[0]
	if first.Lap != 22 {
		t.Fatalf("expected lap 22 first, got %d", first.Lap)
	}
	if len(first.Participants) != 2 {
		t.Errorf("expected both drivers, got %v", first.Participants)
	}
	want := "2 driver(s) pitted. Drivers: Max Verstappen, Fernando Alonso. Compounds: HARD."
	if first.Description != want {
		t.Errorf("description = %q, want %q", first.Description, want)
	}
	if len(first.Evidence) != 2 {
		t.Errorf("expected one evidence record per stop, got %d", len(first.Evidence))
	}

	if events[1].Lap != 34 || !strings.Contains(events[1].Description, "INTERMEDIATE") {
		t.Errorf("unexpected second event: %+v", events[1])
	}
}

func TestExtractStintEvents(t *testing.T) {
	records := []openf1.Record{
		{"driver_number": 1, "stint_number": 2, "compound": "HARD", "lap_start": 22, "lap_end": 54},
		{"driver_number": 1, "stint_number": 1, "compound": "MEDIUM", "lap_start": 1, "lap_end": 21},
		{"driver_number": 44, "stint_number": 1, "compound": "MEDIUM", "lap_start": 1, "lap_end": 54},
	}

	events := extractStintEvents(records, testNames)
	if len(events) != 1 {
		t.Fatalf("expected 1 transition (single stints emit nothing), got %d", len(events))
	}

	e := events[0]
	if e.Lap != 22 || e.Kind != model.KindStrategyChange {
		t.Errorf("expected strategy change at lap 22, got %s at %d", e.Kind, e.Lap)
	}
	want := "Max Verstappen switched from MEDIUM to HARD on lap 22."
	if e.Description != want {
		t.Errorf("description = %q, want %q", e.Description, want)
	}
	if len(e.Evidence) != 2 {
		t.Errorf("expected evidence for both stints, got %d", len(e.Evidence))
	}
}

func TestExtractPaceEvents(t *testing.T) {
	laps := []openf1.Record{
		lapRec(1, 10, 78.5, 1),
		lapRec(1, 52, 75.1, 1),
		lapRec(1, 30, 76.2, 1),
		{"driver_number": 14, "lap_number": 5}, // no duration, ignored
	}

	events := extractPaceEvents(laps, testNames)
	if len(events) != 1 {
		t.Fatalf("expected 1 fastest-lap event, got %d", len(events))
	}
	e := events[0]
	if e.Lap != 52 {
		t.Errorf("expected fastest lap 52, got %d", e.Lap)
	}
	want := "Max Verstappen set their fastest lap of 1:15.100 on lap 52."
	if e.Description != want {
		t.Errorf("description = %q, want %q", e.Description, want)
	}
}

func TestExtractPositionEvents(t *testing.T) {
	laps := []openf1.Record{
		lapRec(31, 1, 79.5, 5),
		lapRec(31, 2, 78.9, 5),
		lapRec(31, 4, 78.6, 3),
		lapRec(31, 10, 79.0, 4), // position lost, no event
		lapRec(1, 1, 78.0, 1),
		lapRec(1, 2, 77.9, 1), // held position, no event
	}

	events := extractPositionEvents(laps, testNames)
	if len(events) != 1 {
		t.Fatalf("expected 1 gain event, got %d", len(events))
	}
	e := events[0]
	if e.Lap != 4 {
		t.Errorf("gain should be reported at the later lap, got %d", e.Lap)
	}
	want := "Esteban Ocon moved from P5 to P3 between laps 2 and 4."
	if e.Description != want {
		t.Errorf("description = %q, want %q", e.Description, want)
	}
}

func TestExtractWeatherEvents(t *testing.T) {
	records := []openf1.Record{
		{"date": "t1", "rainfall": 0},
		{"date": "t2", "rainfall": 0},
		{"date": "t3", "rainfall": 1.2},
		{"date": "t4", "rainfall": 0.4},
		{"date": "t5", "rainfall": 0},
	}

	events := extractWeatherEvents(records)
	if len(events) != 2 {
		t.Fatalf("expected start and stop transitions only, got %d", len(events))
	}
	if events[0].Title != "Rain started" || events[0].Timestamp != "t3" {
		t.Errorf("unexpected first transition: %+v", events[0])
	}
	if events[1].Title != "Rain stopped" || events[1].Timestamp != "t5" {
		t.Errorf("unexpected second transition: %+v", events[1])
	}
	for _, e := range events {
		if e.Lap != 0 {
			t.Errorf("weather events carry no lap, got %d", e.Lap)
		}
	}
}

func TestExtractOvertakeEvents(t *testing.T) {
	records := []openf1.Record{
		{"overtaking_driver_number": 31, "overtaken_driver_number": 55, "position": 3, "date": "t1"},
	}

	events := extractOvertakeEvents(records, testNames)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	want := "Esteban Ocon passed #55 for P3."
	if e.Description != want {
		t.Errorf("description = %q, want %q (unrostered drivers fall back to their number)", e.Description, want)
	}
	if len(e.Participants) != 2 || e.Participants[1] != "#55" {
		t.Errorf("participants = %v", e.Participants)
	}
}

func TestExtractGridAndResultEvents(t *testing.T) {
	client := openf1.NewMockClient()
	ctx := context.Background()

	grid := extractGridEvent(client.GetStartingGrid(ctx, "9222"), testNames)
	if len(grid) != 1 {
		t.Fatalf("expected one grid summary, got %d", len(grid))
	}
	if grid[0].Lap != 0 {
		t.Errorf("grid event is lap-less, got lap %d", grid[0].Lap)
	}
	wantGrid := "Pole position: Max Verstappen. Top 5: P1 Max Verstappen, P2 Fernando Alonso, P3 Charles Leclerc, P4 Esteban Ocon, P5 Lewis Hamilton."
	if grid[0].Description != wantGrid {
		t.Errorf("grid description = %q, want %q", grid[0].Description, wantGrid)
	}

	result := extractResultEvent(client.GetSessionResult(ctx, "9222"), testNames)
	if len(result) != 1 {
		t.Fatalf("expected one result summary, got %d", len(result))
	}
	if result[0].Lap != model.SessionEndLap {
		t.Errorf("result event should carry the sentinel lap, got %d", result[0].Lap)
	}
	desc := result[0].Description
	if !strings.HasPrefix(desc, "Winner: Max Verstappen.") {
		t.Errorf("result description = %q", desc)
	}
	if !strings.Contains(desc, "P16 Charles Leclerc") {
		t.Errorf("listing should keep real classified positions, got %q", desc)
	}
	if !strings.Contains(desc, "1 DNF(s).") {
		t.Errorf("expected DNF count in %q", desc)
	}
}

func TestFormatLapTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{75.1, "1:15.100"},
		{92.345, "1:32.345"},
		{59.999, "0:59.999"},
		{125.0, "2:05.000"},
	}
	for _, tt := range tests {
		if got := formatLapTime(tt.seconds); got != tt.want {
			t.Errorf("formatLapTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
