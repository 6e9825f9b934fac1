package timeline

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
	"github.com/mateluky/f1-race-intelligence/internal/work"
)

// telemetryData is everything one session fetch produced: the extracted
// events plus the raw laps/pits and the driver name map, which the
// impact stage reuses without refetching.
type telemetryData struct {
	Events      []model.TimelineEvent
	Laps        []openf1.Record
	Pits        []openf1.Record
	DriverNames map[int]string
	FetchCounts map[string]int
}

// extractTelemetry fetches every collection for the session and maps the
// records to events. Collections are independent: an empty or failed one
// contributes nothing and never blocks the others, and the fetches fan
// out concurrently under the client's rate limit.
func extractTelemetry(ctx context.Context, client openf1.Client, sessionID string) telemetryData {
	data := telemetryData{
		DriverNames: map[int]string{},
		FetchCounts: map[string]int{},
	}
	if client == nil || sessionID == "" {
		return data
	}

	var drivers, control, stints, weather, overtakes, grid, result []openf1.Record
	work.RunAll(ctx, work.DefaultWorkers, []work.Task{
		{Name: "drivers", Run: func(ctx context.Context) { drivers = client.GetDrivers(ctx, sessionID) }},
		{Name: "race_control", Run: func(ctx context.Context) { control = client.GetControlMessages(ctx, sessionID) }},
		{Name: "pit", Run: func(ctx context.Context) { data.Pits = client.GetPitStops(ctx, sessionID, 0) }},
		{Name: "stints", Run: func(ctx context.Context) { stints = client.GetStints(ctx, sessionID, 0) }},
		{Name: "laps", Run: func(ctx context.Context) { data.Laps = client.GetLaps(ctx, sessionID, 0) }},
		{Name: "weather", Run: func(ctx context.Context) { weather = client.GetWeather(ctx, sessionID) }},
		{Name: "overtakes", Run: func(ctx context.Context) { overtakes = client.GetOvertakes(ctx, sessionID) }},
		{Name: "starting_grid", Run: func(ctx context.Context) { grid = client.GetStartingGrid(ctx, sessionID) }},
		{Name: "session_result", Run: func(ctx context.Context) { result = client.GetSessionResult(ctx, sessionID) }},
	})
	data.DriverNames = driverNameMap(drivers)

	data.FetchCounts["drivers"] = len(drivers)
	data.FetchCounts["race_control"] = len(control)
	data.FetchCounts["pit"] = len(data.Pits)
	data.FetchCounts["stints"] = len(stints)
	data.FetchCounts["laps"] = len(data.Laps)
	data.FetchCounts["weather"] = len(weather)
	data.FetchCounts["overtakes"] = len(overtakes)
	data.FetchCounts["starting_grid"] = len(grid)
	data.FetchCounts["session_result"] = len(result)

	data.Events = append(data.Events, extractControlEvents(control)...)
	data.Events = append(data.Events, extractPitEvents(data.Pits, data.DriverNames)...)
	data.Events = append(data.Events, extractStintEvents(stints, data.DriverNames)...)
	data.Events = append(data.Events, extractPaceEvents(data.Laps, data.DriverNames)...)
	data.Events = append(data.Events, extractPositionEvents(data.Laps, data.DriverNames)...)
	data.Events = append(data.Events, extractWeatherEvents(weather)...)
	data.Events = append(data.Events, extractOvertakeEvents(overtakes, data.DriverNames)...)
	data.Events = append(data.Events, extractGridEvent(grid, data.DriverNames)...)
	data.Events = append(data.Events, extractResultEvent(result, data.DriverNames)...)

	logging.Info("telemetry extraction complete",
		"session_id", sessionID, "events", len(data.Events))
	return data
}

// driverNameMap indexes driver numbers to display names.
func driverNameMap(records []openf1.Record) map[int]string {
	names := make(map[int]string, len(records))
	for _, rec := range records {
		num := rec.Int("driver_number")
		if num == 0 {
			continue
		}
		if name := rec.Str("full_name"); name != "" {
			names[num] = name
		}
	}
	return names
}

// nameFor resolves a driver number, falling back to "#<number>" when the
// session's driver list does not know it.
func nameFor(names map[int]string, num int) string {
	if name, ok := names[num]; ok && name != "" {
		return name
	}
	return "#" + strconv.Itoa(num)
}

func telemetryEvidence(collection, snippet string, rec openf1.Record) model.Evidence {
	return model.Evidence{Kind: collection, Snippet: snippet, Raw: rec}
}

// extractControlEvents classifies race-control messages into flag and
// caution events. Droppable chatter never becomes an event.
func extractControlEvents(records []openf1.Record) []model.TimelineEvent {
	var events []model.TimelineEvent
	for _, rec := range records {
		message := rec.Str("message")
		kind, keep := classifyControlMessage(message)
		if !keep {
			continue
		}

		lap := rec.Lap()
		title := kind.DisplayName()
		if lap > 0 {
			title = fmt.Sprintf("%s at Lap %d", kind.DisplayName(), lap)
		}

		events = append(events, model.TimelineEvent{
			Lap:         lap,
			Timestamp:   rec.Str("date"),
			Kind:        kind,
			Title:       title,
			Description: message,
			Evidence:    []model.Evidence{telemetryEvidence("race_control", message, rec)},
			Confidence:  model.ConfidenceHigh,
		})
	}
	return events
}

// extractPitEvents groups pit stops by lap: simultaneous stops become one
// event listing every driver and the distinct compounds taken.
func extractPitEvents(records []openf1.Record, names map[int]string) []model.TimelineEvent {
	byLap := map[int][]openf1.Record{}
	for _, rec := range records {
		if lap := rec.Lap(); lap > 0 {
			byLap[lap] = append(byLap[lap], rec)
		}
	}

	laps := make([]int, 0, len(byLap))
	for lap := range byLap {
		laps = append(laps, lap)
	}
	sort.Ints(laps)

	var events []model.TimelineEvent
	for _, lap := range laps {
		stops := byLap[lap]

		var drivers []string
		var compounds []string
		seenDriver := map[string]bool{}
		seenCompound := map[string]bool{}
		evidence := make([]model.Evidence, 0, len(stops))

		for _, stop := range stops {
			driver := nameFor(names, stop.Driver())
			if !seenDriver[driver] {
				seenDriver[driver] = true
				drivers = append(drivers, driver)
			}
			compound := stop.Str("compound")
			snippet := fmt.Sprintf("%s pitted on lap %d", driver, lap)
			if compound != "" {
				snippet += " for " + compound
				if !seenCompound[compound] {
					seenCompound[compound] = true
					compounds = append(compounds, compound)
				}
			}
			evidence = append(evidence, telemetryEvidence("pit", snippet, stop))
		}

		description := fmt.Sprintf("%d driver(s) pitted. Drivers: %s.", len(stops), strings.Join(drivers, ", "))
		if len(compounds) > 0 {
			description += fmt.Sprintf(" Compounds: %s.", strings.Join(compounds, ", "))
		}

		events = append(events, model.TimelineEvent{
			Lap:          lap,
			Timestamp:    stops[0].Str("date"),
			Kind:         model.KindPitStop,
			Title:        fmt.Sprintf("Pit Stops: Lap %d", lap),
			Description:  description,
			Evidence:     evidence,
			Participants: drivers,
			Confidence:   model.ConfidenceHigh,
		})
	}
	return events
}

// extractStintEvents emits one strategy-change event per stint
// transition, at the lap the new stint begins.
func extractStintEvents(records []openf1.Record, names map[int]string) []model.TimelineEvent {
	byDriver := map[int][]openf1.Record{}
	for _, rec := range records {
		if num := rec.Driver(); num > 0 {
			byDriver[num] = append(byDriver[num], rec)
		}
	}

	var events []model.TimelineEvent
	for _, num := range sortedKeys(byDriver) {
		stints := byDriver[num]
		if len(stints) < 2 {
			continue
		}
		sort.Slice(stints, func(i, j int) bool {
			if a, b := stints[i].Int("stint_number"), stints[j].Int("stint_number"); a != b {
				return a < b
			}
			return stints[i].Int("lap_start") < stints[j].Int("lap_start")
		})

		name := nameFor(names, num)
		for i := 1; i < len(stints); i++ {
			prev, cur := stints[i-1], stints[i]
			lap := cur.Int("lap_start")
			from, to := prev.Str("compound"), cur.Str("compound")

			events = append(events, model.TimelineEvent{
				Lap:         lap,
				Kind:        model.KindStrategyChange,
				Title:       fmt.Sprintf("Tyre change: %s", name),
				Description: fmt.Sprintf("%s switched from %s to %s on lap %d.", name, from, to, lap),
				Evidence: []model.Evidence{
					telemetryEvidence("stints", fmt.Sprintf("%s stint %d on %s", name, prev.Int("stint_number"), from), prev),
					telemetryEvidence("stints", fmt.Sprintf("%s stint %d on %s", name, cur.Int("stint_number"), to), cur),
				},
				Participants: []string{name},
				Confidence:   model.ConfidenceHigh,
			})
		}
	}
	return events
}

// extractPaceEvents marks each driver's single fastest lap.
func extractPaceEvents(laps []openf1.Record, names map[int]string) []model.TimelineEvent {
	type fastest struct {
		lap      int
		duration float64
		rec      openf1.Record
	}
	best := map[int]fastest{}
	for _, rec := range laps {
		num := rec.Driver()
		duration := rec.LapTime()
		if num == 0 || duration <= 0 {
			continue
		}
		if b, ok := best[num]; !ok || duration < b.duration {
			best[num] = fastest{lap: rec.Lap(), duration: duration, rec: rec}
		}
	}

	var events []model.TimelineEvent
	for _, num := range sortedKeys(best) {
		b := best[num]
		name := nameFor(names, num)
		events = append(events, model.TimelineEvent{
			Lap:         b.lap,
			Timestamp:   b.rec.Str("date"),
			Kind:        model.KindPaceChange,
			Title:       fmt.Sprintf("Fastest lap: %s", name),
			Description: fmt.Sprintf("%s set their fastest lap of %s on lap %d.", name, formatLapTime(b.duration), b.lap),
			Evidence: []model.Evidence{
				telemetryEvidence("laps", fmt.Sprintf("%s lap %d in %s", name, b.lap, formatLapTime(b.duration)), b.rec),
			},
			Participants: []string{name},
			Confidence:   model.ConfidenceHigh,
		})
	}
	return events
}

// extractPositionEvents compares each driver's position between
// consecutive populated laps and emits an event per improvement. Ties
// and losses emit nothing; overtake records cover the rest.
func extractPositionEvents(laps []openf1.Record, names map[int]string) []model.TimelineEvent {
	byDriver := map[int][]openf1.Record{}
	for _, rec := range laps {
		if num := rec.Driver(); num > 0 && rec.Int("position") > 0 && rec.Lap() > 0 {
			byDriver[num] = append(byDriver[num], rec)
		}
	}

	var events []model.TimelineEvent
	for _, num := range sortedKeys(byDriver) {
		recs := byDriver[num]
		sort.Slice(recs, func(i, j int) bool { return recs[i].Lap() < recs[j].Lap() })

		name := nameFor(names, num)
		for i := 1; i < len(recs); i++ {
			prev, cur := recs[i-1], recs[i]
			prevPos, curPos := prev.Int("position"), cur.Int("position")
			if curPos >= prevPos {
				continue
			}
			events = append(events, model.TimelineEvent{
				Lap:       cur.Lap(),
				Timestamp: cur.Str("date"),
				Kind:      model.KindPositionChange,
				Title:     fmt.Sprintf("Position gain: %s", name),
				Description: fmt.Sprintf("%s moved from P%d to P%d between laps %d and %d.",
					name, prevPos, curPos, prev.Lap(), cur.Lap()),
				Evidence: []model.Evidence{
					telemetryEvidence("laps", fmt.Sprintf("%s P%d on lap %d", name, prevPos, prev.Lap()), prev),
					telemetryEvidence("laps", fmt.Sprintf("%s P%d on lap %d", name, curPos, cur.Lap()), cur),
				},
				Participants: []string{name},
				Confidence:   model.ConfidenceHigh,
			})
		}
	}
	return events
}

// extractWeatherEvents emits events for rainfall state transitions only.
// Steady rain or steady dry between readings produces nothing.
func extractWeatherEvents(records []openf1.Record) []model.TimelineEvent {
	var events []model.TimelineEvent
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		before, after := prev.Float("rainfall"), cur.Float("rainfall")

		var title, description string
		switch {
		case before == 0 && after > 0:
			title = "Rain started"
			description = "Rainfall detected at the circuit."
		case before > 0 && after == 0:
			title = "Rain stopped"
			description = "Rainfall stopped; the track begins to dry."
		default:
			continue
		}

		events = append(events, model.TimelineEvent{
			Timestamp:   cur.Str("date"),
			Kind:        model.KindWeather,
			Title:       title,
			Description: description,
			Evidence: []model.Evidence{
				telemetryEvidence("weather", fmt.Sprintf("rainfall %.1f at %s", before, prev.Str("date")), prev),
				telemetryEvidence("weather", fmt.Sprintf("rainfall %.1f at %s", after, cur.Str("date")), cur),
			},
			Confidence: model.ConfidenceHigh,
		})
	}
	return events
}

// extractOvertakeEvents emits one event per overtake record.
func extractOvertakeEvents(records []openf1.Record, names map[int]string) []model.TimelineEvent {
	var events []model.TimelineEvent
	for _, rec := range records {
		overtaker := nameFor(names, rec.Int("overtaking_driver_number"))
		overtaken := nameFor(names, rec.Int("overtaken_driver_number"))

		description := fmt.Sprintf("%s passed %s", overtaker, overtaken)
		if pos := rec.Int("position"); pos > 0 {
			description += fmt.Sprintf(" for P%d", pos)
		}
		description += "."

		events = append(events, model.TimelineEvent{
			Lap:          rec.Lap(),
			Timestamp:    rec.Str("date"),
			Kind:         model.KindOvertake,
			Title:        fmt.Sprintf("Overtake: %s", overtaker),
			Description:  description,
			Evidence:     []model.Evidence{telemetryEvidence("overtakes", description, rec)},
			Participants: []string{overtaker, overtaken},
			Confidence:   model.ConfidenceHigh,
		})
	}
	return events
}

// extractGridEvent collapses the starting grid to one summary event with
// a top-10 listing.
func extractGridEvent(records []openf1.Record, names map[int]string) []model.TimelineEvent {
	top := topPositions(records, names, "starting_grid")
	if len(top.names) == 0 {
		return nil
	}

	description := fmt.Sprintf("Pole position: %s. Top %d: %s.", top.names[0], len(top.names), top.listing)
	return []model.TimelineEvent{{
		Kind:         model.KindStartingGrid,
		Title:        "Starting grid",
		Description:  description,
		Evidence:     top.evidence,
		Participants: top.names,
		Confidence:   model.ConfidenceHigh,
	}}
}

// extractResultEvent collapses the session result to one summary event
// carrying the sentinel lap so it sorts last.
func extractResultEvent(records []openf1.Record, names map[int]string) []model.TimelineEvent {
	top := topPositions(records, names, "session_result")
	if len(top.names) == 0 {
		return nil
	}

	dnfs := 0
	for _, rec := range records {
		if b, ok := rec["dnf"].(bool); ok && b {
			dnfs++
		}
	}

	description := fmt.Sprintf("Winner: %s. Top %d: %s. %d DNF(s).",
		top.names[0], len(top.names), top.listing, dnfs)
	return []model.TimelineEvent{{
		Lap:          model.SessionEndLap,
		Kind:         model.KindSessionResult,
		Title:        "Session result",
		Description:  description,
		Evidence:     top.evidence,
		Participants: top.names,
		Confidence:   model.ConfidenceHigh,
	}}
}

type positionSummary struct {
	names    []string
	listing  string
	evidence []model.Evidence
}

// topPositions sorts records by position and summarizes the top 10:
// driver names, a "P1 X, P2 Y" listing with the records' real positions,
// and the evidence records.
func topPositions(records []openf1.Record, names map[int]string, collection string) positionSummary {
	sorted := make([]openf1.Record, 0, len(records))
	for _, rec := range records {
		if rec.Int("position") > 0 {
			sorted = append(sorted, rec)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Int("position") < sorted[j].Int("position") })
	if len(sorted) > 10 {
		sorted = sorted[:10]
	}

	var top positionSummary
	parts := make([]string, 0, len(sorted))
	for _, rec := range sorted {
		name := nameFor(names, rec.Driver())
		entry := fmt.Sprintf("P%d %s", rec.Int("position"), name)
		top.names = append(top.names, name)
		parts = append(parts, entry)
		top.evidence = append(top.evidence, telemetryEvidence(collection, entry, rec))
	}
	top.listing = strings.Join(parts, ", ")
	return top
}

// formatLapTime renders seconds as m:ss.mmm.
func formatLapTime(seconds float64) string {
	minutes := int(seconds) / 60
	return fmt.Sprintf("%d:%06.3f", minutes, seconds-float64(minutes*60))
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
