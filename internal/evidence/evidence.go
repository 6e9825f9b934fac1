// Package evidence settles claims against telemetry. A planner decides
// which collections can speak to a claim, a mapper fetches them, filters
// to the claim's scope and asks the LLM for a verdict. Claims with no
// reachable evidence settle as insufficient_data rather than guessing.
package evidence

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
)

// Collection names the planner hands to the mapper.
const (
	CollectionRaceControl = "race_control"
	CollectionLaps        = "laps"
	CollectionStints      = "stints"
	CollectionPitStops    = "pit_stops"
)

// Record caps keep the verdict prompt inside a local model's context.
const (
	raceControlCap = 10
	lapsCap        = 20
	stintsCap      = 10
	pitStopsCap    = 10

	evidencePayloadLimit = 2000
	maxDriversPerClaim   = 2
)

// Plan maps claim IDs to the telemetry collections worth fetching.
type Plan map[string][]string

// PlanRetrieval decides, per claim, which collections can settle it.
func PlanRetrieval(claims []model.Claim) Plan {
	plan := make(Plan, len(claims))
	for i := range claims {
		plan[claims[i].ID] = CollectionsFor(claims[i].Type)
	}
	logging.Info("planned evidence retrieval", "claims", len(claims))
	return plan
}

// CollectionsFor maps one claim type onto the collections that can
// support or contradict it.
func CollectionsFor(claimType string) []string {
	switch claimType {
	case "pace":
		return []string{CollectionLaps, CollectionStints}
	case "strategy":
		return []string{CollectionPitStops, CollectionStints, CollectionLaps}
	case "incident":
		return []string{CollectionRaceControl, CollectionLaps}
	case "tyres":
		return []string{CollectionStints, CollectionLaps}
	case "pit_stop":
		return []string{CollectionPitStops, CollectionLaps}
	case "driver_performance":
		return []string{CollectionLaps, CollectionStints, CollectionRaceControl}
	default:
		return []string{CollectionRaceControl, CollectionLaps}
	}
}

// Mapper fetches planned evidence and settles claims with the LLM.
type Mapper struct {
	provider  brain.Provider
	telemetry openf1.Client
}

// NewMapper wires up an evidence mapper. provider may be nil; claims then
// settle as unclear once evidence exists.
func NewMapper(provider brain.Provider, telemetry openf1.Client) *Mapper {
	return &Mapper{provider: provider, telemetry: telemetry}
}

// Settle gathers the planned collections for the claim and evaluates it.
// The returned claim carries its verdict and the evidence that produced
// it; the input claim is not modified.
func (m *Mapper) Settle(ctx context.Context, sessionID string, claim model.Claim, collections []string) model.Claim {
	data := m.gather(ctx, sessionID, claim, collections)
	return m.evaluate(ctx, claim, data)
}

// gather fetches each planned collection, filtered to the claim's lap
// range and named drivers where the records carry those fields.
func (m *Mapper) gather(ctx context.Context, sessionID string, claim model.Claim, collections []string) map[string][]openf1.Record {
	data := map[string][]openf1.Record{}
	if m.telemetry == nil || sessionID == "" {
		return data
	}

	driverNumbers := m.driverNumbers(ctx, sessionID, claim.Entities.Drivers)

	for _, collection := range collections {
		var records []openf1.Record
		switch collection {
		case CollectionRaceControl:
			records = capRecords(m.telemetry.GetControlMessages(ctx, sessionID), raceControlCap)
		case CollectionLaps:
			records = m.gatherLaps(ctx, sessionID, driverNumbers)
		case CollectionStints:
			records = capRecords(m.telemetry.GetStints(ctx, sessionID, 0), stintsCap)
		case CollectionPitStops:
			records = capRecords(m.telemetry.GetPitStops(ctx, sessionID, 0), pitStopsCap)
		default:
			continue
		}

		records = filterLapRange(records, claim.LapStart, claim.LapEnd)
		if len(records) > 0 {
			data[collection] = records
		}
	}
	return data
}

// gatherLaps fetches laps per named driver when the claim names any,
// otherwise one session-wide capped slice.
func (m *Mapper) gatherLaps(ctx context.Context, sessionID string, driverNumbers []int) []openf1.Record {
	if len(driverNumbers) == 0 {
		return capRecords(m.telemetry.GetLaps(ctx, sessionID, 0), lapsCap)
	}
	var out []openf1.Record
	for _, num := range driverNumbers {
		out = append(out, capRecords(m.telemetry.GetLaps(ctx, sessionID, num), lapsCap)...)
	}
	return out
}

// driverNumbers resolves claim driver names to car numbers via the
// session's driver list. Unresolvable names are dropped.
func (m *Mapper) driverNumbers(ctx context.Context, sessionID string, names []string) []int {
	if len(names) == 0 {
		return nil
	}
	if len(names) > maxDriversPerClaim {
		names = names[:maxDriversPerClaim]
	}

	roster := m.telemetry.GetDrivers(ctx, sessionID)
	var numbers []int
	for _, name := range names {
		want := strings.ToLower(strings.TrimSpace(name))
		if want == "" {
			continue
		}
		for _, rec := range roster {
			full := strings.ToLower(rec.Str("full_name"))
			acronym := strings.ToLower(rec.Str("name_acronym"))
			if strings.Contains(full, want) || want == acronym {
				if num := rec.Int("driver_number"); num > 0 {
					numbers = append(numbers, num)
				}
				break
			}
		}
	}
	return numbers
}

type verdict struct {
	Status     string   `json:"status"`
	Confidence *float64 `json:"confidence"`
	Rationale  string   `json:"rationale"`
}

// evaluate asks the LLM whether the gathered evidence supports the
// claim and settles it. No evidence at all short-circuits to
// insufficient_data; an LLM failure settles unclear but keeps the
// evidence for the reader.
func (m *Mapper) evaluate(ctx context.Context, claim model.Claim, data map[string][]openf1.Record) model.Claim {
	if len(data) == 0 {
		claim.Status = model.ClaimInsufficientData
		claim.Rationale = "No telemetry records matched this claim's scope"
		claim.Evidence = nil
		return claim
	}

	claim.Evidence = buildEvidence(data)

	if m.provider == nil {
		claim.Status = model.ClaimUnclear
		return claim
	}

	var v verdict
	err := brain.ExtractJSON(ctx, m.provider, brain.VerdictRequest(claim.Text, evidencePayload(data)), &v)
	if err != nil {
		logging.Warn("verdict failed", "claim", claim.ID, "error", err)
		claim.Status = model.ClaimUnclear
		return claim
	}

	claim.Status = parseStatus(v.Status)
	if v.Confidence != nil {
		claim.Confidence = clamp01(*v.Confidence)
	}
	if strings.TrimSpace(v.Rationale) != "" {
		claim.Rationale = strings.TrimSpace(v.Rationale)
	}
	return claim
}

// buildEvidence converts gathered records into typed evidence entries,
// one per collection, in a stable order.
func buildEvidence(data map[string][]openf1.Record) []model.Evidence {
	var out []model.Evidence
	for _, collection := range []string{CollectionRaceControl, CollectionLaps, CollectionStints, CollectionPitStops} {
		records, ok := data[collection]
		if !ok || len(records) == 0 {
			continue
		}
		ev := model.Evidence{
			Kind:    collection,
			Snippet: records[0].Snippet(),
			Raw:     map[string]any(records[0]),
		}
		if len(records) > 1 {
			ev.Snippet += " (+" + strconv.Itoa(len(records)-1) + " more records)"
		}
		out = append(out, ev)
	}
	return out
}

// evidencePayload renders the gathered records as indented JSON, bounded
// for the prompt.
func evidencePayload(data map[string][]openf1.Record) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return ""
	}
	s := string(b)
	if len(s) > evidencePayloadLimit {
		s = s[:evidencePayloadLimit]
	}
	return s
}

func parseStatus(s string) model.ClaimStatus {
	switch model.ClaimStatus(strings.ToLower(strings.TrimSpace(s))) {
	case model.ClaimSupported:
		return model.ClaimSupported
	case model.ClaimContradicted:
		return model.ClaimContradicted
	case model.ClaimInsufficientData:
		return model.ClaimInsufficientData
	default:
		return model.ClaimUnclear
	}
}

// filterLapRange keeps records inside [lapStart, lapEnd]. Records without
// a lap field pass through; a zero range keeps everything.
func filterLapRange(records []openf1.Record, lapStart, lapEnd int) []openf1.Record {
	if lapStart == 0 && lapEnd == 0 {
		return records
	}
	if lapEnd == 0 {
		lapEnd = model.SessionEndLap
	}
	out := records[:0:0]
	for _, rec := range records {
		lap := rec.Lap()
		if lap == 0 || (lap >= lapStart && lap <= lapEnd) {
			out = append(out, rec)
		}
	}
	return out
}

func capRecords(records []openf1.Record, n int) []openf1.Record {
	if len(records) > n {
		return records[:n]
	}
	return records
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
