package timeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
)

// resolution is the outcome of session resolution. When Found is false
// the builder returns an empty timeline and never fetches collections.
type resolution struct {
	Descriptor      model.SessionDescriptor
	Found           bool
	FailureReason   string
	AvailableEvents []string
}

// resolver matches document metadata to one remote session. Document
// metadata is fuzzy (sponsor prefixes, wrong years), so resolution walks
// a widening search before giving up.
type resolver struct {
	client openf1.Client

	// extraYears are tried after year-1 and year-2; seasons that mock
	// documents most often cite.
	extraYears []int
}

// resolve runs the staged session search. Each stage short-circuits on
// success; stages never run once a session is resolved.
func (r *resolver) resolve(ctx context.Context, meta model.SessionMetadata) resolution {
	// An unknown event name means upstream metadata extraction failed.
	// Fail fast: no collection fetch can be meaningful without a session.
	if !meta.EventNameKnown() {
		logging.Warn("session resolution rejected", "reason", "event name unknown")
		return resolution{
			FailureReason: "event name is missing or unknown; document metadata extraction did not identify the Grand Prix",
		}
	}

	kind := string(meta.Kind)

	// Exact search: year + name + kind.
	if recs := r.client.SearchSessions(ctx, meta.Year, meta.EventName, kind); len(recs) > 0 {
		return r.resolved(recs[0], meta.Year)
	}

	// Same year, any kind; prefer a record matching the requested kind.
	if recs := r.client.SearchSessions(ctx, meta.Year, meta.EventName, ""); len(recs) > 0 {
		return r.resolved(pickByKind(recs, meta.Kind), meta.Year)
	}

	// The document's year is now suspect. Walk fallback seasons and adopt
	// the first that knows this event.
	for _, year := range r.fallbackYears(meta.Year) {
		recs := r.client.SearchSessions(ctx, year, meta.EventName, "")
		if len(recs) == 0 {
			continue
		}
		logging.Warn("session found under a different season",
			"document_year", meta.Year, "resolved_year", year, "event", meta.EventName)
		return r.resolved(pickByKind(recs, meta.Kind), year)
	}

	// Nothing matched. Collect what the season does have so the caller
	// can surface a "did you mean" list.
	available := distinctEventNames(r.client.SearchSessions(ctx, meta.Year, "", ""))
	logging.Warn("session resolution failed",
		"year", meta.Year, "event", meta.EventName, "available", len(available))
	return resolution{
		FailureReason:   fmt.Sprintf("no session matched %q in %d or fallback years", meta.EventName, meta.Year),
		AvailableEvents: available,
	}
}

func (r *resolver) resolved(rec openf1.Record, year int) resolution {
	if recYear := rec.Int("year"); recYear != 0 {
		year = recYear
	}
	desc := model.SessionDescriptor{
		Year:      year,
		EventName: openf1.EventLabel(rec),
		Kind:      model.ParseSessionKind(rec.Str("session_name")),
		SessionID: rec.Str("session_key"),
		Location:  rec.Str("location"),
		Date:      rec.Str("date_start"),
	}
	logging.Info("session resolved",
		"session_id", desc.SessionID, "year", desc.Year, "event", desc.EventName, "kind", desc.Kind)
	return resolution{Descriptor: desc, Found: true}
}

// fallbackYears is year-1, year-2, then the configured extras, skipping
// duplicates and the year already searched.
func (r *resolver) fallbackYears(year int) []int {
	candidates := append([]int{year - 1, year - 2}, r.extraYears...)
	seen := map[int]bool{year: true}
	out := candidates[:0]
	for _, y := range candidates {
		if y <= 0 || seen[y] {
			continue
		}
		seen[y] = true
		out = append(out, y)
	}
	return out
}

// pickByKind prefers a record whose session label matches the requested
// kind, falling back to the first record.
func pickByKind(recs []openf1.Record, kind model.SessionKind) openf1.Record {
	for _, rec := range recs {
		if kind.MatchesLabel(rec.Str("session_name")) {
			return rec
		}
	}
	return recs[0]
}

// distinctEventNames collects the event labels present in a result set,
// sorted, deduplicated case-insensitively.
func distinctEventNames(recs []openf1.Record) []string {
	seen := map[string]bool{}
	var names []string
	for _, rec := range recs {
		label := openf1.EventLabel(rec)
		key := strings.ToLower(label)
		if label == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, label)
	}
	sort.Strings(names)
	return names
}
