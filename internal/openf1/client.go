// Package openf1 provides the telemetry capability: session search plus
// the per-session collections the timeline builder consumes.
//
// The client contract is deliberately forgiving: transport and API
// failures are logged and surface as empty slices, never as errors, so a
// missing collection (no weather data for a dry race, an endpoint having
// a bad day) degrades one extractor instead of aborting a build. Callers
// must treat "empty" as ambiguous between no-data and failure; build
// diagnostics carry the per-collection counts that make the difference
// visible.
package openf1

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Record is one flat telemetry record. OpenF1 payloads are irregular
// enough (numbers arriving as floats or strings, fields missing per
// session) that typed structs would fight the data; the accessor helpers
// below normalize on read instead.
type Record map[string]any

// Client is the telemetry capability. All collection calls return an
// empty slice when the session has no such data or the call failed.
type Client interface {
	// SearchSessions finds sessions for a year, optionally filtered by
	// event name and session kind. eventName and kind may be empty.
	SearchSessions(ctx context.Context, year int, eventName, kind string) []Record

	GetControlMessages(ctx context.Context, sessionID string) []Record
	GetLaps(ctx context.Context, sessionID string, driver int) []Record
	GetStints(ctx context.Context, sessionID string, driver int) []Record
	GetPitStops(ctx context.Context, sessionID string, driver int) []Record
	GetDrivers(ctx context.Context, sessionID string) []Record
	GetWeather(ctx context.Context, sessionID string) []Record
	GetPositions(ctx context.Context, sessionID string) []Record
	GetOvertakes(ctx context.Context, sessionID string) []Record
	GetStartingGrid(ctx context.Context, sessionID string) []Record
	GetSessionResult(ctx context.Context, sessionID string) []Record
}

// Int reads an integer field, tolerating float64, string and json.Number
// representations. Returns 0 when absent or unparseable.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}

// Float reads a float field. Returns 0 when absent or unparseable.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	}
	return 0
}

// Str reads a string field, rendering numbers when needed. Returns ""
// when absent.
func (r Record) Str(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", r[key])
}

// Has reports whether the field is present and non-nil.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Lap reads the record's lap number. The API uses lap_number; older
// mirrors use lap.
func (r Record) Lap() int {
	if r.Has("lap_number") {
		return r.Int("lap_number")
	}
	return r.Int("lap")
}

// Driver reads the record's driver number.
func (r Record) Driver() int {
	return r.Int("driver_number")
}

// LapTime reads the total lap duration in seconds.
func (r Record) LapTime() float64 {
	if r.Has("lap_duration") {
		return r.Float("lap_duration")
	}
	return r.Float("lap_time")
}

// Snippet renders a compact human-readable view of the record for
// evidence attachments: up to a handful of the most informative fields.
func (r Record) Snippet() string {
	keys := []string{"message", "lap_number", "lap", "driver_number", "position",
		"compound", "pit_duration", "date", "rainfall", "session_name"}
	var parts []string
	for _, k := range keys {
		if r.Has(k) {
			parts = append(parts, k+"="+r.Str(k))
		}
		if len(parts) == 5 {
			break
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d fields", len(r))
	}
	return strings.Join(parts, " ")
}
