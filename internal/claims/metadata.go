package claims

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
)

// Extraction paths reported back so callers can see how the metadata was
// obtained.
const (
	PathHeuristic         = "heuristic_filename_text"
	PathHeuristicNoChunks = "heuristic_no_chunks"
	PathLLM               = "llm_extraction"
	PathHeuristicFallback = "heuristic_fallback_after_llm"
)

const (
	heuristicExcerptLimit = 2000
	llmExcerptChunks      = 10
	llmExcerptLimit       = 1500
)

// Detection is the outcome of metadata extraction: the metadata itself
// plus which path produced it and why.
type Detection struct {
	Metadata  model.SessionMetadata `json:"metadata"`
	Path      string                `json:"extraction_path"`
	Reasoning string                `json:"reasoning"`
	Warning   string                `json:"warning,omitempty"`
}

// MetadataExtractor derives session metadata from an ingested document.
// Stage 1 runs filename/text heuristics; stage 2 asks the LLM and
// validates its answer against telemetry coverage. Either capability may
// be nil, in which case the stages that need it degrade gracefully.
type MetadataExtractor struct {
	provider  brain.Provider
	telemetry openf1.Client
	norm      *Normalizer

	// extraYears are tried after year-1 and year-2 when the LLM's year
	// has no telemetry coverage.
	extraYears []int
}

// NewMetadataExtractor wires up a metadata extractor.
func NewMetadataExtractor(provider brain.Provider, telemetry openf1.Client, norm *Normalizer, extraYears []int) *MetadataExtractor {
	if norm == nil {
		norm = NewNormalizer()
	}
	return &MetadataExtractor{
		provider:   provider,
		telemetry:  telemetry,
		norm:       norm,
		extraYears: extraYears,
	}
}

// Extract runs the two-stage metadata extraction for one document.
func (x *MetadataExtractor) Extract(ctx context.Context, filename, rawText string, chunks []model.Chunk) Detection {
	excerpt := rawText
	if len(excerpt) > heuristicExcerptLimit {
		excerpt = excerpt[:heuristicExcerptLimit]
	}

	h := ExtractHeuristic(filename, excerpt, x.norm)
	logging.Info("heuristic metadata",
		"filename", filename, "year", h.Year, "gp", h.GPName, "session", h.SessionType)

	if h.Confident() {
		return Detection{
			Metadata:  x.metadata(h.Year, h.GPName, h.SessionType),
			Path:      PathHeuristic,
			Reasoning: h.Summary,
		}
	}

	docExcerpt := chunkExcerpt(chunks, llmExcerptChunks)
	if strings.TrimSpace(docExcerpt) == "" || x.provider == nil {
		return Detection{
			Metadata:  x.metadata(h.Year, h.GPName, h.SessionType),
			Path:      PathHeuristicNoChunks,
			Reasoning: "No text content available for the LLM stage; using heuristic result",
		}
	}
	if len(docExcerpt) > llmExcerptLimit {
		docExcerpt = docExcerpt[:llmExcerptLimit]
	}

	llmYear, llmGP, llmSession := x.llmMetadata(ctx, docExcerpt)

	year := x.validateYear(ctx, llmYear)
	gpName := x.validateGP(llmGP)
	sessionType := validateSessionType(llmSession)

	if year != 0 && gpName != "" {
		logging.Info("LLM metadata accepted", "year", year, "gp", gpName, "session", sessionType)
		return Detection{
			Metadata:  x.metadata(year, gpName, sessionType),
			Path:      PathLLM,
			Reasoning: "Extracted by the language model and validated against telemetry coverage",
		}
	}

	var reasons []string
	if h.Year == 0 && year == 0 {
		reasons = append(reasons, "Could not extract year from document or LLM.")
	}
	if h.GPName == "" && gpName == "" {
		reasons = append(reasons, "Could not extract GP name from document or LLM.")
	}
	logging.Warn("metadata extraction partial", "reasons", strings.Join(reasons, " "))

	return Detection{
		Metadata:  x.metadata(h.Year, h.GPName, h.SessionType),
		Path:      PathHeuristicFallback,
		Reasoning: strings.TrimSpace("LLM result invalid; using heuristic fallback. " + strings.Join(reasons, " ")),
		Warning:   "Low confidence detection, manual verification recommended",
	}
}

// metadata fills missing fields with the defaults the rest of the
// pipeline expects: an unknown GP resolves to zero events downstream
// rather than an error.
func (x *MetadataExtractor) metadata(year int, gpName, sessionType string) model.SessionMetadata {
	if year == 0 {
		year = 2024
	}
	if gpName == "" {
		gpName = "Unknown"
	}
	return model.SessionMetadata{
		Year:      year,
		EventName: gpName,
		Kind:      model.ParseSessionKind(sessionType),
	}
}

// llmMetadata runs the session-info prompt and coerces the loosely typed
// reply. Models return years as numbers or strings interchangeably.
func (x *MetadataExtractor) llmMetadata(ctx context.Context, excerpt string) (year int, gpName, sessionType string) {
	var raw map[string]any
	if err := brain.ExtractJSON(ctx, x.provider, brain.SessionInfoRequest(excerpt), &raw); err != nil {
		logging.Warn("LLM metadata extraction failed", "error", err)
		return 0, "", ""
	}
	return coerceYear(raw["year"]), coerceString(raw["gp_name"]), coerceString(raw["session_type"])
}

// validateYear range-checks the LLM year and confirms telemetry coverage
// exists for it, walking the fallback years when it does not. Returns 0
// when no usable year remains.
func (x *MetadataExtractor) validateYear(ctx context.Context, year int) int {
	if year == 0 {
		return 0
	}
	if year < 1950 || year > time.Now().Year()+1 {
		logging.Warn("LLM year out of range", "year", year)
		return 0
	}
	if x.telemetry == nil {
		return year
	}

	if sessions := x.telemetry.SearchSessions(ctx, year, "", ""); len(sessions) > 0 {
		logging.Info("year validated against telemetry", "year", year, "sessions", len(sessions))
		return year
	}

	fallbacks := append([]int{year - 1, year - 2}, x.extraYears...)
	for _, fb := range fallbacks {
		if fb == year || fb <= 0 {
			continue
		}
		if sessions := x.telemetry.SearchSessions(ctx, fb, "", ""); len(sessions) > 0 {
			logging.Warn("telemetry coverage found under a different season",
				"document_year", year, "resolved_year", fb)
			return fb
		}
	}

	logging.Warn("no telemetry coverage for any candidate year", "year", year)
	return 0
}

// validateGP rejects "unknown", normalizes known names and accepts
// plausible unknowns verbatim.
func (x *MetadataExtractor) validateGP(gpName string) string {
	gpName = strings.TrimSpace(gpName)
	if gpName == "" || strings.EqualFold(gpName, "unknown") {
		return ""
	}
	if normalized := x.norm.Normalize(gpName); normalized != "" {
		return normalized
	}
	if len(gpName) > 2 {
		return gpName
	}
	return ""
}

func validateSessionType(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "RACE", "QUALIFYING", "SPRINT", "FP1", "FP2", "FP3":
		return s
	}
	return ""
}

// chunkExcerpt joins the first n chunk texts into one LLM excerpt.
func chunkExcerpt(chunks []model.Chunk, n int) string {
	if len(chunks) < n {
		n = len(chunks)
	}
	parts := make([]string, 0, n)
	for _, c := range chunks[:n] {
		if c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func coerceYear(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return 0
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
