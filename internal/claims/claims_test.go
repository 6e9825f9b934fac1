package claims

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
)

// scriptedProvider returns a fixed response and counts calls.
type scriptedProvider struct {
	content string
	err     error
	calls   int
}

func (s *scriptedProvider) Name() string    { return "scripted" }
func (s *scriptedProvider) Available() bool { return true }

func (s *scriptedProvider) Generate(ctx context.Context, req brain.Request) (brain.Response, error) {
	s.calls++
	if s.err != nil {
		return brain.Response{}, s.err
	}
	return brain.Response{Content: s.content, Model: "scripted"}, nil
}

func TestNormalizeGPName(t *testing.T) {
	norm := NewNormalizer()

	tests := []struct {
		in   string
		want string
	}{
		{"Monaco", "Monaco Grand Prix"},
		{"monaco grand prix", "Monaco Grand Prix"},
		{"2025 AUSSIE GP", "Australian Grand Prix"},
		{"Formula 1 Louis Vuitton Australian Grand Prix", "Australian Grand Prix"},
		{"Austrian Grand Prix", "Austrian Grand Prix"},
		{"netherlands", "Dutch Grand Prix"},
		{"FORMULA 1 HEINEKEN DUTCH GRAND PRIX 2023", "Dutch Grand Prix"},
		{"Miami Grand Prix", "Miami Grand Prix"},
		{"some gibberish", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := norm.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizerLoadAliases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yaml")
	if err := os.WriteFile(path, []byte("miami: Miami Grand Prix\nvegas: Las Vegas Grand Prix\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	norm := NewNormalizer()
	if err := norm.LoadAliases(path); err != nil {
		t.Fatalf("LoadAliases: %v", err)
	}

	if got := norm.Normalize("MIAMI GP"); got != "Miami Grand Prix" {
		t.Errorf("Normalize(MIAMI GP) = %q", got)
	}
	if got := norm.Normalize("Heineken Silver Las Vegas Grand Prix"); got != "Las Vegas Grand Prix" {
		t.Errorf("Normalize(vegas) = %q", got)
	}
	// builtin table still works after the merge
	if got := norm.Normalize("Monaco"); got != "Monaco Grand Prix" {
		t.Errorf("Normalize(Monaco) = %q", got)
	}

	if err := norm.LoadAliases(filepath.Join(dir, "missing.yaml")); err != nil {
		t.Errorf("missing alias file should not error, got %v", err)
	}
}

func TestExtractHeuristic(t *testing.T) {
	norm := NewNormalizer()

	tests := []struct {
		name        string
		filename    string
		text        string
		wantYear    int
		wantGP      string
		wantSession string
		confident   bool
	}{
		{
			name:      "filename carries year and GP",
			filename:  "2023_Monaco_Grand_Prix.pdf",
			text:      "",
			wantYear:  2023,
			wantGP:    "Monaco Grand Prix",
			confident: true,
		},
		{
			name:        "text pattern fills the gaps",
			filename:    "report.pdf",
			text:        "The 2023 Monaco Grand Prix race was interrupted twice.",
			wantYear:    2023,
			wantGP:      "Monaco Grand Prix",
			wantSession: "RACE",
			confident:   true,
		},
		{
			name:        "qualifying detected when race absent",
			filename:    "doc.pdf",
			text:        "Qualifying was held in damp conditions.",
			wantSession: "QUALIFYING",
		},
		{
			name:        "sprint detected",
			filename:    "doc.pdf",
			text:        "The sprint began behind the safety car.",
			wantSession: "SPRINT",
		},
		{
			name:     "implausible year rejected",
			filename: "1999_Monaco_Grand_Prix.pdf",
			wantGP:   "Monaco Grand Prix",
		},
		{
			name:     "nothing matches",
			filename: "scan001.pdf",
			text:     "illegible",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ExtractHeuristic(tt.filename, tt.text, norm)
			if h.Year != tt.wantYear {
				t.Errorf("Year = %d, want %d", h.Year, tt.wantYear)
			}
			if h.GPName != tt.wantGP {
				t.Errorf("GPName = %q, want %q", h.GPName, tt.wantGP)
			}
			if h.SessionType != tt.wantSession {
				t.Errorf("SessionType = %q, want %q", h.SessionType, tt.wantSession)
			}
			if h.Confident() != tt.confident {
				t.Errorf("Confident() = %v, want %v", h.Confident(), tt.confident)
			}
			if h.Summary == "" {
				t.Error("Summary should never be empty")
			}
		})
	}
}

func TestMetadataHeuristicShortCircuitsLLM(t *testing.T) {
	provider := &scriptedProvider{content: "{}"}
	x := NewMetadataExtractor(provider, openf1.NewMockClient(), nil, nil)

	det := x.Extract(context.Background(), "2023_Monaco_Grand_Prix.pdf", "Race report.", nil)

	if det.Path != PathHeuristic {
		t.Fatalf("Path = %q, want %q", det.Path, PathHeuristic)
	}
	if provider.calls != 0 {
		t.Errorf("LLM called %d times despite confident heuristic", provider.calls)
	}
	if det.Metadata.Year != 2023 || det.Metadata.EventName != "Monaco Grand Prix" {
		t.Errorf("Metadata = %+v", det.Metadata)
	}
	if det.Metadata.Kind != model.SessionRace {
		t.Errorf("Kind = %q, want RACE", det.Metadata.Kind)
	}
}

func TestMetadataLLMPath(t *testing.T) {
	x := NewMetadataExtractor(brain.NewMockProvider(), openf1.NewMockClient(), nil, nil)

	chunks := []model.Chunk{{DocumentID: "d", Index: 0, Text: "Lights out on the streets of the principality."}}
	det := x.Extract(context.Background(), "scan.pdf", "illegible header", chunks)

	if det.Path != PathLLM {
		t.Fatalf("Path = %q, want %q (reasoning: %s)", det.Path, PathLLM, det.Reasoning)
	}
	if det.Metadata.Year != 2023 {
		t.Errorf("Year = %d, want 2023", det.Metadata.Year)
	}
	if det.Metadata.EventName != "Monaco Grand Prix" {
		t.Errorf("EventName = %q", det.Metadata.EventName)
	}
}

func TestMetadataYearFallbackToCoveredSeason(t *testing.T) {
	// The model says 2024 but the telemetry source only covers 2023.
	provider := &scriptedProvider{
		content: `{"year": 2024, "gp_name": "Monaco Grand Prix", "session_type": "RACE"}`,
	}
	x := NewMetadataExtractor(provider, openf1.NewMockClient(), nil, []int{2023})

	chunks := []model.Chunk{{DocumentID: "d", Index: 0, Text: "some text"}}
	det := x.Extract(context.Background(), "scan.pdf", "illegible", chunks)

	if det.Path != PathLLM {
		t.Fatalf("Path = %q, want %q", det.Path, PathLLM)
	}
	if det.Metadata.Year != 2023 {
		t.Errorf("Year = %d, want fallback year 2023", det.Metadata.Year)
	}
}

func TestMetadataRejectsUnknownGP(t *testing.T) {
	provider := &scriptedProvider{
		content: `{"year": 2023, "gp_name": "Unknown", "session_type": "RACE"}`,
	}
	x := NewMetadataExtractor(provider, openf1.NewMockClient(), nil, nil)

	chunks := []model.Chunk{{DocumentID: "d", Index: 0, Text: "some text"}}
	det := x.Extract(context.Background(), "scan.pdf", "illegible", chunks)

	if det.Path != PathHeuristicFallback {
		t.Fatalf("Path = %q, want %q", det.Path, PathHeuristicFallback)
	}
	if det.Warning == "" {
		t.Error("fallback detection should carry a warning")
	}
	if det.Metadata.EventName != "Unknown" {
		t.Errorf("EventName = %q, want Unknown default", det.Metadata.EventName)
	}
}

func TestMetadataNoChunksUsesHeuristic(t *testing.T) {
	provider := &scriptedProvider{content: "{}"}
	x := NewMetadataExtractor(provider, nil, nil, nil)

	det := x.Extract(context.Background(), "scan.pdf", "illegible", nil)

	if det.Path != PathHeuristicNoChunks {
		t.Fatalf("Path = %q, want %q", det.Path, PathHeuristicNoChunks)
	}
	if provider.calls != 0 {
		t.Errorf("LLM called with no chunk text available")
	}
	if det.Metadata.Year != 2024 || det.Metadata.EventName != "Unknown" {
		t.Errorf("defaults not applied: %+v", det.Metadata)
	}
}

func TestExtractClaims(t *testing.T) {
	claims := ExtractClaims(context.Background(), brain.NewMockProvider(), "race document text with claims to find", 10)

	if len(claims) != 2 {
		t.Fatalf("got %d claims, want 2", len(claims))
	}
	if claims[0].Type != "pace" || claims[1].Type != "strategy" {
		t.Errorf("types = %q, %q", claims[0].Type, claims[1].Type)
	}
	for i, c := range claims {
		if c.ID == "" {
			t.Errorf("claim %d has no ID", i)
		}
		if c.Status != model.ClaimPending {
			t.Errorf("claim %d status = %q, want pending", i, c.Status)
		}
		if c.Confidence <= 0 || c.Confidence > 1 {
			t.Errorf("claim %d confidence = %f", i, c.Confidence)
		}
	}
	if len(claims[0].Entities.Drivers) != 1 || claims[0].Entities.Drivers[0] != "Max Verstappen" {
		t.Errorf("claim 0 drivers = %v", claims[0].Entities.Drivers)
	}
}

func TestExtractClaimsSkipsInvalid(t *testing.T) {
	provider := &scriptedProvider{content: `{"claims": [
		{"claim_text": "Fastest in sector two all afternoon", "claim_type": "conspiracy", "confidence": 0.9},
		{"claim_text": "", "claim_type": "pace"},
		{"claim_text": "Two-stop was the faster strategy", "claim_type": "strategy", "lap_start": 30, "lap_end": 12, "confidence": 1.7}
	]}`}

	claims := ExtractClaims(context.Background(), provider, "text", 10)

	if len(claims) != 1 {
		t.Fatalf("got %d claims, want 1", len(claims))
	}
	c := claims[0]
	if c.Type != "strategy" {
		t.Errorf("Type = %q", c.Type)
	}
	if c.LapStart != 12 || c.LapEnd != 30 {
		t.Errorf("lap range = [%d, %d], want normalized [12, 30]", c.LapStart, c.LapEnd)
	}
	if c.Confidence != 1 {
		t.Errorf("Confidence = %f, want clamped 1", c.Confidence)
	}
}

func TestExtractClaimsMaxCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"claims": [`)
	for i := 0; i < 6; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"claim_text": "claim number %d about tyre wear", "claim_type": "tyres"}`, i)
	}
	sb.WriteString("]}")
	provider := &scriptedProvider{content: sb.String()}

	claims := ExtractClaims(context.Background(), provider, "text", 3)
	if len(claims) != 3 {
		t.Fatalf("got %d claims, want capped 3", len(claims))
	}
}

func TestExtractClaimsProviderFailure(t *testing.T) {
	provider := &scriptedProvider{err: fmt.Errorf("model offline")}
	if claims := ExtractClaims(context.Background(), provider, "text", 10); len(claims) != 0 {
		t.Errorf("got %d claims from a failing provider", len(claims))
	}
}

func TestExtractEntitiesLLM(t *testing.T) {
	got := ExtractEntities(context.Background(), brain.NewMockProvider(), "who drove for whom")

	wantDrivers := []string{"Esteban Ocon", "Fernando Alonso", "Max Verstappen"}
	if len(got.Drivers) != len(wantDrivers) {
		t.Fatalf("drivers = %v", got.Drivers)
	}
	for i, d := range wantDrivers {
		if got.Drivers[i] != d {
			t.Errorf("drivers[%d] = %q, want %q", i, got.Drivers[i], d)
		}
	}
	if len(got.Teams) != 3 {
		t.Errorf("teams = %v", got.Teams)
	}
}

func TestExtractEntitiesPatternFallback(t *testing.T) {
	provider := &scriptedProvider{err: fmt.Errorf("model offline")}
	text := "Red Bull covered the stop while Ferrari stayed out. Ferrari's gamble failed."

	got := ExtractEntities(context.Background(), provider, text)

	if len(got.Drivers) != 0 {
		t.Errorf("pattern fallback should not invent drivers, got %v", got.Drivers)
	}
	if len(got.Teams) != 2 || got.Teams[0] != "Ferrari" || got.Teams[1] != "Red Bull" {
		t.Errorf("teams = %v, want [Ferrari Red Bull]", got.Teams)
	}
}
