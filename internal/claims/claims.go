package claims

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
)

const (
	// DefaultMaxClaims bounds one extraction pass.
	DefaultMaxClaims = 10

	claimExcerptLimit  = 4000
	entityExcerptLimit = 2000
)

// validClaimTypes is the taxonomy the evidence planner knows how to map
// onto telemetry endpoints.
var validClaimTypes = map[string]bool{
	"pace":               true,
	"strategy":           true,
	"incident":           true,
	"tyres":              true,
	"pit_stop":           true,
	"driver_performance": true,
	"team_radio":         true,
	"weather":            true,
	"technical":          true,
	"other":              true,
}

type rawClaim struct {
	Text       string   `json:"claim_text"`
	Type       string   `json:"claim_type"`
	Drivers    []string `json:"drivers"`
	Teams      []string `json:"teams"`
	LapStart   int      `json:"lap_start"`
	LapEnd     int      `json:"lap_end"`
	Confidence *float64 `json:"confidence"`
	Rationale  string   `json:"rationale"`
}

type rawClaims struct {
	Claims []rawClaim `json:"claims"`
}

// ExtractClaims asks the LLM for up to maxClaims verifiable claims from
// the document text. Returns an empty slice on any failure: a document
// the model cannot parse simply yields nothing to verify.
func ExtractClaims(ctx context.Context, p brain.Provider, documentText string, maxClaims int) []model.Claim {
	if maxClaims <= 0 {
		maxClaims = DefaultMaxClaims
	}
	excerpt := documentText
	if len(excerpt) > claimExcerptLimit {
		excerpt = excerpt[:claimExcerptLimit]
	}

	var raw rawClaims
	if err := brain.ExtractJSON(ctx, p, brain.ClaimsRequest(excerpt, maxClaims), &raw); err != nil {
		logging.Error("claim extraction failed", "error", err)
		return nil
	}

	claims := make([]model.Claim, 0, len(raw.Claims))
	for _, rc := range raw.Claims {
		if len(claims) >= maxClaims {
			break
		}
		text := strings.TrimSpace(rc.Text)
		if text == "" {
			continue
		}
		claimType := strings.ToLower(strings.TrimSpace(rc.Type))
		if !validClaimTypes[claimType] {
			logging.Warn("skipping claim with unknown type", "type", rc.Type)
			continue
		}

		confidence := 0.5
		if rc.Confidence != nil {
			confidence = clamp01(*rc.Confidence)
		}
		lapStart, lapEnd := rc.LapStart, rc.LapEnd
		if lapStart < 0 {
			lapStart = 0
		}
		if lapEnd < 0 {
			lapEnd = 0
		}
		if lapEnd != 0 && lapEnd < lapStart {
			lapStart, lapEnd = lapEnd, lapStart
		}

		claims = append(claims, model.Claim{
			ID:   uuid.New().String(),
			Text: text,
			Type: claimType,
			Entities: model.Entities{
				Drivers: cleanNames(rc.Drivers),
				Teams:   cleanNames(rc.Teams),
			},
			LapStart:   lapStart,
			LapEnd:     lapEnd,
			Confidence: confidence,
			Rationale:  strings.TrimSpace(rc.Rationale),
			Status:     model.ClaimPending,
		})
	}

	logging.Info("extracted claims", "count", len(claims))
	return claims
}

// teamNameRe matches the team names that appear in race documents. The
// pattern fallback only needs to catch the common spellings; the LLM
// path handles everything else.
var teamNameRe = regexp.MustCompile(`Red Bull|Mercedes|Ferrari|McLaren|Aston Martin|Alpine|Williams|Alfa Romeo|Haas|AlphaTauri|Racing Bulls|Sauber`)

type rawEntities struct {
	Drivers map[string]int `json:"drivers"`
	Teams   []string       `json:"teams"`
}

// ExtractEntities pulls driver and team names out of the text. The LLM
// does the heavy lifting; when it is unavailable or fails, a pattern
// scan still recovers team names.
func ExtractEntities(ctx context.Context, p brain.Provider, text string) model.Entities {
	excerpt := text
	if len(excerpt) > entityExcerptLimit {
		excerpt = excerpt[:entityExcerptLimit]
	}

	if p != nil {
		var raw rawEntities
		err := brain.ExtractJSON(ctx, p, brain.EntitiesRequest(excerpt), &raw)
		if err == nil {
			drivers := make([]string, 0, len(raw.Drivers))
			for name := range raw.Drivers {
				if name = strings.TrimSpace(name); name != "" {
					drivers = append(drivers, name)
				}
			}
			sort.Strings(drivers)
			return model.Entities{Drivers: drivers, Teams: cleanNames(raw.Teams)}
		}
		logging.Warn("LLM entity extraction failed, using pattern scan", "error", err)
	}

	seen := map[string]bool{}
	var teams []string
	for _, m := range teamNameRe.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			teams = append(teams, m)
		}
	}
	sort.Strings(teams)
	return model.Entities{Teams: teams}
}

func cleanNames(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
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
