// Package claims turns document text into structured facts: verifiable
// claims, named entities and the session metadata (year, Grand Prix,
// session type) a timeline build starts from. Extraction is two-staged:
// cheap filename/text heuristics first, an LLM pass only when the
// heuristics are not confident.
package claims

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// gpAlias maps a fragment documents actually use onto the canonical
// Grand Prix name. Lookup is containment-based, so sponsor prefixes
// ("Formula 1 Louis Vuitton Australian Grand Prix") need no stripping.
type gpAlias struct {
	key       string
	canonical string
}

// builtinAliases covers the recent calendar. First containment hit wins,
// so more specific fragments must come before fragments they contain.
var builtinAliases = []gpAlias{
	{"australia", "Australian Grand Prix"},
	{"aussie", "Australian Grand Prix"},
	{"bahrain", "Bahrain Grand Prix"},
	{"saudi", "Saudi Arabian Grand Prix"},
	{"monaco", "Monaco Grand Prix"},
	{"spain", "Spanish Grand Prix"},
	{"spanish", "Spanish Grand Prix"},
	{"canada", "Canadian Grand Prix"},
	{"canadian", "Canadian Grand Prix"},
	{"austria", "Austrian Grand Prix"},
	{"britain", "British Grand Prix"},
	{"british", "British Grand Prix"},
	{"hungary", "Hungarian Grand Prix"},
	{"netherlands", "Dutch Grand Prix"},
	{"dutch", "Dutch Grand Prix"},
	{"belgium", "Belgian Grand Prix"},
	{"belgian", "Belgian Grand Prix"},
	{"italy", "Italian Grand Prix"},
	{"italian", "Italian Grand Prix"},
	{"singapore", "Singapore Grand Prix"},
	{"japan", "Japanese Grand Prix"},
	{"mexico", "Mexico City Grand Prix"},
	{"brazil", "Brazilian Grand Prix"},
	{"usa", "United States Grand Prix"},
	{"united states", "United States Grand Prix"},
	{"abu dhabi", "Abu Dhabi Grand Prix"},
}

var gpSuffixRe = regexp.MustCompile(`(?i)(\w+(?:\s+\w+)?)\s+Grand Prix`)

// Normalizer resolves Grand Prix name variants to canonical names. The
// builtin alias table can be extended from a YAML file so new calendar
// entries don't need a rebuild.
type Normalizer struct {
	aliases []gpAlias
}

// NewNormalizer creates a normalizer with the builtin alias table.
func NewNormalizer() *Normalizer {
	aliases := make([]gpAlias, len(builtinAliases))
	copy(aliases, builtinAliases)
	return &Normalizer{aliases: aliases}
}

// LoadAliases merges a YAML map of fragment -> canonical name. Loaded
// aliases are checked before the builtin ones so they can override.
// A missing file is not an error.
func (n *Normalizer) LoadAliases(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read aliases: %w", err)
	}

	extra := map[string]string{}
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return fmt.Errorf("parse aliases: %w", err)
	}

	loaded := make([]gpAlias, 0, len(extra))
	for key, canonical := range extra {
		key = strings.ToLower(strings.TrimSpace(key))
		canonical = strings.TrimSpace(canonical)
		if key == "" || canonical == "" {
			continue
		}
		loaded = append(loaded, gpAlias{key: key, canonical: canonical})
	}
	n.aliases = append(loaded, n.aliases...)
	return nil
}

// Normalize resolves a raw GP mention ("Monaco", "2025 AUSSIE GP",
// "Formula 1 Heineken Dutch Grand Prix") to its canonical name. Returns
// "" when the text names no Grand Prix the normalizer knows.
func (n *Normalizer) Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	cleaned := strings.ToLower(strings.TrimSpace(raw))

	for _, a := range n.aliases {
		if strings.Contains(cleaned, a.key) {
			return a.canonical
		}
	}

	// "X Grand Prix" with an unknown X: trust the document and carry the
	// name through as-is. OpenF1 session search tokenizes it anyway.
	if m := gpSuffixRe.FindStringSubmatch(raw); m != nil {
		prefix := strings.ToLower(strings.TrimSpace(m[1]))
		for _, a := range n.aliases {
			if strings.Contains(prefix, a.key) || strings.Contains(a.key, prefix) {
				return a.canonical
			}
		}
		return m[1] + " Grand Prix"
	}

	return ""
}
