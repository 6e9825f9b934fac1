package openf1

import (
	"strings"
)

// nameStopwords are tokens that carry no signal when matching a Grand
// Prix name against session records.
var nameStopwords = map[string]bool{
	"grand":        true,
	"prix":         true,
	"gp":           true,
	"formula":      true,
	"f1":           true,
	"the":          true,
	"fia":          true,
	"championship": true,
}

// demonymAliases expands nationality-style GP names into the country,
// city, and circuit tokens OpenF1 uses in its session records.
var demonymAliases = map[string][]string{
	"abu":           {"abu", "dhabi", "yas"},
	"dhabi":         {"abu", "dhabi", "yas"},
	"american":      {"united", "states", "austin", "cota"},
	"australian":    {"australia", "melbourne", "albert"},
	"austrian":      {"austria", "spielberg", "red", "bull", "ring"},
	"azerbaijan":    {"azerbaijan", "baku"},
	"bahrain":       {"bahrain", "sakhir"},
	"belgian":       {"belgium", "spa", "francorchamps"},
	"brazilian":     {"brazil", "sao", "paulo", "interlagos"},
	"british":       {"great", "britain", "united", "kingdom", "silverstone"},
	"canadian":      {"canada", "montreal", "villeneuve"},
	"chinese":       {"china", "shanghai"},
	"dutch":         {"netherlands", "zandvoort"},
	"emilia":        {"emilia", "romagna", "imola", "italy"},
	"hungarian":     {"hungary", "budapest", "hungaroring"},
	"italian":       {"italy", "monza"},
	"japanese":      {"japan", "suzuka"},
	"las":           {"las", "vegas", "united", "states"},
	"vegas":         {"las", "vegas", "united", "states"},
	"mexican":       {"mexico", "city", "rodriguez"},
	"mexico":        {"mexico", "city", "rodriguez"},
	"miami":         {"miami", "united", "states"},
	"monaco":        {"monaco", "monte", "carlo"},
	"qatar":         {"qatar", "lusail"},
	"romagna":       {"emilia", "romagna", "imola", "italy"},
	"russian":       {"russia", "sochi"},
	"saudi":         {"saudi", "arabia", "jeddah"},
	"singapore":     {"singapore", "marina", "bay"},
	"spanish":       {"spain", "barcelona", "catalunya"},
	"styrian":       {"austria", "spielberg"},
	"turkish":       {"turkey", "istanbul"},
	"united":        {"united", "states", "austin", "cota"},
	"states":        {"united", "states", "austin", "cota"},
	"sakhir":        {"bahrain", "sakhir"},
	"portuguese":    {"portugal", "portimao", "algarve"},
	"french":        {"france", "paul", "ricard", "castellet"},
	"german":        {"germany", "hockenheim", "nurburgring"},
	"eifel":         {"germany", "nurburgring"},
	"tuscan":        {"italy", "mugello"},
	"san":           {"san", "marino", "imola"},
	"vietnamese":    {"vietnam", "hanoi"},
	"indian":        {"india", "buddh"},
	"korean":        {"korea", "yeongam"},
	"malaysian":     {"malaysia", "sepang"},
	"european":      {"europe", "valencia", "baku"},
	"international": {"bahrain", "sakhir"},
}

// nameTokens lowercases, splits, and strips stopwords from an event
// name, expanding known aliases so "Dutch Grand Prix" can meet
// "Zandvoort" halfway.
func nameTokens(name string) []string {
	fields := strings.Fields(strings.ToLower(name))
	seen := make(map[string]bool)
	var tokens []string
	add := func(tok string) {
		tok = strings.Trim(tok, ".,;:!?()[]'\"")
		if tok == "" || nameStopwords[tok] || seen[tok] || isNumeric(tok) {
			return
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	for _, f := range fields {
		add(f)
		for _, alias := range demonymAliases[strings.Trim(f, ".,;:!?()[]'\"")] {
			add(alias)
		}
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// sessionMatchesName reports whether a sessions record plausibly
// belongs to the named Grand Prix. It compares expanded name tokens
// against the record's location fields.
func sessionMatchesName(rec Record, eventName string) bool {
	tokens := nameTokens(eventName)
	if len(tokens) == 0 {
		return true
	}

	haystack := strings.ToLower(strings.Join([]string{
		rec.Str("country_name"),
		rec.Str("location"),
		rec.Str("circuit_short_name"),
		rec.Str("meeting_name"),
		rec.Str("gp_name"),
	}, " "))

	for _, tok := range tokens {
		if strings.Contains(haystack, tok) {
			return true
		}
	}
	return false
}

// EventLabel renders a human-readable name for a sessions record,
// preferring the explicit meeting name over location fields.
func EventLabel(rec Record) string {
	for _, key := range []string{"meeting_name", "gp_name", "country_name", "location", "circuit_short_name"} {
		if v := rec.Str(key); v != "" {
			return v
		}
	}
	return "unknown event"
}
