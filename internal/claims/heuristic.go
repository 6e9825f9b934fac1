package claims

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// minSeasonYear bounds filename/text year matches. OpenF1 coverage starts
// well after this, but documents do cite older seasons in prose.
const minSeasonYear = 2014

var (
	fileYearRe   = regexp.MustCompile(`(\d{4})[_\s]`)
	fileGPRe     = regexp.MustCompile(`(?i)_?(\w+(?:_\w+)?)(?:_Grand_Prix)?\.(?:pdf|txt)`)
	textGPYearRe = regexp.MustCompile(`(?i)(\d{4})\s+(\w+(?:\s+\w+)?)\s+Grand\s+Prix`)

	raceWordRe   = regexp.MustCompile(`(?i)\brace\b`)
	qualifWordRe = regexp.MustCompile(`(?i)\bqualif`)
	sprintWordRe = regexp.MustCompile(`(?i)\bsprint\b`)
)

// Heuristic is the result of the pattern-matching stage of metadata
// extraction. Zero / empty fields mean the pattern found nothing.
type Heuristic struct {
	Year        int
	GPName      string
	SessionType string
	Summary     string
}

// Confident reports whether the heuristic result is strong enough to
// skip the LLM stage entirely.
func (h Heuristic) Confident() bool {
	return h.Year != 0 && h.GPName != "" && h.GPName != "Unknown"
}

// ExtractHeuristic pulls session metadata out of the document filename
// and the first stretch of its text, without touching the LLM. Filename
// patterns like "2025_Australian_Grand_Prix.pdf" are the most reliable
// source; text patterns like "2025 Australian Grand Prix" back them up.
func ExtractHeuristic(filename, textExcerpt string, norm *Normalizer) Heuristic {
	var h Heuristic
	var notes []string
	maxYear := time.Now().Year() + 1

	if m := fileYearRe.FindStringSubmatch(filename); m != nil {
		if year, err := strconv.Atoi(m[1]); err == nil && year >= minSeasonYear && year <= maxYear {
			h.Year = year
			notes = append(notes, fmt.Sprintf("Year %d from filename", year))
		}
	}

	if m := fileGPRe.FindStringSubmatch(filename); m != nil {
		candidate := strings.ReplaceAll(m[1], "_", " ")
		if name := norm.Normalize(candidate); name != "" {
			h.GPName = name
			notes = append(notes, fmt.Sprintf("GP %q from filename", name))
		}
	}

	if m := textGPYearRe.FindStringSubmatch(textExcerpt); m != nil {
		if year, err := strconv.Atoi(m[1]); err == nil && year >= minSeasonYear && year <= maxYear && h.Year == 0 {
			h.Year = year
			notes = append(notes, fmt.Sprintf("Year %d from text", year))
		}
		if h.GPName == "" {
			if name := norm.Normalize(m[2]); name != "" {
				h.GPName = name
				notes = append(notes, fmt.Sprintf("GP %q from text", name))
			}
		}
	}

	switch {
	case raceWordRe.MatchString(textExcerpt):
		h.SessionType = "RACE"
		notes = append(notes, "Session type RACE from text")
	case qualifWordRe.MatchString(textExcerpt):
		h.SessionType = "QUALIFYING"
		notes = append(notes, "Session type QUALIFYING from text")
	case sprintWordRe.MatchString(textExcerpt):
		h.SessionType = "SPRINT"
		notes = append(notes, "Session type SPRINT from text")
	}

	if len(notes) == 0 {
		h.Summary = "No filename/text patterns matched"
	} else {
		h.Summary = strings.Join(notes, " | ")
	}
	return h
}
