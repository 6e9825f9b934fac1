package ingest

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	pageFooterRe = regexp.MustCompile(`Page \d+ of \d+`)
	urlRe        = regexp.MustCompile(`www\.\S+`)
	emailRe      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	pageMarkRe   = regexp.MustCompile(`\[PAGE (\d+)\]`)
)

// CleanText normalizes extracted document text: collapses whitespace,
// strips footer/URL/email noise and control characters, and rewrites
// page markers into the single-token [PAGE_n] form that survives
// whitespace collapsing and tokenized search.
func CleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = pageFooterRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, "")
	text = emailRe.ReplaceAllString(text, "")
	text = pageMarkRe.ReplaceAllString(text, "[PAGE_$1]")

	text = strings.Map(func(r rune) rune {
		if r >= 32 || r == '\n' || r == '\t' {
			return r
		}
		return -1
	}, text)

	// Removals above leave double spaces behind.
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
