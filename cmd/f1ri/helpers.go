package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/app"
	"github.com/mateluky/f1-race-intelligence/internal/config"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// openApp loads config, initializes stderr logging and assembles the
// application, or exits.
func openApp() *app.App {
	cfg, err := config.Load()
	if err != nil {
		fatalf("failed to load config: %v", err)
	}
	logging.InitConsole()

	a, err := app.New(cfg)
	if err != nil {
		fatalf("failed to start: %v", err)
	}
	return a
}

// resolveDoc maps a user-supplied identifier onto a stored document.
// Exact IDs, unique ID prefixes and unique name substrings all work.
func resolveDoc(a *app.App, id string) model.Document {
	id = strings.TrimSpace(id)
	if id == "" {
		fatalf("a document is required: pass -doc <id> (see 'f1ri documents')")
	}

	if doc, err := a.Document(id); err == nil {
		return doc
	}

	docs, err := a.ListDocuments()
	if err != nil {
		fatalf("failed to list documents: %v", err)
	}

	var matches []model.Document
	for _, doc := range docs {
		if strings.HasPrefix(doc.ID, id) ||
			strings.Contains(strings.ToLower(doc.Name), strings.ToLower(id)) {
			matches = append(matches, doc)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0]
	case 0:
		fmt.Fprintf(os.Stderr, "error: no document matches %q\n", id)
	default:
		fmt.Fprintf(os.Stderr, "error: %q is ambiguous, matches:\n", id)
		for _, doc := range matches {
			fmt.Fprintf(os.Stderr, "  %s  %s\n", doc.ID, doc.Name)
		}
	}
	if len(docs) == 0 {
		fmt.Fprintln(os.Stderr, "no documents ingested yet; run 'f1ri sample' or 'f1ri ingest <path>'")
	}
	os.Exit(1)
	return model.Document{}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatalf("failed to encode JSON: %v", err)
	}
	fmt.Println(string(data))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// lapLabel formats an event's lap column for terminal output.
func lapLabel(ev model.TimelineEvent) string {
	switch ev.Lap {
	case 0:
		return "—"
	case model.SessionEndLap:
		return "END"
	default:
		return fmt.Sprintf("L%d", ev.Lap)
	}
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
