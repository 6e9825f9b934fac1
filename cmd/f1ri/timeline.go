package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/model"
)

func runTimeline() {
	fs := flag.NewFlagSet("timeline", flag.ExitOnError)
	docID := fs.String("doc", "", "Document id (or unique prefix/name)")
	year := fs.Int("year", 0, "Override the season instead of the extracted one")
	name := fs.String("name", "", "Override the event name instead of the extracted one")
	kind := fs.String("kind", "", "Override the session kind (race, qualifying, sprint...)")
	asJSON := fs.Bool("json", false, "Print the full timeline as JSON")
	fs.Parse(os.Args[1:])

	a := openApp()
	defer a.Close()
	ctx := context.Background()

	doc := resolveDoc(a, *docID)

	hints := model.SessionMetadata{Year: *year, EventName: *name}
	if *kind != "" {
		hints.Kind = model.ParseSessionKind(*kind)
	}

	tl, err := a.BuildTimelineWithHints(ctx, doc.ID, hints)
	if err != nil {
		fatalf("timeline build failed: %v", err)
	}

	if *asJSON {
		printJSON(tl)
		return
	}
	printTimeline(tl)
}

func printTimeline(tl model.RaceTimeline) {
	d := tl.Diagnostics

	if !d.SessionFound {
		fmt.Printf("Session not resolved: %s\n", d.FailureReason)
		if len(d.AvailableEvents) > 0 {
			fmt.Printf("Did you mean: %s\n", strings.Join(d.AvailableEvents, ", "))
		}
		if len(tl.Events) == 0 {
			return
		}
		fmt.Println("\nDocument-only timeline (no telemetry):")
	} else {
		fmt.Printf("%d %s (%s) — session %s\n",
			tl.Session.Year, tl.Session.EventName, tl.Session.Kind, tl.Session.SessionID)
	}

	if len(tl.Events) == 0 {
		fmt.Println("Session resolved, but no events were extracted.")
		return
	}

	fmt.Println()
	for _, ev := range tl.Events {
		fmt.Printf("%-5s %-18s %-52s %s\n",
			lapLabel(ev), ev.Kind, truncate(ev.Title, 52), ev.Confidence)
		if len(ev.Participants) > 0 {
			fmt.Printf("      drivers: %s\n", strings.Join(ev.Participants, ", "))
		}
	}

	fmt.Printf("\n%d events · document %d · telemetry %d · merged %d\n",
		len(tl.Events), d.DocumentEvents, d.TelemetryEvents, d.MergedEvents)
	if len(tl.DriversInvolved) > 0 {
		fmt.Printf("drivers involved: %s\n", strings.Join(tl.DriversInvolved, ", "))
	}
}
