package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mateluky/f1-race-intelligence/internal/openf1"
)

func runSessions() {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	year := fs.Int("year", time.Now().Year(), "Season to search")
	name := fs.String("name", "", "Event name filter (country, circuit or GP name)")
	kind := fs.String("kind", "", "Session kind filter (race, qualifying, sprint, fp1...)")
	asJSON := fs.Bool("json", false, "Print matching sessions as JSON")
	fs.Parse(os.Args[1:])

	a := openApp()
	defer a.Close()

	recs := a.Sessions(context.Background(), *year, *name, *kind)

	if *asJSON {
		printJSON(recs)
		return
	}

	if len(recs) == 0 {
		fmt.Printf("No sessions matched year=%d name=%q kind=%q\n", *year, *name, *kind)
		return
	}

	fmt.Printf("%-8s %-28s %-14s %-18s %s\n", "KEY", "EVENT", "SESSION", "LOCATION", "DATE")
	for _, rec := range recs {
		date := rec.Str("date_start")
		if len(date) > 10 {
			date = date[:10]
		}
		fmt.Printf("%-8s %-28s %-14s %-18s %s\n",
			rec.Str("session_key"),
			truncate(openf1.EventLabel(rec), 28),
			rec.Str("session_name"),
			truncate(rec.Str("location"), 18),
			date)
	}
	fmt.Printf("\n%d sessions\n", len(recs))
}
