package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/brief"
	"github.com/mateluky/f1-race-intelligence/internal/model"
)

func runBrief() {
	fs := flag.NewFlagSet("brief", flag.ExitOnError)
	docID := fs.String("doc", "", "Document id (or unique prefix/name)")
	question := fs.String("question", "", "Also answer this question from the document")
	asJSON := fs.Bool("json", false, "Print the full brief as JSON")
	fs.Parse(os.Args[1:])

	a := openApp()
	defer a.Close()
	ctx := context.Background()

	doc := resolveDoc(a, *docID)

	b, err := a.BuildBrief(ctx, doc.ID)
	if err != nil {
		fatalf("brief build failed: %v", err)
	}

	if *asJSON {
		printJSON(b)
	} else {
		printBrief(b)
	}

	if *question != "" {
		ans, err := a.Ask(ctx, doc.ID, *question, 0)
		if err != nil {
			fatalf("question failed: %v", err)
		}
		fmt.Println()
		printAnswer(ans.Question, ans.Answer, ans.Sources)
	}
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	docID := fs.String("doc", "", "Document id (or unique prefix/name)")
	question := fs.String("q", "", "Question to answer from the document")
	topK := fs.Int("k", 0, "Passages to retrieve (default 3)")
	asJSON := fs.Bool("json", false, "Print the answer as JSON")
	fs.Parse(os.Args[1:])

	if *question == "" {
		fatalf("usage: f1ri ask -doc <id> -q \"...\"")
	}

	a := openApp()
	defer a.Close()

	doc := resolveDoc(a, *docID)

	ans, err := a.Ask(context.Background(), doc.ID, *question, *topK)
	if err != nil {
		fatalf("ask failed: %v", err)
	}

	if *asJSON {
		printJSON(ans)
		return
	}
	printAnswer(ans.Question, ans.Answer, ans.Sources)
}

func printBrief(b brief.Brief) {
	fmt.Printf("=== %d %s (%s) ===\n", b.Session.Year, b.Session.EventName, b.Session.Kind)
	if b.ExecutiveSummary != "" {
		fmt.Printf("\n%s\n", b.ExecutiveSummary)
	}

	if len(b.Entities.Drivers) > 0 || len(b.Entities.Teams) > 0 {
		fmt.Println()
		if len(b.Entities.Drivers) > 0 {
			fmt.Printf("Drivers: %s\n", joinTruncated(b.Entities.Drivers, 100))
		}
		if len(b.Entities.Teams) > 0 {
			fmt.Printf("Teams:   %s\n", joinTruncated(b.Entities.Teams, 100))
		}
	}

	fmt.Printf("\nClaims (%d): %d supported, %d contradicted, %d unclear, %d insufficient data (avg confidence %.2f)\n",
		b.Stats.Total, b.Stats.Supported, b.Stats.Contradicted,
		b.Stats.Unclear, b.Stats.InsufficientData, b.Stats.AvgConfidence)
	for _, c := range b.Claims {
		fmt.Printf("  %s %s\n", verdictGlyph(c.Status), truncate(c.Text, 90))
	}

	fmt.Printf("\nTimeline: %d events", len(b.Timeline.Events))
	if !b.Timeline.Diagnostics.SessionFound {
		fmt.Printf(" (session not resolved: %s)", b.Timeline.Diagnostics.FailureReason)
	}
	fmt.Println()

	if len(b.ActionItems) > 0 {
		fmt.Println("\nAction items:")
		for _, item := range b.ActionItems {
			fmt.Printf("  - %s\n    cause: %s\n    action: %s\n",
				item.Issue, item.LikelyCause, item.RecommendedAction)
		}
	}

	if len(b.FollowUps) > 0 {
		fmt.Println("\nFollow-up questions:")
		for _, q := range b.FollowUps {
			fmt.Printf("  - %s\n", q)
		}
	}

	if len(b.Questions) > 0 {
		fmt.Println("\nSuggested questions:")
		for _, q := range b.Questions {
			fmt.Printf("  - %s [%s]\n", q.Question, q.SuggestedEvidence)
		}
	}
}

func printAnswer(question, answer string, sources []model.Citation) {
	fmt.Printf("Q: %s\n", question)
	fmt.Printf("A: %s\n", answer)
	if len(sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range sources {
			fmt.Printf("  [%s] %.2f  %s\n", src.ChunkID, src.Score, truncate(src.Snippet, 80))
		}
	}
}

func verdictGlyph(status model.ClaimStatus) string {
	switch status {
	case model.ClaimSupported:
		return "✓"
	case model.ClaimContradicted:
		return "✗"
	case model.ClaimInsufficientData:
		return "∅"
	default:
		return "?"
	}
}

func joinTruncated(items []string, max int) string {
	return truncate(strings.Join(items, ", "), max)
}
