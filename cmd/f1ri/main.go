// Command f1ri is the F1 race intelligence CLI.
//
// Usage:
//
//	f1ri                    Show help
//	f1ri ingest <path>      Ingest a race document (PDF or text)
//	f1ri sample             Ingest the bundled sample race report
//	f1ri documents          List ingested documents
//	f1ri reembed            Refresh stored chunk embeddings
//	f1ri sessions           Search remote sessions by year/name/kind
//	f1ri timeline           Build the race timeline for a document
//	f1ri brief              Full analysis brief for a document
//	f1ri ask                Ask a question about a document
//	f1ri story              Narrate a document's race in a given style
//	f1ri serve              Run the HTTP API
//	f1ri tui                Interactive timeline browser
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const usage = `f1ri — F1 race intelligence CLI

Usage:
  f1ri <command> [flags]

Commands:
  ingest <path>   Ingest a race document (PDF or plain text)
  sample          Ingest the bundled sample race report
  documents       List ingested documents (-json, -delete <id>)
  reembed         Refresh stored chunk embeddings [-doc <id>]
  sessions        Search sessions: -year 2023 [-name monaco] [-kind race]
  timeline        Build a timeline: -doc <id> [-year -name -kind] [-json]
  brief           Full analysis brief: -doc <id> [-question "..."] [-json]
  ask             Grounded Q&A: -doc <id> -q "..." [-k 3]
  story           Race narration: -doc <id> [-style fan|analyst|newbie]
  serve           HTTP API server [-addr :8080]
  tui             Interactive timeline browser

Environment:
  F1RI_DATA_DIR      Data directory (default ~/.f1ri)
  OPENF1_MODE        Telemetry mode: real or mock
  F1RI_LLM_MODE      LLM mode: ollama, openai or mock
  OPENAI_API_KEY     API key for openai mode
  OLLAMA_ENDPOINT    Ollama base URL (default http://localhost:11434)
  F1RI_EMBED_MODE    Embedder mode: ollama, jina or mock
  JINA_API_KEY       API key for jina embedder mode

Run 'f1ri <command> -h' for command-specific help.
`

func main() {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "ingest":
		runIngest()
	case "sample":
		runSample()
	case "documents":
		runDocuments()
	case "reembed":
		runReembed()
	case "sessions":
		runSessions()
	case "timeline":
		runTimeline()
	case "brief":
		runBrief()
	case "ask":
		runAsk()
	case "story":
		runStory()
	case "serve":
		runServe()
	case "tui":
		runTui()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "f1ri: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
