package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mateluky/f1-race-intelligence/internal/app"
	"github.com/mateluky/f1-race-intelligence/internal/config"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/ui"
)

func runTui() {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fatalf("failed to load config: %v", err)
	}

	// The TUI owns the terminal, so logs go to a file under the data dir.
	if err := logging.Init(cfg.DataDir); err != nil {
		fatalf("failed to init logging: %v", err)
	}
	defer logging.Close()

	a, err := app.New(cfg)
	if err != nil {
		fatalf("failed to start: %v", err)
	}
	defer a.Close()

	uiCfg := ui.Config{
		LoadDocuments: func() tea.Cmd {
			return func() tea.Msg {
				docs, err := a.ListDocuments()
				return ui.DocumentsLoaded{Documents: docs, Err: err}
			}
		},
		BuildTimeline: func(documentID string) tea.Cmd {
			return func() tea.Msg {
				tl, err := a.BuildTimeline(context.Background(), documentID)
				return ui.TimelineBuilt{DocumentID: documentID, Timeline: tl, Err: err}
			}
		},
	}

	p := tea.NewProgram(ui.NewApp(uiCfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
