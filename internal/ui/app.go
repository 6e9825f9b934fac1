package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// pane is the active screen.
type pane int

const (
	paneDocuments pane = iota
	paneTimeline
	paneDetail
)

// Config injects the commands the browser runs. The App never touches
// the store or the pipeline directly; it receives results via messages.
type Config struct {
	// LoadDocuments returns a Cmd that lists the ingested documents.
	LoadDocuments func() tea.Cmd

	// BuildTimeline returns a Cmd that builds the timeline for one
	// document.
	BuildTimeline func(documentID string) tea.Cmd
}

// App is the root Bubble Tea model.
type App struct {
	cfg Config

	pane      pane
	docs      []model.Document
	docCursor int

	timeline    *model.RaceTimeline
	builtFor    string
	eventCursor int

	spin     spinner.Model
	loading  bool
	building bool

	width  int
	height int
	ready  bool
	err    error
}

// NewApp creates the browser model.
func NewApp(cfg Config) App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return App{
		cfg:     cfg,
		pane:    paneDocuments,
		spin:    s,
		loading: cfg.LoadDocuments != nil,
	}
}

// Init starts the spinner and loads the document list.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spin.Tick}
	if a.cfg.LoadDocuments != nil {
		cmds = append(cmds, a.cfg.LoadDocuments())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case spinner.TickMsg:
		if !a.loading && !a.building {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case DocumentsLoaded:
		a.loading = false
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.docs = msg.Documents
		a.err = nil
		if a.docCursor >= len(a.docs) && len(a.docs) > 0 {
			a.docCursor = len(a.docs) - 1
		}
		return a, nil

	case TimelineBuilt:
		a.building = false
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		tl := msg.Timeline
		a.timeline = &tl
		a.builtFor = msg.DocumentID
		a.err = nil
		a.eventCursor = 0
		a.pane = paneTimeline
		return a, nil
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.err != nil {
		a.err = nil
	}

	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	switch a.pane {
	case paneDocuments:
		return a.handleDocumentsKey(msg)
	case paneTimeline:
		return a.handleTimelineKey(msg)
	case paneDetail:
		return a.handleDetailKey(msg)
	}
	return a, nil
}

func (a App) handleDocumentsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "j", "down":
		if a.docCursor < len(a.docs)-1 {
			a.docCursor++
		}

	case "k", "up":
		if a.docCursor > 0 {
			a.docCursor--
		}

	case "g", "home":
		a.docCursor = 0

	case "G", "end":
		if len(a.docs) > 0 {
			a.docCursor = len(a.docs) - 1
		}

	case "r":
		if a.cfg.LoadDocuments != nil {
			a.loading = true
			return a, tea.Batch(a.spin.Tick, a.cfg.LoadDocuments())
		}

	case "enter":
		return a.startBuild()
	}
	return a, nil
}

func (a App) handleTimelineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := 0
	if a.timeline != nil {
		count = len(a.timeline.Events)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "esc", "backspace":
		a.pane = paneDocuments

	case "j", "down":
		if a.eventCursor < count-1 {
			a.eventCursor++
		}

	case "k", "up":
		if a.eventCursor > 0 {
			a.eventCursor--
		}

	case "g", "home":
		a.eventCursor = 0

	case "G", "end":
		if count > 0 {
			a.eventCursor = count - 1
		}

	case "b":
		return a.startBuild()

	case "enter":
		if count > 0 {
			a.pane = paneDetail
		}
	}
	return a, nil
}

func (a App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "esc", "backspace", "enter":
		a.pane = paneTimeline

	case "j", "down":
		if a.timeline != nil && a.eventCursor < len(a.timeline.Events)-1 {
			a.eventCursor++
		}

	case "k", "up":
		if a.eventCursor > 0 {
			a.eventCursor--
		}
	}
	return a, nil
}

// startBuild kicks off a timeline build for the selected document.
func (a App) startBuild() (tea.Model, tea.Cmd) {
	if a.building || a.cfg.BuildTimeline == nil || len(a.docs) == 0 {
		return a, nil
	}
	doc := a.docs[a.docCursor]
	a.building = true
	return a, tea.Batch(a.spin.Tick, a.cfg.BuildTimeline(doc.ID))
}

// selectedEvent returns the event under the cursor, nil when none.
func (a App) selectedEvent() *model.TimelineEvent {
	if a.timeline == nil || a.eventCursor < 0 || a.eventCursor >= len(a.timeline.Events) {
		return nil
	}
	return &a.timeline.Events[a.eventCursor]
}

// View renders the active pane.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	switch a.pane {
	case paneTimeline:
		return a.viewTimeline()
	case paneDetail:
		return a.viewDetail()
	default:
		return a.viewDocuments()
	}
}
