package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// mockCmds tracks which injected commands were called.
type mockCmds struct {
	loadCalled bool
	builtID    string
}

func (m *mockCmds) loadDocuments() tea.Cmd {
	m.loadCalled = true
	return func() tea.Msg {
		return DocumentsLoaded{Documents: []model.Document{
			{ID: "doc-1", Name: "monaco.pdf", Source: "pdf", ChunkCount: 12},
			{ID: "doc-2", Name: "silverstone.txt", Source: "text", ChunkCount: 8},
			{ID: "doc-3", Name: "sample", Source: "sample", ChunkCount: 5},
		}}
	}
}

func (m *mockCmds) buildTimeline(id string) tea.Cmd {
	m.builtID = id
	return func() tea.Msg {
		return TimelineBuilt{DocumentID: id, Timeline: model.RaceTimeline{DocumentID: id}}
	}
}

func newTestApp(m *mockCmds) App {
	return NewApp(Config{LoadDocuments: m.loadDocuments, BuildTimeline: m.buildTimeline})
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestAppInitLoadsDocuments(t *testing.T) {
	mock := &mockCmds{}
	app := newTestApp(mock)

	if cmd := app.Init(); cmd == nil {
		t.Fatal("Init should return a command")
	}
	if !mock.loadCalled {
		t.Error("Init should call LoadDocuments")
	}
	if !app.loading {
		t.Error("app should start in loading state")
	}
}

func TestDocumentsLoaded(t *testing.T) {
	mock := &mockCmds{}
	app := newTestApp(mock)

	msg := mock.loadDocuments()()
	updated, _ := app.Update(msg)
	a := updated.(App)

	if a.loading {
		t.Error("loading should clear once documents arrive")
	}
	if len(a.docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(a.docs))
	}
}

func TestDocumentsLoadedError(t *testing.T) {
	app := newTestApp(&mockCmds{})

	updated, _ := app.Update(DocumentsLoaded{Err: errors.New("store closed")})
	a := updated.(App)

	if a.err == nil {
		t.Error("load error should be kept for display")
	}
	if a.loading {
		t.Error("loading should clear on error")
	}
}

func TestDocumentNavigation(t *testing.T) {
	mock := &mockCmds{}
	app := newTestApp(mock)
	updated, _ := app.Update(mock.loadDocuments()())
	a := updated.(App)

	steps := []struct {
		key  tea.KeyMsg
		want int
	}{
		{keyRune('j'), 1},
		{keyRune('j'), 2},
		{keyRune('j'), 2}, // clamped at bottom
		{keyRune('k'), 1},
		{keyRune('g'), 0},
		{keyRune('k'), 0}, // clamped at top
		{keyRune('G'), 2},
		{tea.KeyMsg{Type: tea.KeyUp}, 1},
		{tea.KeyMsg{Type: tea.KeyDown}, 2},
	}
	for i, step := range steps {
		updated, _ = a.Update(step.key)
		a = updated.(App)
		if a.docCursor != step.want {
			t.Fatalf("step %d: cursor = %d, want %d", i, a.docCursor, step.want)
		}
	}
}

func TestEnterBuildsSelectedDocument(t *testing.T) {
	mock := &mockCmds{}
	app := newTestApp(mock)
	updated, _ := app.Update(mock.loadDocuments()())
	a := updated.(App)

	updated, _ = a.Update(keyRune('j'))
	a = updated.(App)
	updated, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = updated.(App)

	if mock.builtID != "doc-2" {
		t.Errorf("built document = %q, want doc-2", mock.builtID)
	}
	if !a.building {
		t.Error("building flag should be set")
	}
	if cmd == nil {
		t.Error("enter should return the build command")
	}
}

func TestEnterIgnoredWhileBuilding(t *testing.T) {
	mock := &mockCmds{}
	app := newTestApp(mock)
	updated, _ := app.Update(mock.loadDocuments()())
	a := updated.(App)
	a.building = true

	mock.builtID = ""
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if mock.builtID != "" || cmd != nil {
		t.Error("enter should be a no-op while a build is in flight")
	}
}

func TestTimelineBuiltSwitchesPane(t *testing.T) {
	app := newTestApp(&mockCmds{})
	app.building = true
	app.eventCursor = 7

	tl := model.RaceTimeline{
		DocumentID: "doc-1",
		Events: []model.TimelineEvent{
			{Lap: 12, Kind: model.KindVirtualSafetyCar, Title: "VSC deployed"},
			{Lap: 22, Kind: model.KindPitStop, Title: "Pit window"},
		},
	}
	tl.Diagnostics.SessionFound = true

	updated, _ := app.Update(TimelineBuilt{DocumentID: "doc-1", Timeline: tl})
	a := updated.(App)

	if a.pane != paneTimeline {
		t.Error("successful build should switch to the timeline pane")
	}
	if a.building {
		t.Error("building flag should clear")
	}
	if a.eventCursor != 0 {
		t.Error("event cursor should reset for a fresh timeline")
	}
	if a.timeline == nil || len(a.timeline.Events) != 2 {
		t.Fatal("timeline should be stored on the model")
	}
}

func TestTimelineBuildError(t *testing.T) {
	app := newTestApp(&mockCmds{})
	app.building = true

	updated, _ := app.Update(TimelineBuilt{Err: errors.New("document not found")})
	a := updated.(App)

	if a.pane != paneDocuments {
		t.Error("failed build should stay on the documents pane")
	}
	if a.err == nil {
		t.Error("build error should be kept for display")
	}
}

func TestTimelinePaneKeys(t *testing.T) {
	app := newTestApp(&mockCmds{})
	tl := model.RaceTimeline{Events: []model.TimelineEvent{
		{Lap: 1, Kind: model.KindIncident, Title: "Contact"},
		{Lap: 12, Kind: model.KindVirtualSafetyCar, Title: "VSC"},
		{Lap: 22, Kind: model.KindPitStop, Title: "Stops"},
	}}
	app.timeline = &tl
	app.pane = paneTimeline

	updated, _ := app.Update(keyRune('j'))
	a := updated.(App)
	if a.eventCursor != 1 {
		t.Fatalf("j should advance event cursor, got %d", a.eventCursor)
	}

	updated, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = updated.(App)
	if a.pane != paneDetail {
		t.Error("enter should open the detail pane")
	}

	updated, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = updated.(App)
	if a.pane != paneTimeline {
		t.Error("esc should return to the timeline pane")
	}

	updated, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = updated.(App)
	if a.pane != paneDocuments {
		t.Error("esc should return to the documents pane")
	}
}

func TestRebuildFromTimelinePane(t *testing.T) {
	mock := &mockCmds{}
	app := newTestApp(mock)
	updated, _ := app.Update(mock.loadDocuments()())
	a := updated.(App)
	a.pane = paneTimeline
	a.timeline = &model.RaceTimeline{}

	_, cmd := a.Update(keyRune('b'))
	if mock.builtID != "doc-1" {
		t.Errorf("b should rebuild the selected document, built %q", mock.builtID)
	}
	if cmd == nil {
		t.Error("b should return the build command")
	}
}

func TestDetailNavigationMovesEvent(t *testing.T) {
	app := newTestApp(&mockCmds{})
	app.timeline = &model.RaceTimeline{Events: []model.TimelineEvent{
		{Lap: 1, Title: "one"}, {Lap: 2, Title: "two"},
	}}
	app.pane = paneDetail

	updated, _ := app.Update(keyRune('j'))
	a := updated.(App)
	if a.eventCursor != 1 {
		t.Errorf("j in detail should step to the next event, got %d", a.eventCursor)
	}
	if a.pane != paneDetail {
		t.Error("stepping should stay in the detail pane")
	}
}

func TestViewDistinguishesEmptyFromUnresolved(t *testing.T) {
	app := newTestApp(&mockCmds{})
	updated, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	app = updated.(App)
	app.pane = paneTimeline

	resolved := model.RaceTimeline{}
	resolved.Diagnostics.SessionFound = true
	resolved.Diagnostics.SessionID = "9158"
	app.timeline = &resolved
	if view := app.View(); !strings.Contains(view, "no events were extracted") {
		t.Errorf("resolved-but-empty timeline should say so, got:\n%s", view)
	}

	failed := model.RaceTimeline{}
	failed.Diagnostics.SessionFound = false
	failed.Diagnostics.FailureReason = "no session found for 2024 Unknown"
	failed.Diagnostics.AvailableEvents = []string{"Monaco", "Monza"}
	app.timeline = &failed
	view := app.View()
	if !strings.Contains(view, "no session found for 2024 Unknown") {
		t.Errorf("unresolved timeline should show the failure reason, got:\n%s", view)
	}
	if !strings.Contains(view, "Monaco") {
		t.Errorf("unresolved timeline should list alternatives, got:\n%s", view)
	}
}

func TestViewShowsDiagnosticsFooter(t *testing.T) {
	app := newTestApp(&mockCmds{})
	updated, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	app = updated.(App)
	app.pane = paneTimeline

	tl := model.RaceTimeline{
		Session: model.SessionDescriptor{Year: 2023, EventName: "Monaco Grand Prix", Kind: model.SessionRace, SessionID: "9158"},
		Events:  []model.TimelineEvent{{Lap: 12, Kind: model.KindVirtualSafetyCar, Title: "VSC"}},
	}
	tl.Diagnostics.SessionFound = true
	tl.Diagnostics.SessionID = "9158"
	tl.Diagnostics.TelemetryEvents = 1
	tl.Diagnostics.MergedEvents = 1
	app.timeline = &tl

	view := app.View()
	if !strings.Contains(view, "9158") {
		t.Errorf("diagnostics footer should carry the session id, got:\n%s", view)
	}
	if !strings.Contains(view, "Monaco Grand Prix") {
		t.Errorf("title should carry the resolved event, got:\n%s", view)
	}
}

func TestLapLabel(t *testing.T) {
	tests := []struct {
		lap  int
		want string
	}{
		{0, "—"},
		{1, "L1"},
		{57, "L57"},
		{model.SessionEndLap, "END"},
	}
	for _, tt := range tests {
		if got := lapLabel(model.TimelineEvent{Lap: tt.lap}); got != tt.want {
			t.Errorf("lapLabel(%d) = %q, want %q", tt.lap, got, tt.want)
		}
	}
}

func TestScrollOffset(t *testing.T) {
	tests := []struct {
		name    string
		cursor  int
		count   int
		visible int
		want    int
	}{
		{"all fit", 3, 5, 10, 0},
		{"cursor above window", 2, 50, 10, 0},
		{"cursor forces scroll", 15, 50, 10, 6},
		{"cursor at end", 49, 50, 10, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scrollOffset(tt.cursor, tt.count, tt.visible); got != tt.want {
				t.Errorf("scrollOffset(%d, %d, %d) = %d, want %d",
					tt.cursor, tt.count, tt.visible, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate should keep short strings, got %q", got)
	}
	if got := truncate("a very long title indeed", 10); got != "a very ..." {
		t.Errorf("truncate = %q", got)
	}
}
