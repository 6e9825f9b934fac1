package ui

import (
	"fmt"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// chrome rows reserved around list content: title, footer, status bar.
const chromeLines = 3

func (a App) viewDocuments() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("F1 Race Intelligence — documents"))
	b.WriteString("\n")

	switch {
	case a.loading:
		b.WriteString(normalStyle.Render(a.spin.View() + " Loading documents..."))
		b.WriteString("\n")
	case a.building:
		b.WriteString(normalStyle.Render(a.spin.View() + " Building timeline..."))
		b.WriteString("\n")
	case len(a.docs) == 0:
		b.WriteString(helpStyle.Render("No documents ingested yet. Run 'f1ri sample' or 'f1ri ingest <path>' first."))
		b.WriteString("\n")
	default:
		visible := a.height - chromeLines
		if visible < 1 {
			visible = 1
		}
		offset := scrollOffset(a.docCursor, len(a.docs), visible)
		for i := offset; i < len(a.docs) && i < offset+visible; i++ {
			b.WriteString(renderDocLine(a.docs[i], i == a.docCursor, a.width))
			b.WriteString("\n")
		}
	}

	b.WriteString(a.errorBar())
	b.WriteString(statusBar(a.width,
		"↑/↓", "move", "enter", "build timeline", "r", "reload", "q", "quit"))
	return b.String()
}

func (a App) viewTimeline() string {
	t := a.timeline
	if t == nil {
		return helpStyle.Render("No timeline built yet.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(timelineTitle(t)))
	b.WriteString("\n")

	if a.building {
		b.WriteString(normalStyle.Render(a.spin.View() + " Rebuilding timeline..."))
		b.WriteString("\n")
	} else if len(t.Events) == 0 {
		b.WriteString(helpStyle.Render(emptyTimelineNotice(t)))
		b.WriteString("\n")
	} else {
		visible := a.height - chromeLines - 1 // one extra row for diagnostics
		if visible < 1 {
			visible = 1
		}
		offset := scrollOffset(a.eventCursor, len(t.Events), visible)
		for i := offset; i < len(t.Events) && i < offset+visible; i++ {
			b.WriteString(renderEventLine(t.Events[i], i == a.eventCursor, a.width))
			b.WriteString("\n")
		}
	}

	b.WriteString(renderDiagnostics(t))
	b.WriteString("\n")
	b.WriteString(a.errorBar())
	b.WriteString(statusBar(a.width,
		"↑/↓", "move", "enter", "detail", "b", "rebuild", "esc", "back", "q", "quit"))
	return b.String()
}

func (a App) viewDetail() string {
	ev := a.selectedEvent()
	if ev == nil {
		return helpStyle.Render("No event selected.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %s", lapLabel(*ev), ev.Title)))
	b.WriteString("\n")

	b.WriteString(" ")
	b.WriteString(KindBadge(ev.Kind))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(ev.Kind.DisplayName()))
	b.WriteString("  ")
	b.WriteString(renderConfidence(ev.Confidence))
	if ev.Timestamp != "" {
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(ev.Timestamp))
	}
	b.WriteString("\n\n")

	b.WriteString(" " + truncate(ev.Description, maxLineWidth(a.width)))
	b.WriteString("\n")

	if ev.ImpactSummary != "" {
		b.WriteString("\n")
		b.WriteString(" " + detailLabelStyle.Render("Impact"))
		b.WriteString("\n ")
		b.WriteString(truncate(ev.ImpactSummary, maxLineWidth(a.width)))
		b.WriteString("\n")
	}

	if len(ev.Participants) > 0 {
		b.WriteString("\n")
		b.WriteString(" " + detailLabelStyle.Render("Drivers involved"))
		b.WriteString("\n ")
		b.WriteString(truncate(strings.Join(ev.Participants, ", "), maxLineWidth(a.width)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(" " + detailLabelStyle.Render(fmt.Sprintf("Document citations (%d)", len(ev.Citations))))
	b.WriteString("\n")
	for _, c := range ev.Citations {
		line := fmt.Sprintf(" [%s] %.2f", c.ChunkID, c.Score)
		if c.Page > 0 {
			line += fmt.Sprintf(" p%d", c.Page)
		}
		line += " — " + c.Snippet
		b.WriteString(truncate(line, maxLineWidth(a.width)))
		b.WriteString("\n")
	}
	if len(ev.Citations) == 0 {
		b.WriteString(dimStyle.Render(" none"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(" " + detailLabelStyle.Render(fmt.Sprintf("Telemetry evidence (%d)", len(ev.Evidence))))
	b.WriteString("\n")
	for _, e := range ev.Evidence {
		b.WriteString(truncate(fmt.Sprintf(" [%s] %s", e.Kind, e.Snippet), maxLineWidth(a.width)))
		b.WriteString("\n")
	}
	if len(ev.Evidence) == 0 {
		b.WriteString(dimStyle.Render(" none"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(statusBar(a.width,
		"↑/↓", "prev/next event", "esc", "back", "q", "quit"))
	return b.String()
}

func (a App) errorBar() string {
	if a.err == nil {
		return ""
	}
	return errorStyle.Render("Error: "+a.err.Error()+" (press any key to dismiss)") + "\n"
}

func renderDocLine(doc model.Document, selected bool, width int) string {
	meta := "metadata pending"
	if doc.Metadata.EventNameKnown() {
		meta = fmt.Sprintf("%d %s", doc.Metadata.Year, doc.Metadata.EventName)
	}
	line := fmt.Sprintf("%-30s %-7s %3d chunks  %s",
		truncate(doc.Name, 30), doc.Source, doc.ChunkCount, meta)

	style := normalStyle
	if selected {
		style = selectedStyle
	}
	return style.Render(truncate(line, maxLineWidth(width)))
}

func renderEventLine(ev model.TimelineEvent, selected bool, width int) string {
	line := fmt.Sprintf("%-5s %s %s",
		lapLabel(ev), KindBadge(ev.Kind), truncate(ev.Title, 52))
	line += "  " + renderConfidence(ev.Confidence)

	if selected {
		return selectedStyle.Render("> " + line)
	}
	return normalStyle.Render("  " + line)
}

// lapLabel formats the lap column: "L12" for numbered laps, "—" for
// lap-less events, "END" for the session-result sentinel.
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

func renderConfidence(c model.Confidence) string {
	style, ok := confidenceStyles[c]
	if !ok {
		style = dimStyle
	}
	return style.Render(string(c))
}

func timelineTitle(t *model.RaceTimeline) string {
	if t.Session.SessionID != "" {
		return fmt.Sprintf("%d %s (%s) — %d events",
			t.Session.Year, t.Session.EventName, t.Session.Kind, len(t.Events))
	}
	return fmt.Sprintf("Timeline — %d events", len(t.Events))
}

// emptyTimelineNotice tells "no events happened" apart from "the session
// could not be resolved".
func emptyTimelineNotice(t *model.RaceTimeline) string {
	if t.Diagnostics.SessionFound {
		return "Session resolved, but no events were extracted."
	}
	notice := "Session not resolved: " + t.Diagnostics.FailureReason
	if len(t.Diagnostics.AvailableEvents) > 0 {
		notice += "\nDid you mean: " + strings.Join(t.Diagnostics.AvailableEvents, ", ")
	}
	return notice
}

// renderDiagnostics is the one-line build summary under the event list.
func renderDiagnostics(t *model.RaceTimeline) string {
	d := t.Diagnostics
	if !d.SessionFound {
		return warnStyle.Render(truncate("⚠ "+d.FailureReason, 120))
	}
	return diagnosticsStyle.Render(fmt.Sprintf(
		"session %s · telemetry %d · document %d · merged %d",
		d.SessionID, d.TelemetryEvents, d.DocumentEvents, d.MergedEvents))
}

func statusBar(width int, pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, statusKeyStyle.Render(pairs[i])+" "+pairs[i+1])
	}
	bar := strings.Join(parts, "  ·  ")
	if width > 0 {
		return statusBarStyle.Width(width).Render(bar)
	}
	return statusBarStyle.Render(bar)
}

// scrollOffset keeps the cursor visible in a window of `visible` rows.
func scrollOffset(cursor, count, visible int) int {
	if count <= visible || cursor < visible {
		return 0
	}
	offset := cursor - visible + 1
	if offset > count-visible {
		offset = count - visible
	}
	return offset
}

func maxLineWidth(width int) int {
	if width <= 0 {
		return 120
	}
	if width < 20 {
		return 20
	}
	return width - 2
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
