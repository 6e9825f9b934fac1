package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// Event kind colors, one hue per family: cautions warm, pit/strategy
// cool, on-track action green.
var kindColors = map[model.EventKind]lipgloss.Color{
	model.KindSafetyCar:        lipgloss.Color("#ffa657"), // orange
	model.KindVirtualSafetyCar: lipgloss.Color("#d29922"), // amber
	model.KindRedFlag:          lipgloss.Color("#f85149"), // red
	model.KindYellowFlag:       lipgloss.Color("#e3b341"), // yellow
	model.KindPitStop:          lipgloss.Color("#58a6ff"), // blue
	model.KindStrategyChange:   lipgloss.Color("#d2a8ff"), // purple
	model.KindWeather:          lipgloss.Color("#a5d6ff"), // light blue
	model.KindIncident:         lipgloss.Color("#ff7b72"), // coral
	model.KindPaceChange:       lipgloss.Color("#7ee787"), // light green
	model.KindOvertake:         lipgloss.Color("#3fb950"), // green
	model.KindPositionChange:   lipgloss.Color("#56d364"), // green
	model.KindStartingGrid:     lipgloss.Color("#8b949e"), // gray
	model.KindSessionResult:    lipgloss.Color("#c9d1d9"), // white
	model.KindInfo:             lipgloss.Color("#8b949e"), // gray
}

// Badge abbreviations keep event lines narrow.
var kindBadges = map[model.EventKind]string{
	model.KindSafetyCar:        "SC",
	model.KindVirtualSafetyCar: "VSC",
	model.KindRedFlag:          "RED",
	model.KindYellowFlag:       "YEL",
	model.KindPitStop:          "PIT",
	model.KindStrategyChange:   "STR",
	model.KindWeather:          "WX",
	model.KindIncident:         "INC",
	model.KindPaceChange:       "PACE",
	model.KindOvertake:         "OVT",
	model.KindPositionChange:   "POS",
	model.KindStartingGrid:     "GRID",
	model.KindSessionResult:    "RES",
	model.KindInfo:             "INFO",
}

// KindBadge renders the colored abbreviation for an event kind, padded to
// a fixed width so event lines align.
func KindBadge(kind model.EventKind) string {
	badge, ok := kindBadges[kind]
	if !ok {
		badge = "INFO"
	}
	color, ok := kindColors[kind]
	if !ok {
		color = lipgloss.Color("#8b949e")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Width(4).Render(badge)
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#58a6ff")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	confidenceStyles = map[model.Confidence]lipgloss.Style{
		model.ConfidenceHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#3fb950")),
		model.ConfidenceMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#d29922")),
		model.ConfidenceLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e")),
	}

	diagnosticsStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d29922")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	statusKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 2)

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#8b949e"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3fb950"))
)
