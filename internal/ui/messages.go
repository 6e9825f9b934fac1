// Package ui provides the terminal timeline browser: pick an ingested
// document, build its race timeline, walk the events and inspect the
// citations and telemetry evidence behind each one.
package ui

import "github.com/mateluky/f1-race-intelligence/internal/model"

// DocumentsLoaded is sent when the document list has been read from the
// store.
type DocumentsLoaded struct {
	Documents []model.Document
	Err       error
}

// TimelineBuilt is sent when a timeline build finishes. A build that
// resolved no session still delivers a timeline; its diagnostics say why
// it is empty.
type TimelineBuilt struct {
	DocumentID string
	Timeline   model.RaceTimeline
	Err        error
}
