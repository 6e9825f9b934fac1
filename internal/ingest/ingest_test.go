package ingest

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses whitespace",
			in:   "one  two\n\nthree\tfour",
			want: "one two three four",
		},
		{
			name: "strips page footer",
			in:   "results Page 3 of 12 continued",
			want: "results continued",
		},
		{
			name: "strips urls and emails",
			in:   "see www.fia.com/docs or media@fia.com for details",
			want: "see or for details",
		},
		{
			name: "rewrites page markers",
			in:   "[PAGE 2] lap chart",
			want: "[PAGE_2] lap chart",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First lap was clean. Then rain arrived! Who pitted? Nobody")
	want := []string{"First lap was clean.", "Then rain arrived!", "Who pitted?", "Nobody"}
	if len(got) != len(want) {
		t.Fatalf("splitSentences() returned %d sentences, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitSentencesKeepsDecimals(t *testing.T) {
	got := splitSentences("The stop took 2.3 seconds. Impressive.")
	if len(got) != 2 {
		t.Fatalf("splitSentences() = %v, want 2 sentences", got)
	}
	if !strings.Contains(got[0], "2.3 seconds") {
		t.Errorf("decimal was split: %q", got[0])
	}
}

func TestChunkTextRespectsSize(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Verstappen posted another quick lap and extended the gap out front. ")
	}
	opts := Options{ChunkSize: 200, ChunkOverlap: 50, MinChunkLength: 50, MaxChunkLength: 2000}
	chunks := ChunkText(b.String(), opts)

	if len(chunks) < 2 {
		t.Fatalf("ChunkText() produced %d chunks, want several", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > opts.ChunkSize+opts.ChunkOverlap+1 {
			t.Errorf("chunk[%d] length %d exceeds size+overlap", i, len(c))
		}
		if len(c) < opts.MinChunkLength {
			t.Errorf("chunk[%d] length %d below minimum", i, len(c))
		}
	}
}

func TestChunkTextOverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("The pit window opened on lap sixteen for the leaders. ", 10)
	opts := Options{ChunkSize: 150, ChunkOverlap: 40, MinChunkLength: 50, MaxChunkLength: 2000}
	chunks := ChunkText(text, opts)
	if len(chunks) < 2 {
		t.Fatalf("need at least 2 chunks, got %d", len(chunks))
	}
	// Each chunk after the first starts with the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		head := chunks[i][:20]
		if !strings.Contains(chunks[i-1], strings.TrimSpace(head)) {
			t.Errorf("chunk[%d] head %q not found in chunk[%d]", i, head, i-1)
		}
	}
}

func TestChunkTextDropsShort(t *testing.T) {
	chunks := ChunkText("Too short.", DefaultOptions())
	if len(chunks) != 0 {
		t.Errorf("ChunkText(short) = %v, want none", chunks)
	}
}

func TestIngestTextAttributesPages(t *testing.T) {
	text := "[PAGE 1] " + strings.Repeat("Opening phase analysis with plenty of detail to fill a chunk. ", 12) +
		"[PAGE 2] " + strings.Repeat("Second page strategy discussion with more detail again. ", 12)
	doc, chunks, err := IngestText("report.txt", text, Options{ChunkSize: 240, ChunkOverlap: 0, MinChunkLength: 50, MaxChunkLength: 2000})
	if err != nil {
		t.Fatalf("IngestText() error = %v", err)
	}
	if doc.ID == "" {
		t.Error("document ID is empty")
	}
	if doc.ChunkCount != len(chunks) {
		t.Errorf("ChunkCount = %d, want %d", doc.ChunkCount, len(chunks))
	}
	if chunks[0].Page != 1 {
		t.Errorf("first chunk page = %d, want 1", chunks[0].Page)
	}
	last := chunks[len(chunks)-1]
	if last.Page != 2 {
		t.Errorf("last chunk page = %d, want 2", last.Page)
	}
	for i, c := range chunks {
		if c.DocumentID != doc.ID {
			t.Errorf("chunk[%d] document ID mismatch", i)
		}
		if c.Index != i {
			t.Errorf("chunk[%d] index = %d", i, c.Index)
		}
	}
}

func TestIngestTextRejectsEmpty(t *testing.T) {
	if _, _, err := IngestText("empty.txt", "   ", DefaultOptions()); err == nil {
		t.Error("IngestText(empty) error = nil, want error")
	}
}

func TestSampleDocumentIngests(t *testing.T) {
	doc, chunks, err := IngestText(SampleName, SampleDocument(), DefaultOptions())
	if err != nil {
		t.Fatalf("IngestText(sample) error = %v", err)
	}
	if len(chunks) < 3 {
		t.Errorf("sample produced %d chunks, want several", len(chunks))
	}
	if !strings.Contains(doc.Text, "MONACO GRAND PRIX 2023") {
		t.Error("sample text lost its title during cleaning")
	}
}
