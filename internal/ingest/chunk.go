package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// splitSentences cuts text after sentence-ending punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !isSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// ChunkText splits cleaned text into overlapping chunks, preferring
// sentence boundaries. Oversized sentences fall back to newline then
// word splits. Chunks shorter than MinChunkLength are dropped.
func ChunkText(text string, opts Options) []string {
	opts = opts.withDefaults()
	sentences := splitSentences(text)

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		if len(current)+len(sentence) <= opts.ChunkSize {
			if current == "" {
				current = sentence
			} else {
				current += " " + sentence
			}
			continue
		}

		if strings.TrimSpace(current) != "" {
			chunks = append(chunks, strings.TrimSpace(current))
		}
		current = ""

		if len(sentence) > opts.ChunkSize {
			chunks = append(chunks, splitOversized(sentence, opts.ChunkSize)...)
		} else {
			current = sentence
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	if opts.ChunkOverlap > 0 {
		overlapped := make([]string, 0, len(chunks))
		for i, chunk := range chunks {
			if i > 0 {
				prev := chunks[i-1]
				tail := prev
				if len(prev) > opts.ChunkOverlap {
					tail = prev[len(prev)-opts.ChunkOverlap:]
				}
				chunk = tail + " " + chunk
			}
			overlapped = append(overlapped, chunk)
		}
		chunks = overlapped
	}

	var final []string
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if len(chunk) < opts.MinChunkLength {
			continue
		}
		if len(chunk) > opts.MaxChunkLength {
			chunk = chunk[:opts.MaxChunkLength]
		}
		final = append(final, chunk)
	}
	return final
}

// splitOversized breaks a sentence longer than the chunk size, first on
// newlines, then on word boundaries.
func splitOversized(sentence string, chunkSize int) []string {
	var parts []string
	for _, part := range strings.Split(sentence, "\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if len(part) <= chunkSize {
			parts = append(parts, part)
			continue
		}
		words := strings.Fields(part)
		piece := ""
		for _, word := range words {
			if len(piece)+len(word) <= chunkSize {
				if piece == "" {
					piece = word
				} else {
					piece += " " + word
				}
			} else {
				if piece != "" {
					parts = append(parts, piece)
				}
				piece = word
			}
		}
		if piece != "" {
			parts = append(parts, piece)
		}
	}
	return parts
}

var pageTokenRe = regexp.MustCompile(`\[PAGE_(\d+)\]`)

// attributePages wraps chunk strings into model chunks, carrying the
// page of the most recent [PAGE_n] marker forward across chunks that
// contain none.
func attributePages(docID string, pieces []string) []model.Chunk {
	chunks := make([]model.Chunk, 0, len(pieces))
	page := 1
	for i, text := range pieces {
		chunks = append(chunks, model.Chunk{
			DocumentID: docID,
			Index:      i,
			Text:       text,
			Page:       page,
		})
		if marks := pageTokenRe.FindAllStringSubmatch(text, -1); len(marks) > 0 {
			if n, err := strconv.Atoi(marks[len(marks)-1][1]); err == nil {
				page = n
			}
		}
	}
	return chunks
}
