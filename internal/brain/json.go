package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/logging"
)

// jsonInstruction is appended to every structured-output prompt. Local
// models wrap JSON in prose and fences often enough that asking is cheaper
// than parsing around it.
const jsonInstruction = "\n\nRespond with ONLY valid JSON, no markdown, no explanation."

// ExtractJSON runs the request against p, cleans the response and
// unmarshals it into v. The respond-only-JSON instruction is appended to
// the user prompt automatically.
func ExtractJSON(ctx context.Context, p Provider, req Request, v any) error {
	if p == nil {
		return fmt.Errorf("no provider available")
	}

	req.UserPrompt += jsonInstruction
	resp, err := p.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	cleaned := CleanJSONText(resp.Content)
	if cleaned == "" {
		return fmt.Errorf("no JSON found in response (%d chars)", len(resp.Content))
	}

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		logging.Debug("JSON parse failed", "provider", p.Name(), "text", truncate(cleaned, 300))
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}

// CleanJSONText strips markdown fences and surrounding prose from an LLM
// response, returning the widest {...} or [...] span. Returns "" when the
// text contains neither.
func CleanJSONText(text string) string {
	text = strings.TrimSpace(text)

	// Remove markdown code blocks
	if strings.HasPrefix(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 2 {
			text = parts[1]
		}
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSpace(text)
	}

	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")

	var start int
	var closer byte
	switch {
	case objStart >= 0 && (arrStart < 0 || objStart < arrStart):
		start, closer = objStart, '}'
	case arrStart >= 0:
		start, closer = arrStart, ']'
	default:
		return ""
	}

	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
