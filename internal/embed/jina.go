package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// JinaEmbedder generates embeddings via the Jina AI API. It is the
// hosted alternative when no local Ollama is running; an API key is all
// it needs.
type JinaEmbedder struct {
	apiKey    string
	model     string
	dimension int
	endpoint  string
	client    *http.Client
	limiter   *rate.Limiter
}

type jinaEmbedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Task       string   `json:"task"`
	Dimensions int      `json:"dimensions"`
	Truncate   bool     `json:"truncate"`
}

type jinaEmbedResponse struct {
	Data []jinaEmbedding `json:"data"`
}

type jinaEmbedding struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// NewJinaEmbedder creates a JinaEmbedder. model defaults to
// jina-embeddings-v3 and dimension to 1024.
func NewJinaEmbedder(apiKey, model string, dimension int) *JinaEmbedder {
	if model == "" {
		model = "jina-embeddings-v3"
	}
	if dimension <= 0 {
		dimension = 1024
	}
	return &JinaEmbedder{
		apiKey:    apiKey,
		model:     model,
		dimension: dimension,
		endpoint:  "https://api.jina.ai/v1/embeddings",
		client:    &http.Client{Timeout: 60 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(750*time.Millisecond), 1), // ~80 RPM
	}
}

// Available returns true if an API key is configured.
func (e *JinaEmbedder) Available() bool {
	return e.apiKey != ""
}

// Embed generates a passage embedding for the given text.
func (e *JinaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.request(ctx, []string{text}, "retrieval.passage")
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embed: jina returned no embeddings")
	}
	return resp.Data[0].Embedding, nil
}

// EmbedQuery generates a query embedding. Jina distinguishes query from
// passage embeddings for asymmetric retrieval.
func (e *JinaEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.request(ctx, []string{text}, "retrieval.query")
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embed: jina returned no embeddings")
	}
	return resp.Data[0].Embedding, nil
}

// EmbedBatch generates passage embeddings for multiple texts. Inputs go
// up in slices of 25; larger batches have produced truncated responses.
func (e *JinaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))
	const sliceSize = 25
	for start := 0; start < len(texts); start += sliceSize {
		end := start + sliceSize
		if end > len(texts) {
			end = len(texts)
		}
		slice := texts[start:end]

		resp, err := e.request(ctx, slice, "retrieval.passage")
		if err != nil {
			return nil, fmt.Errorf("embed: batch slice starting at %d failed: %w", start, err)
		}
		for _, item := range resp.Data {
			if item.Index < 0 || item.Index >= len(slice) {
				return nil, fmt.Errorf("embed: jina returned out-of-range index %d for slice of %d", item.Index, len(slice))
			}
			results[start+item.Index] = item.Embedding
		}
	}

	for i, r := range results {
		if r == nil {
			return nil, fmt.Errorf("embed: missing embedding for index %d", i)
		}
	}
	return results, nil
}

// request calls the API with retry on 429/5xx and malformed bodies.
// Backoff doubles per attempt; a Retry-After header on 429 overrides it,
// capped at 30 seconds.
func (e *JinaEmbedder) request(ctx context.Context, input []string, task string) (*jinaEmbedResponse, error) {
	reqBody, err := json.Marshal(jinaEmbedRequest{
		Model:      e.model,
		Input:      input,
		Task:       task,
		Dimensions: e.dimension,
		Truncate:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("embed: failed to marshal request: %w", err)
	}

	const maxRetries = 3
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embed: rate limiter wait failed: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(reqBody))
		if err != nil {
			return nil, fmt.Errorf("embed: failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+e.apiKey)

		resp, err := e.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("embed: request cancelled: %w", ctx.Err())
			}
			return nil, fmt.Errorf("embed: request failed: %w", err)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("embed: failed to read response: %w", err)
		}

		delay := time.Duration(1<<attempt) * time.Second

		if resp.StatusCode == http.StatusOK {
			var embedResp jinaEmbedResponse
			if err := json.Unmarshal(body, &embedResp); err == nil {
				return &embedResp, nil
			}
			// Truncated or malformed body, worth retrying.
			lastErr = fmt.Errorf("embed: failed to parse response")
		} else if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("embed: jina returned status %d: %s", resp.StatusCode, string(body))
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
					delay = time.Duration(seconds) * time.Second
					if delay > 30*time.Second {
						delay = 30 * time.Second
					}
				}
			}
		} else {
			return nil, fmt.Errorf("embed: jina returned status %d: %s", resp.StatusCode, string(body))
		}

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("embed: request cancelled during retry: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("embed: all retries exhausted: %w", lastErr)
}
