// Package e2e exercises the whole stack over HTTP: a real router and
// application wired to offline capabilities (mock telemetry, mock LLM,
// mock embedder) with state in a temp dir. No network, no binaries.
package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mateluky/f1-race-intelligence/internal/app"
	"github.com/mateluky/f1-race-intelligence/internal/config"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/server"
)

type fixture struct {
	t   *testing.T
	srv *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logging.InitWriter(io.Discard)

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.OpenF1.Mode = "mock"
	cfg.LLM.Mode = "mock"
	cfg.Embedder.Mode = "mock"

	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	srv := httptest.NewServer(server.New(a).Handler())
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	return &fixture{t: t, srv: srv}
}

// do sends a JSON request and decodes the response into out (skipped
// when out is nil). It returns the HTTP status code.
func (f *fixture) do(method, path string, body, out any) int {
	f.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			f.t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, f.srv.URL+path, reader)
	if err != nil {
		f.t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.srv.Client().Do(req)
	if err != nil {
		f.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			f.t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (f *fixture) post(path string, body, out any) int {
	return f.do(http.MethodPost, path, body, out)
}

func (f *fixture) get(path string, out any) int {
	return f.do(http.MethodGet, path, nil, out)
}
