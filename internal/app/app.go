// Package app wires the capabilities (document store, telemetry client,
// LLM provider, embedder, retriever) into one facade every surface (CLI,
// HTTP API, TUI) calls. Capability selection follows the configuration:
// mock implementations keep every operation working fully offline.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/mateluky/f1-race-intelligence/internal/brain"
	"github.com/mateluky/f1-race-intelligence/internal/brief"
	"github.com/mateluky/f1-race-intelligence/internal/claims"
	"github.com/mateluky/f1-race-intelligence/internal/config"
	"github.com/mateluky/f1-race-intelligence/internal/embed"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
	"github.com/mateluky/f1-race-intelligence/internal/retrieve"
	"github.com/mateluky/f1-race-intelligence/internal/timeline"
)

// App is the application facade. One instance serves all requests; every
// method is safe for concurrent use.
type App struct {
	cfg       *config.Config
	store     *model.Store
	provider  brain.Provider
	telemetry openf1.Client
	embedder  embed.Embedder
	retriever *retrieve.Retriever
	metadata  *claims.MetadataExtractor
	timeline  *timeline.Builder
	briefs    *brief.Builder

	closeTelemetry func()
}

// New builds the full application from configuration: opens the document
// store under the data directory and selects real or mock capabilities.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := model.NewStore(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}

	telemetry, closeTelemetry, err := buildTelemetry(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	provider := buildProvider(cfg.LLM)
	embedder := buildEmbedder(cfg.Embedder)
	retriever := retrieve.NewRetriever(store, embedder, 0)

	norm := claims.NewNormalizer()
	if err := norm.LoadAliases(cfg.GPAliasesPath()); err != nil {
		logging.Warn("GP alias overrides not loaded", "error", err)
	}

	tb := timeline.NewBuilder(telemetry, provider, retriever, cfg.Timeline)

	a := &App{
		cfg:            cfg,
		store:          store,
		provider:       provider,
		telemetry:      telemetry,
		embedder:       embedder,
		retriever:      retriever,
		metadata:       claims.NewMetadataExtractor(provider, telemetry, norm, cfg.Timeline.ExtraFallbackYears),
		timeline:       tb,
		briefs:         brief.NewBuilder(provider, telemetry, retriever, tb, 0),
		closeTelemetry: closeTelemetry,
	}

	logging.Info("application ready",
		"data_dir", cfg.DataDir,
		"telemetry", cfg.OpenF1.Mode,
		"llm", provider.Name())
	return a, nil
}

// Close releases the store and the telemetry cache.
func (a *App) Close() {
	if a.closeTelemetry != nil {
		a.closeTelemetry()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logging.Warn("store close failed", "error", err)
		}
	}
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Telemetry returns the telemetry client for direct collection access.
func (a *App) Telemetry() openf1.Client {
	return a.telemetry
}

func buildTelemetry(cfg *config.Config) (openf1.Client, func(), error) {
	if cfg.OpenF1.Mode == "mock" {
		return openf1.NewMockClient(), nil, nil
	}

	client, err := openf1.NewRestClient(openf1.RestOptions{
		BaseURL:       cfg.OpenF1.BaseURL,
		CachePath:     cfg.TelemetryCachePath(),
		CacheTTL:      time.Duration(cfg.OpenF1.CacheTTLHours) * time.Hour,
		RetryCount:    cfg.OpenF1.RetryCount,
		RatePerSecond: cfg.OpenF1.RatePerSecond,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry client: %w", err)
	}
	return client, client.Close, nil
}

// buildProvider selects the LLM backend. In ollama and openai modes the
// provider manager prefers the live endpoint and, when configured, falls
// back to the mock so briefs keep working while the model is down.
func buildProvider(cfg config.LLMConfig) brain.Provider {
	if cfg.Mode == "mock" {
		return brain.NewMockProvider()
	}

	var preferred brain.Provider
	if cfg.Mode == "openai" {
		preferred = brain.NewOpenAIProvider(cfg.Endpoint, os.Getenv("OPENAI_API_KEY"), cfg.Model)
	} else {
		preferred = brain.NewOllamaProvider(cfg.Endpoint, cfg.Model)
	}

	pm := brain.NewProviderManager()
	pm.AddProvider(preferred)
	if cfg.FallbackToMock {
		pm.AddProvider(brain.NewMockProvider())
	}
	pm.SetPreferred(preferred.Name())

	if p := pm.GetAvailable(); p != nil {
		return p
	}
	return preferred
}

func buildEmbedder(cfg config.EmbedderConfig) embed.Embedder {
	switch cfg.Mode {
	case "ollama":
		return embed.NewOllamaEmbedder(cfg.Endpoint, cfg.Model)
	case "jina":
		return embed.NewJinaEmbedder(os.Getenv("JINA_API_KEY"), cfg.Model, cfg.Dimension)
	default:
		return embed.NewMockEmbedder(cfg.Dimension)
	}
}
