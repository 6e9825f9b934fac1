// Package config holds the persistent application configuration.
//
// Settings live in a JSON file under the data directory; environment
// variables override file values so containerized runs never need the
// file. Missing or unreadable files fall back to defaults.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config is the persistent application configuration
type Config struct {
	// DataDir holds the database, logs and alias overrides
	DataDir string `json:"data_dir"`

	// Telemetry API client settings
	OpenF1 OpenF1Config `json:"openf1"`

	// LLM capability settings
	LLM LLMConfig `json:"llm"`

	// Embedding settings
	Embedder EmbedderConfig `json:"embedder"`

	// Document chunking settings
	Ingest IngestConfig `json:"ingest"`

	// Timeline build settings
	Timeline TimelineConfig `json:"timeline"`

	// HTTP API settings
	Server ServerConfig `json:"server"`
}

// OpenF1Config holds telemetry client settings
type OpenF1Config struct {
	Mode          string  `json:"mode"` // "real" or "mock"
	BaseURL       string  `json:"base_url"`
	CacheTTLHours int     `json:"cache_ttl_hours"`
	RatePerSecond float64 `json:"rate_per_second"`
	RetryCount    int     `json:"retry_count"`
}

// LLMConfig holds LLM provider settings
type LLMConfig struct {
	// Mode selects the backend: "ollama", "openai" or "mock". The API key
	// for openai mode comes from OPENAI_API_KEY, never from this file.
	Mode string `json:"mode"`

	// Endpoint overrides the selected backend's default URL. Empty means
	// localhost:11434 for ollama and api.openai.com for openai.
	Endpoint string `json:"endpoint,omitempty"`

	Model          string `json:"model,omitempty"` // Auto-detected from Ollama if not specified
	FallbackToMock bool   `json:"fallback_to_mock"`
}

// EmbedderConfig holds embedding settings
type EmbedderConfig struct {
	// Mode selects the backend: "ollama", "jina" or "mock". Jina's API
	// key comes from JINA_API_KEY, never from this file.
	Mode     string `json:"mode"`
	Endpoint string `json:"endpoint,omitempty"`

	// Model names the backend's embedding model; empty picks the
	// backend default (nomic-embed-text, jina-embeddings-v3).
	Model     string `json:"model,omitempty"`
	Dimension int    `json:"dimension"`
}

// IngestConfig holds chunking parameters
type IngestConfig struct {
	ChunkSize      int `json:"chunk_size"`
	ChunkOverlap   int `json:"chunk_overlap"`
	MinChunkLength int `json:"min_chunk_length"`
	MaxChunkLength int `json:"max_chunk_length"`
}

// TimelineConfig holds build heuristics
type TimelineConfig struct {
	// PitImpactThreshold is the fractional lap-time delta that counts a
	// pitting driver as helped or hurt. Tunable; the default mirrors the
	// long-standing 5% heuristic.
	PitImpactThreshold float64 `json:"pit_impact_threshold"`

	// ExtraFallbackYears are tried after year-1 and year-2 during
	// session resolution.
	ExtraFallbackYears []int `json:"extra_fallback_years"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr string `json:"addr"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		OpenF1: OpenF1Config{
			Mode:          "real",
			BaseURL:       "https://api.openf1.org/v1",
			CacheTTLHours: 24,
			RatePerSecond: 4,
			RetryCount:    3,
		},
		LLM: LLMConfig{
			Mode:           "ollama",
			FallbackToMock: true,
		},
		Embedder: EmbedderConfig{
			Mode:      "mock",
			Endpoint:  "http://localhost:11434",
			Dimension: 384,
		},
		Ingest: IngestConfig{
			ChunkSize:      512,
			ChunkOverlap:   128,
			MinChunkLength: 50,
			MaxChunkLength: 2000,
		},
		Timeline: TimelineConfig{
			PitImpactThreshold: 0.05,
			ExtraFallbackYears: []int{2024, 2023},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".f1ri"
	}
	return filepath.Join(home, ".f1ri")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(defaultDataDir(), "config.json")
}

// Load reads config from disk, applies environment overrides, and falls
// back to defaults when the file is missing or unreadable.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err == nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			cfg = DefaultConfig()
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.ApplyEnv()
	cfg.fillZeroes()
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides file values from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("F1RI_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("OPENF1_BASE_URL"); v != "" {
		c.OpenF1.BaseURL = v
	}
	if v := os.Getenv("OPENF1_MODE"); v != "" {
		c.OpenF1.Mode = v
	}
	if v := os.Getenv("F1RI_LLM_MODE"); v != "" {
		c.LLM.Mode = v
	}
	if v := os.Getenv("OLLAMA_ENDPOINT"); v != "" {
		c.Embedder.Endpoint = v
		if c.LLM.Mode != "openai" {
			c.LLM.Endpoint = v
		}
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("F1RI_EMBED_MODE"); v != "" {
		c.Embedder.Mode = v
	}
	if v := os.Getenv("F1RI_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("F1RI_PIT_IMPACT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.Timeline.PitImpactThreshold = f
		}
	}
}

// fillZeroes restores defaults for fields an older config file may lack.
func (c *Config) fillZeroes() {
	def := DefaultConfig()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.OpenF1.BaseURL == "" {
		c.OpenF1.BaseURL = def.OpenF1.BaseURL
	}
	if c.OpenF1.CacheTTLHours <= 0 {
		c.OpenF1.CacheTTLHours = def.OpenF1.CacheTTLHours
	}
	if c.OpenF1.RatePerSecond <= 0 {
		c.OpenF1.RatePerSecond = def.OpenF1.RatePerSecond
	}
	if c.OpenF1.RetryCount <= 0 {
		c.OpenF1.RetryCount = def.OpenF1.RetryCount
	}
	if c.LLM.Mode == "" {
		c.LLM.Mode = def.LLM.Mode
	}
	if c.Embedder.Mode == "" {
		c.Embedder.Mode = def.Embedder.Mode
	}
	if c.Embedder.Dimension <= 0 {
		c.Embedder.Dimension = def.Embedder.Dimension
	}
	if c.Ingest.ChunkSize <= 0 {
		c.Ingest.ChunkSize = def.Ingest.ChunkSize
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		c.Ingest.ChunkOverlap = def.Ingest.ChunkOverlap
	}
	if c.Ingest.MinChunkLength <= 0 {
		c.Ingest.MinChunkLength = def.Ingest.MinChunkLength
	}
	if c.Ingest.MaxChunkLength <= 0 {
		c.Ingest.MaxChunkLength = def.Ingest.MaxChunkLength
	}
	if c.Timeline.PitImpactThreshold <= 0 {
		c.Timeline.PitImpactThreshold = def.Timeline.PitImpactThreshold
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
}

// DatabasePath returns the SQLite document store path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "f1ri.db")
}

// TelemetryCachePath returns the SQLite response cache path.
func (c *Config) TelemetryCachePath() string {
	return filepath.Join(c.DataDir, "openf1_cache.db")
}

// GPAliasesPath returns the optional YAML alias override file path.
func (c *Config) GPAliasesPath() string {
	return filepath.Join(c.DataDir, "gp_aliases.yaml")
}
