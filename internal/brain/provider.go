// Package brain provides the LLM capability used for claim extraction,
// session metadata extraction, document event extraction and narrative
// generation. Callers depend on the Provider interface only; which
// backend answers is a wiring decision.
package brain

import (
	"context"
)

// Provider is the interface for LLM backends
type Provider interface {
	// Name returns the provider name (e.g., "ollama", "mock")
	Name() string

	// Available returns true if the provider is configured and ready
	Available() bool

	// Generate sends a prompt and returns the response
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is a prompt request to an LLM provider
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// Response is the LLM provider's response
type Response struct {
	Content     string
	Model       string
	RawResponse string // The raw API response body for logging/debugging
	Error       error
}

// ProviderManager manages multiple LLM providers with fallback
type ProviderManager struct {
	providers []Provider
	preferred string // Preferred provider name
}

// NewProviderManager creates a new provider manager
func NewProviderManager() *ProviderManager {
	return &ProviderManager{
		providers: make([]Provider, 0),
	}
}

// AddProvider adds a provider to the manager
func (pm *ProviderManager) AddProvider(p Provider) {
	pm.providers = append(pm.providers, p)
}

// SetPreferred sets the preferred provider by name
func (pm *ProviderManager) SetPreferred(name string) {
	pm.preferred = name
}

// GetAvailable returns the first available provider, preferring the preferred one
func (pm *ProviderManager) GetAvailable() Provider {
	// First try preferred
	if pm.preferred != "" {
		for _, p := range pm.providers {
			if p.Name() == pm.preferred && p.Available() {
				return p
			}
		}
	}

	// Fall back to first available
	for _, p := range pm.providers {
		if p.Available() {
			return p
		}
	}

	return nil
}

// GetByName returns a provider by name
func (pm *ProviderManager) GetByName(name string) Provider {
	for _, p := range pm.providers {
		if p.Name() == name && p.Available() {
			return p
		}
	}
	return nil
}

// ListAvailable returns names of all available providers
func (pm *ProviderManager) ListAvailable() []string {
	var names []string
	for _, p := range pm.providers {
		if p.Available() {
			names = append(names, p.Name())
		}
	}
	return names
}
