package engine

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// LLMProvider selects the backing generative-model service. Chosen once at
// construction time and injected through Config, never read from a global.
type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderVertex LLMProvider = "vertex"
)

// ParseProvider converts a raw provider string to an LLMProvider.
// Empty input defaults to Gemini.
func ParseProvider(s string) (LLMProvider, error) {
	switch LLMProvider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGemini, "":
		return ProviderGemini, nil
	case ProviderVertex:
		return ProviderVertex, nil
	}
	return "", fmt.Errorf("unknown LLM provider %q", s)
}

// Config holds all engine configuration, injected from main.
type Config struct {
	IndexURL    string // search index base URL
	IndexAPIKey string
	IndexRPS    float64 // client-side rate limit for index queries

	LLMProvider LLMProvider
	LLMAPIKey   string
	LLMModel    string

	DatabaseURL string // empty = local SQLite store
	RedisURL    string // empty = no reviewed-id set cache, L1-only search cache

	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	MaxSearchResults int     // hard cap on per-search result limit
	OverFetchFactor  int     // index over-fetch multiplier before filtering
	GeoPrefilterKM   float64 // coarse radius around home coordinates

	HTTPClient *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (search, index, store).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.MaxSearchResults <= 0 {
		c.MaxSearchResults = 8
	}
	if c.OverFetchFactor <= 0 {
		c.OverFetchFactor = 3
	}
	if c.GeoPrefilterKM <= 0 {
		c.GeoPrefilterKM = 80
	}
	cfg = c
	Cfg = &cfg
}
