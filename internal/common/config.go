package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	JobSearch   JobSearchConfig `toml:"job_search"`
	WebSearch   WebSearchConfig `toml:"web_search"`
	Engine      EngineConfig    `toml:"engine"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=0,max=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// GeminiConfig contains Google Gemini API configuration.
// Gemini always serves embeddings; it serves completions when llm.provider = "gemini".
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`         // Google Gemini API key
	ChatModel      string  `toml:"chat_model"`      // Completion model (default: "gemini-2.0-flash")
	EmbedModel     string  `toml:"embed_model"`     // Embedding model (default: "gemini-embedding-001")
	EmbedDimension int     `toml:"embed_dimension"` // Embedding output dimensionality (default: 768)
	Timeout        string  `toml:"timeout"`         // Operation timeout as duration string (default: "2m")
	Temperature    float32 `toml:"temperature"`     // Completion temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Completion model (default: "claude-sonnet-4-20250514")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// LLMProvider represents the completion provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API for completions
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API for completions
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig selects the completion provider
type LLMConfig struct {
	Provider LLMProvider `toml:"provider" validate:"oneof=gemini claude"`
}

// JobSearchConfig contains job-posting search API configuration
type JobSearchConfig struct {
	APIKey         string        `toml:"api_key"`         // RapidAPI key for the JSearch endpoint
	BaseURL        string        `toml:"base_url"`        // API base URL (default: "https://jsearch.p.rapidapi.com")
	RateLimit      time.Duration `toml:"rate_limit"`      // Minimum time between API requests
	RequestTimeout time.Duration `toml:"request_timeout"` // HTTP request timeout
	MaxResults     int           `toml:"max_results"`     // Maximum postings per search (default: 10)
}

// WebSearchConfig contains web search configuration
type WebSearchConfig struct {
	Enabled    bool   `toml:"enabled"`     // Enable web retrieval (default: true)
	Model      string `toml:"model"`       // Search-grounded model (default: "gemini-2.0-flash")
	MaxResults int    `toml:"max_results"` // Organic results to keep (default: 10)
}

// EngineConfig contains the tunable thresholds of the answering pipeline.
// The relevance minimum and cache similarity have no single canonical value;
// both are deliberately configuration, not constants.
type EngineConfig struct {
	MinConfidence       float64 `toml:"min_confidence"`        // Guardrail confidence floor (default: 0.6)
	CacheSimilarity     float64 `toml:"cache_similarity"`      // Semantic cache acceptance threshold (default: 0.85)
	RelevanceMinScore   float64 `toml:"relevance_min_score"`   // Minimum chunk score counted by the relevance gate (default: 0.5)
	TopK                int     `toml:"top_k"`                 // Resume chunks per query (default: 6)
	HistoryMessageLimit int     `toml:"history_message_limit"` // Max prior turns fetched (default: 20)
	HistoryTokenBudget  int     `toml:"history_token_budget"`  // Estimated-token cap on windowed history (default: 2000)
	SourceTimeout       string  `toml:"source_timeout"`        // Per-source retrieval timeout (default: "20s")
	CacheTTL            string  `toml:"cache_ttl"`             // Cache entry lifetime, "0" disables expiry (default: "720h")
	CacheSweepSchedule  string  `toml:"cache_sweep_schedule"`  // Cron schedule for cache expiry sweeps (default: "0 * * * *")
}

// DefaultConfig returns a config populated with defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/careermatch",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Gemini: GeminiConfig{
			ChatModel:      "gemini-2.0-flash",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			Timeout:        "2m",
			Temperature:    0.7,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   8192,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			Provider: LLMProviderGemini,
		},
		JobSearch: JobSearchConfig{
			BaseURL:        "https://jsearch.p.rapidapi.com",
			RateLimit:      time.Second,
			RequestTimeout: 30 * time.Second,
			MaxResults:     10,
		},
		WebSearch: WebSearchConfig{
			Enabled:    true,
			Model:      "gemini-2.0-flash",
			MaxResults: 10,
		},
		Engine: EngineConfig{
			MinConfidence:       0.6,
			CacheSimilarity:     0.85,
			RelevanceMinScore:   0.5,
			TopK:                6,
			HistoryMessageLimit: 20,
			HistoryTokenBudget:  2000,
			SourceTimeout:       "20s",
			CacheTTL:            "720h",
			CacheSweepSchedule:  "0 * * * *",
		},
	}
}

// LoadFromFiles loads configuration with precedence: defaults -> files (in order) -> env.
// Missing files are skipped with no error so a bare binary still starts on defaults.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ApplyFlagOverrides applies command-line flag values over the loaded config.
// Zero values leave the config untouched.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies environment variables over file values.
// API keys are the common case: they live in the environment, not in TOML.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("JSEARCH_API_KEY"); v != "" {
		config.JobSearch.APIKey = v
	}
	if v := os.Getenv("CAREERMATCH_LLM_PROVIDER"); v != "" {
		config.LLM.Provider = LLMProvider(v)
	}
	if v := os.Getenv("CAREERMATCH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("CAREERMATCH_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("CAREERMATCH_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
}

// SourceTimeoutDuration parses the per-source retrieval timeout
func (c *EngineConfig) SourceTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.SourceTimeout)
	if err != nil || d <= 0 {
		return 20 * time.Second
	}
	return d
}

// CacheTTLDuration parses the cache entry lifetime. Zero disables expiry.
func (c *EngineConfig) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d < 0 {
		return 720 * time.Hour
	}
	return d
}
