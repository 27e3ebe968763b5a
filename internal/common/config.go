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
	Environment string          `toml:"environment" validate:"omitempty,oneof=development production"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Queue       QueueConfig     `toml:"queue"`
	Fetch       FetchConfig     `toml:"fetch"`
	Scoring     ScoringConfig   `toml:"scoring"`
	Authority   AuthorityConfig `toml:"authority"`
	Analyzer    AnalyzerConfig  `toml:"analyzer"`
	Search      SearchConfig    `toml:"search"`
	LLM         LLMConfig       `toml:"llm"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Logging     LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// QueueConfig controls the job queue poller
type QueueConfig struct {
	PollSchedule  string `toml:"poll_schedule"`   // Cron schedule for the poll loop
	BatchSize     int    `toml:"batch_size"`      // Jobs claimed per cycle
	MaxCycles     int    `toml:"max_cycles"`      // Drain cycles per poll invocation
	MaxAttempts   int    `toml:"max_attempts"`    // Attempts before dead-letter
	StaleAfter    string `toml:"stale_after"`     // Processing jobs older than this are reclaimed
	InterJobDelay string `toml:"inter_job_delay"` // Fixed delay between jobs (downstream rate limits)
}

// FetchConfig controls the tiered fetch service
type FetchConfig struct {
	UserAgent      string   `toml:"user_agent"`
	BasicTimeout   string   `toml:"basic_timeout"`
	PremiumTimeout string   `toml:"premium_timeout"`
	MinBodyBytes   int      `toml:"min_body_bytes"` // Bodies smaller than this escalate
	Headless       bool     `toml:"headless"`
	ChromePath     string   `toml:"chrome_path"`   // Optional explicit Chrome binary
	ProxyServers   []string `toml:"proxy_servers"` // Rotating egress identities for the premium tier
}

// ScoringConfig controls the semantic scorer
type ScoringConfig struct {
	TextLimit          int     `toml:"text_limit"`           // Max chars of page text embedded in prompts
	EEATProxyThreshold float64 `toml:"eeat_proxy_threshold"` // Depth score at which EEAT reuses quality scores
}

// AuthorityConfig controls the domain authority estimator
type AuthorityConfig struct {
	MinInterval string `toml:"min_interval"` // Minimum spacing between estimations
}

// AnalyzerConfig controls per-citation analysis
type AnalyzerConfig struct {
	CitationBudget string `toml:"citation_budget"` // Wall-clock budget per citation
	InterStepDelay string `toml:"inter_step_delay"`
}

type SearchConfig struct {
	Enabled    bool `toml:"enabled"`
	MaxResults int  `toml:"max_results"`
}

type LLMConfig struct {
	Provider string `toml:"provider" validate:"omitempty,oneof=claude gemini"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

// DefaultConfig returns the configuration defaults applied before any file
// or environment override.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "localhost",
			Port: 8085,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/citare",
			},
		},
		Queue: QueueConfig{
			PollSchedule:  "@every 30s",
			BatchSize:     5,
			MaxCycles:     5,
			MaxAttempts:   3,
			StaleAfter:    "5m",
			InterJobDelay: "2s",
		},
		Fetch: FetchConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			BasicTimeout:   "15s",
			PremiumTimeout: "30s",
			MinBodyBytes:   500,
			Headless:       true,
		},
		Scoring: ScoringConfig{
			TextLimit:          6000,
			EEATProxyThreshold: 8,
		},
		Authority: AuthorityConfig{
			MinInterval: "500ms",
		},
		Analyzer: AnalyzerConfig{
			CitationBudget: "5m",
			InterStepDelay: "1s",
		},
		Search: SearchConfig{
			Enabled:    true,
			MaxResults: 5,
		},
		LLM: LLMConfig{
			Provider: "claude",
		},
		Claude: ClaudeConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
			Timeout:   "60s",
		},
		Gemini: GeminiConfig{
			Model:   "gemini-2.0-flash",
			Timeout: "60s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFiles loads configuration starting from defaults, applying each TOML
// file in order (later files override earlier ones), then environment
// variables, then validates the result.
func LoadFromFiles(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies CITARE_* environment variables on top of file
// config. API keys also honor the provider-native variable names.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CITARE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CITARE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CITARE_STORAGE_PATH"); v != "" {
		cfg.Storage.Badger.Path = v
	}
	if v := os.Getenv("CITARE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CITARE_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("CITARE_CLAUDE_API_KEY"); v != "" {
		cfg.Claude.APIKey = v
	} else if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.Claude.APIKey == "" {
		cfg.Claude.APIKey = v
	}
	if v := os.Getenv("CITARE_GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = v
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(cfg *Config, port int, host string) {
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
}

// ParseDurationOr parses a duration string, returning the fallback on empty or
// invalid input. Config duration fields are strings so TOML files stay readable.
func ParseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
