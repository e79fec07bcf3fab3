// -----------------------------------------------------------------------
// Config - application configuration, TOML-backed
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration for the leadscout host.
// The core supervisor package never reads this directly - the cmd/
// composition root resolves it into the plain Go values the core's
// constructors expect (durations, ints, credentials).
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Logging     LoggingConfig    `toml:"logging"`
	Supervisor  SupervisorConfig `toml:"supervisor"`
	Workers     WorkersConfig    `toml:"workers"`
	Claude      ClaudeConfig     `toml:"claude"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Search      SearchConfig     `toml:"search"`
	GitHub      GitHubConfig     `toml:"github"`
	RateLimit   RateLimitConfig  `toml:"rate_limit"`
	RunStore    RunStoreConfig   `toml:"run_store"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"omitempty,min=1,max=65535"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"omitempty,oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // default "15:04:05.000"
}

// SupervisorConfig holds the Phase III compensation loop and retry bounds.
// Defaults mirror the hard bounds named in spec §5/§8 (MAX_ROUNDS=3,
// MAX_WORKER_RETRIES=2). The values are loaded, validated and shown in
// the startup banner; the supervisor does not read them and uses its
// own MaxRounds, MaxWorkerRetries and NewsPageBatch constants.
type SupervisorConfig struct {
	MaxRounds        int `toml:"max_rounds" validate:"min=1"`         // default 3
	MaxWorkerRetries int `toml:"max_worker_retries" validate:"min=0"` // default 2
	TargetBuffer     int `toml:"target_buffer" validate:"min=0"`      // default 5, per-worker lead target buffer
	NewsPageBatch    int `toml:"news_page_batch" validate:"min=1"`    // default 2
}

type WorkersConfig struct {
	StepTimeout       string `toml:"step_timeout"` // default "2m"
	InternalFanout    int    `toml:"internal_fanout" validate:"min=1"`
	MaxPostsPerOrg    int    `toml:"max_posts_per_org" validate:"min=1"`
	MaxArticlesPerRun int    `toml:"max_articles_per_run" validate:"min=1"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
	MaxTokens   int     `toml:"max_tokens"`
}

type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

type SearchConfig struct {
	APIKey string `toml:"api_key"`
}

type GitHubConfig struct {
	Token string `toml:"token"`
}

type RateLimitConfig struct {
	FetchPerSecond    float64 `toml:"fetch_per_second"`
	ClassifyPerSecond float64 `toml:"classify_per_second"`
	SearchPerSecond   float64 `toml:"search_per_second"`
}

type RunStoreConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// Default returns a Config populated with the same fallback values the
// supervisor and workers would otherwise apply individually.
func Default() *Config {
	return &Config{
		Environment: "development",
		Server:      ServerConfig{Host: "0.0.0.0", Port: 8090},
		Logging:     LoggingConfig{Level: "info", Output: []string{"stdout"}, TimeFormat: "15:04:05.000"},
		Supervisor: SupervisorConfig{
			MaxRounds:        3,
			MaxWorkerRetries: 2,
			TargetBuffer:     5,
			NewsPageBatch:    2,
		},
		Workers: WorkersConfig{
			StepTimeout:       "2m",
			InternalFanout:    5,
			MaxPostsPerOrg:    5,
			MaxArticlesPerRun: 5,
		},
		Claude:    ClaudeConfig{Model: "claude-sonnet-4-20250514", Temperature: 0.2, Timeout: "60s", MaxTokens: 4096},
		Gemini:    GeminiConfig{Model: "gemini-2.5-flash", Timeout: "60s"},
		RateLimit: RateLimitConfig{FetchPerSecond: 2, ClassifyPerSecond: 1, SearchPerSecond: 1},
		RunStore:  RunStoreConfig{Path: "./data/runstore", ResetOnStartup: false},
	}
}

// LoadFromFile loads configuration starting from Default(), overlaying
// values found in the TOML file at path. A missing file is not an error -
// the defaults stand alone for local/dev runs.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration in %q: %w", path, err)
	}

	return cfg, nil
}

// StepTimeoutDuration parses WorkersConfig.StepTimeout, falling back to
// 2 minutes (spec §5 default) on empty or malformed input.
func (w WorkersConfig) StepTimeoutDuration() time.Duration {
	if w.StepTimeout == "" {
		return 2 * time.Minute
	}
	d, err := time.ParseDuration(w.StepTimeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// TimeoutDuration parses ClaudeConfig.Timeout, falling back to 60s.
func (c ClaudeConfig) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// TimeoutDuration parses GeminiConfig.Timeout, falling back to 60s.
func (g GeminiConfig) TimeoutDuration() time.Duration {
	if g.Timeout == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(g.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}
