package model

import (
	"fmt"
	"runtime"
	"time"
)

// Config is the complete ClauseScope configuration
type Config struct {
	Parser      ParserConfig      `yaml:"parser" mapstructure:"parser"`
	Dates       DatesConfig       `yaml:"dates" mapstructure:"dates"`
	Highlight   HighlightConfig   `yaml:"highlight" mapstructure:"highlight"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// ParserConfig selects and configures the parsing/NER backend
type ParserConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // prose, openai
	Model    string `yaml:"model,omitempty" mapstructure:"model"`
	APIKey   string `yaml:"-" mapstructure:"api_key"` // never written to disk
	BaseURL  string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"` // seconds
}

// DatesConfig configures date search
type DatesConfig struct {
	// Distance is the maximum gap in characters between rule matches merged into one date
	Distance int `yaml:"distance" mapstructure:"distance"`
}

// HighlightConfig configures the entity/date highlight merge
type HighlightConfig struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy"` // textual, structural
}

// CacheConfig configures in-process memoization of results
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// HTTPConfig configures fetching contract text from URLs
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr"`
	MaxTextBytes int           `yaml:"max_text_bytes" mapstructure:"max_text_bytes"`
	RateLimit    float64       `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second per client
	RateBurst    int           `yaml:"rate_burst" mapstructure:"rate_burst"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// OutputConfig configures CLI output
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Format  string `yaml:"format" mapstructure:"format"` // text, json, markdown, html
}

// Parser providers
const (
	ProviderProse  = "prose"
	ProviderOpenAI = "openai"
)

// Highlight strategies
const (
	StrategyTextual    = "textual"
	StrategyStructural = "structural"
)

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Parser: ParserConfig{
			Provider: ProviderProse,
			Timeout:  60,
		},
		Dates: DatesConfig{
			Distance: 5,
		},
		Highlight: HighlightConfig{
			Strategy: StrategyTextual,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             5 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "ClauseScope/0.1 (+https://github.com/ppiankov/clausescope)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxTextBytes: 200_000,
			RateLimit:    5,
			RateBurst:    10,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Log: LogConfig{
			Level: "warn",
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Validate checks enumerations and ranges
func (c *Config) Validate() error {
	switch c.Parser.Provider {
	case ProviderProse, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown parser provider %q (supported: prose, openai)", c.Parser.Provider)
	}

	switch c.Highlight.Strategy {
	case StrategyTextual, StrategyStructural:
	default:
		return fmt.Errorf("unknown highlight strategy %q (supported: textual, structural)", c.Highlight.Strategy)
	}

	switch c.Output.Format {
	case "text", "json", "markdown", "html":
	default:
		return fmt.Errorf("unknown output format %q (supported: text, json, markdown, html)", c.Output.Format)
	}

	if c.Dates.Distance < 0 {
		return fmt.Errorf("dates.distance must be >= 0, got %d", c.Dates.Distance)
	}
	if c.Concurrency.Workers <= 0 {
		return fmt.Errorf("concurrency.workers must be > 0, got %d", c.Concurrency.Workers)
	}
	if c.Server.MaxTextBytes <= 0 {
		return fmt.Errorf("server.max_text_bytes must be > 0, got %d", c.Server.MaxTextBytes)
	}

	return nil
}
