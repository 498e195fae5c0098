package model

import "time"

// Config holds the complete runtime configuration
type Config struct {
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Refresh RefreshConfig `yaml:"refresh" mapstructure:"refresh"`
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
}

// HTTPConfig configures the upstream property provider client
type HTTPConfig struct {
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey            string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	PageSize          int           `yaml:"page_size" mapstructure:"page_size"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// CacheConfig configures the raw snapshot cache and its optional mirror
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Backend       string        `yaml:"backend" mapstructure:"backend"` // memory or redis
	RedisURL      string        `yaml:"redis_url" mapstructure:"redis_url"`
	Namespace     string        `yaml:"namespace" mapstructure:"namespace"`
	MaxProperties int           `yaml:"max_properties" mapstructure:"max_properties"`
}

// ScoringConfig holds the raw listing score weights. They may be any
// non-negative numbers; the scorer normalizes them to sum to 1.
type ScoringConfig struct {
	EquityWeight   float64 `yaml:"equity_weight" mapstructure:"equity_weight"`
	ValueGapWeight float64 `yaml:"value_gap_weight" mapstructure:"value_gap_weight"`
	RecencyWeight  float64 `yaml:"recency_weight" mapstructure:"recency_weight"`
}

// RefreshConfig configures the background cache refresh loop
type RefreshConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// LLMConfig configures optional lead pack digests. Empty provider disables
// them entirely.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			BaseURL:           "https://app.realie.ai/api/public/property/search/",
			Timeout:           10 * time.Second,
			UserAgent:         "LeadRadar/0.2 (+https://github.com/ppiankov/leadradar)",
			PageSize:          100,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Cache: CacheConfig{
			TTL:           5 * time.Minute,
			Backend:       "memory",
			Namespace:     "lead-radar",
			MaxProperties: 500,
		},
		Scoring: ScoringConfig{
			EquityWeight:   0.45,
			ValueGapWeight: 0.35,
			RecencyWeight:  0.20,
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Interval: 15 * time.Minute,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 600,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
