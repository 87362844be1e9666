package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	GitHub    GitHubConfig    `koanf:"github"`
	Cache     CacheConfig     `koanf:"cache"`
	Roster    RosterConfig    `koanf:"roster"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type StoreConfig struct {
	Path string `koanf:"path"`
}

type GitHubConfig struct {
	BaseURL string        `koanf:"base_url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"`
}

type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	Prefix  string        `koanf:"prefix"`
	TTL     time.Duration `koanf:"ttl"`
}

type RosterConfig struct {
	ExpiryDelay time.Duration `koanf:"expiry_delay"`
}

type RateLimitConfig struct {
	Enabled         bool `koanf:"enabled"`
	WritesPerMinute int  `koanf:"writes_per_minute"`
}

type TracingConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"`
	SamplingRate float64 `koanf:"sampling_rate"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Store: StoreConfig{
			Path: "coauthor.db",
		},
		GitHub: GitHubConfig{
			BaseURL: "https://api.github.com",
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Prefix: "coauthor:",
			TTL:    15 * time.Minute,
		},
		Roster: RosterConfig{
			ExpiryDelay: 1500 * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			Enabled:         false,
			WritesPerMinute: 30,
		},
		Tracing: TracingConfig{
			SamplingRate: 0.1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from YAML file + environment variables.
// Loading order: defaults → YAML file → env vars (later overrides earlier).
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	cfg := Defaults()

	// Load YAML file (optional — may not exist)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	} else {
		// Try default path, ignore if not found
		_ = k.Load(file.Provider("coauthor.yaml"), yaml.Parser())
	}

	// Load environment variables.
	// COAUTHOR_GITHUB__BASE_URL → github.base_url
	// Double underscore (__) separates nesting levels.
	// Single underscore within a level is preserved (e.g., base_url).
	err := k.Load(env.Provider("COAUTHOR_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "COAUTHOR_")
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "__", ".")
		return s
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Store.Path == "" {
		return fmt.Errorf("config: store.path is required (set COAUTHOR_STORE__PATH)")
	}
	if cfg.Cache.Enabled && cfg.Cache.URL == "" {
		return fmt.Errorf("config: cache.url is required when cache is enabled (set COAUTHOR_CACHE__URL)")
	}
	if cfg.RateLimit.Enabled && cfg.Cache.URL == "" {
		return fmt.Errorf("config: rate limiting requires cache.url for its Redis backend")
	}
	if cfg.Roster.ExpiryDelay <= 0 {
		return fmt.Errorf("config: roster.expiry_delay must be positive")
	}
	return nil
}
