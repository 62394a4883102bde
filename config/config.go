package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tastelens/backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Arena     ArenaConfig     `mapstructure:"arena"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Index     IndexConfig     `mapstructure:"index"`
	Classify  ClassifyConfig  `mapstructure:"classify"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ArenaConfig holds Are.na API configuration
type ArenaConfig struct {
	Token        string        `mapstructure:"token"`
	UserSlug     string        `mapstructure:"user_slug"`
	BaseURL      string        `mapstructure:"base_url"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
	PerPage      int           `mapstructure:"per_page"`
}

// GeminiConfig holds image model configuration
type GeminiConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// IndexConfig holds local index configuration
type IndexConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// RuleConfig is one classification rule as written in the config file
type RuleConfig struct {
	Destination string   `mapstructure:"destination"`
	Domains     []string `mapstructure:"domains"`
	Keywords    []string `mapstructure:"keywords"`
}

// ClassifyConfig holds classifier configuration
type ClassifyConfig struct {
	MinDescriptionLength int          `mapstructure:"min_description_length"`
	CanonicalChannels    []string     `mapstructure:"canonical_channels"`
	Rules                []RuleConfig `mapstructure:"rules"`
	Concurrency          int          `mapstructure:"concurrency"`
}

// MatchingConfig holds reference matcher configuration
type MatchingConfig struct {
	DefaultLimit    int      `mapstructure:"default_limit"`
	MultiImageLimit int      `mapstructure:"multi_image_limit"`
	Collections     []string `mapstructure:"collections"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Plain environment variables accepted alongside the prefixed ones
const (
	EnvArenaToken    = "ARENA_TOKEN"
	EnvArenaUserSlug = "ARENA_USER_SLUG"
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
)

// Load loads configuration from .env, config files and environment variables
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the default locations.
func LoadFile(path string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/tastelens/")
	}

	// Environment variable settings
	v.SetEnvPrefix("TASTELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindAliases(v); err != nil {
		return nil, err
	}

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// bindAliases lets the unprefixed credential variables stand in for the prefixed ones
func bindAliases(v *viper.Viper) error {
	aliases := map[string]string{
		"arena.token":     EnvArenaToken,
		"arena.user_slug": EnvArenaUserSlug,
		"gemini.api_key":  EnvGeminiAPIKey,
	}
	for key, env := range aliases {
		prefixed := "TASTELENS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Are.na defaults
	v.SetDefault("arena.base_url", "https://api.are.na/v2")
	v.SetDefault("arena.request_delay", "100ms")
	v.SetDefault("arena.per_page", 100)

	// Gemini defaults
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.request_delay", "300ms")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "720h") // 30 days

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)

	v.SetDefault("index.data_dir", "data")

	// Classifier defaults
	v.SetDefault("classify.min_description_length", 20)
	v.SetDefault("classify.canonical_channels", []string{})
	v.SetDefault("classify.concurrency", 4)

	// Matching defaults
	v.SetDefault("matching.default_limit", 6)
	v.SetDefault("matching.multi_image_limit", 8)
	v.SetDefault("matching.collections", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

// Validate checks settings every command depends on. Credentials are checked
// separately by RequireArena and RequireGemini.
func (c *Config) Validate() error {
	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", c.Cache.Type)
	}

	if c.Cache.Type == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	if c.Matching.DefaultLimit < 0 || c.Matching.MultiImageLimit < 0 {
		return fmt.Errorf("matching limits must not be negative")
	}

	for i, r := range c.Classify.Rules {
		if strings.TrimSpace(r.Destination) == "" {
			return fmt.Errorf("classify rule %d has no destination", i)
		}
	}

	return nil
}

// RequireArena fails when the Are.na token is missing
func (c *Config) RequireArena() error {
	if c.Arena.Token == "" {
		return fmt.Errorf("%w: Are.na token is required (set %s)", domain.ErrMissingCredentials, EnvArenaToken)
	}
	return nil
}

// RequireGemini fails when the Gemini API key is missing
func (c *Config) RequireGemini() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("%w: Gemini API key is required (set %s)", domain.ErrMissingCredentials, EnvGeminiAPIKey)
	}
	return nil
}

// ClassificationRules converts configured rules to domain rules.
// It returns nil when none are configured so callers can fall back to built-in rules.
func (c *Config) ClassificationRules() []domain.ClassificationRule {
	if len(c.Classify.Rules) == 0 {
		return nil
	}
	rules := make([]domain.ClassificationRule, 0, len(c.Classify.Rules))
	for _, r := range c.Classify.Rules {
		rules = append(rules, domain.ClassificationRule{
			Destination: domain.ParseDestination(r.Destination),
			Domains:     r.Domains,
			Keywords:    r.Keywords,
		})
	}
	return rules
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
