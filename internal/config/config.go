package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/rewired-gh/rentscore/internal/scoring"
	"github.com/spf13/viper"
)

// apiKeyEnv is the plain environment variable used by earlier rentcast tooling.
const apiKeyEnv = "API_KEY"

// Config represents the complete application configuration
type Config struct {
	Rentcast RentcastConfig `mapstructure:"rentcast"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// RentcastConfig holds property data API configuration
type RentcastConfig struct {
	APIBaseURL        string        `mapstructure:"api_base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryDelayBase    time.Duration `mapstructure:"retry_delay_base"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// ScoringConfig holds the named investor profiles.
// Profiles are filled in by Load on top of scoring.DefaultConfig, so a profile
// only needs to list the values it changes.
type ScoringConfig struct {
	DefaultProfile string                    `mapstructure:"default_profile"`
	Profiles       map[string]scoring.Config `mapstructure:"-"`
}

// CacheConfig holds rent estimate cache configuration
type CacheConfig struct {
	Backend       string        `mapstructure:"backend"` // memory, redis or none
	TTL           time.Duration `mapstructure:"ttl"`
	MaxEntries    int           `mapstructure:"max_entries"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// WatchConfig holds the periodic scoring loop configuration
type WatchConfig struct {
	ZipCodes      []string      `mapstructure:"zip_codes"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	Limit         int           `mapstructure:"limit"`
	TopK          int           `mapstructure:"top_k"`
	RentEstimates bool          `mapstructure:"rent_estimates"`
	Concurrency   int           `mapstructure:"concurrency"`

	// NotifyCooldown suppresses re-sending a property with an unchanged rating.
	NotifyCooldown time.Duration `mapstructure:"notify_cooldown"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	RateLimit       float64       `mapstructure:"rate_limit"` // zip lookups per second per client IP
	RateBurst       int           `mapstructure:"rate_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// builtinProfiles are always available and may be overridden from the config file.
var builtinProfiles = map[string]map[string]interface{}{
	"balanced": {
		"weight_cap_rate": 0.40,
	},
	"conservative": {
		"weight_cap_rate":       0.60,
		"weight_price_per_sqft": 0.20,
		"weight_unit_density":   0.10,
		"weight_size":           0.05,
		"weight_property_type":  0.05,
		"target_cap_rate":       0.10,
	},
	"growth": {
		"weight_cap_rate":       0.20,
		"weight_price_per_sqft": 0.30,
		"weight_unit_density":   0.20,
		"weight_size":           0.20,
		"weight_property_type":  0.10,
	},
}

// Load reads configuration from an optional file, a .env file and environment variables.
// An empty path skips the config file and uses defaults plus environment overrides.
func Load(path string) (*Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("RENTSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	profiles, err := loadProfiles(v)
	if err != nil {
		return nil, err
	}
	cfg.Scoring.Profiles = profiles
	cfg.Scoring.DefaultProfile = scoring.ProfileName(cfg.Scoring.DefaultProfile)

	if cfg.Rentcast.APIKey == "" {
		cfg.Rentcast.APIKey = os.Getenv(apiKeyEnv)
	}

	return &cfg, nil
}

// loadProfiles decodes every scoring.profiles entry over scoring.DefaultConfig.
// AllSettings is used because it merges defaults, file and env layers key by key,
// so a file can tweak one value of a built-in profile without restating the rest.
func loadProfiles(v *viper.Viper) (map[string]scoring.Config, error) {
	profiles := make(map[string]scoring.Config)

	scoringSection, _ := v.AllSettings()["scoring"].(map[string]interface{})
	raw, _ := scoringSection["profiles"].(map[string]interface{})

	for name, values := range raw {
		cfg := scoring.DefaultConfig()
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           &cfg,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder for profile %q: %w", name, err)
		}
		if err := dec.Decode(values); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile %q: %w", name, err)
		}
		profiles[name] = cfg
	}
	return profiles, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Rentcast defaults
	v.SetDefault("rentcast.api_base_url", "https://api.rentcast.io/v1")
	v.SetDefault("rentcast.api_key", "")
	v.SetDefault("rentcast.timeout", "30s")
	v.SetDefault("rentcast.max_retries", 3)
	v.SetDefault("rentcast.retry_delay_base", "1s")
	v.SetDefault("rentcast.requests_per_second", 5.0)
	v.SetDefault("rentcast.burst", 5)

	// Scoring defaults
	v.SetDefault("scoring.default_profile", "balanced")
	for name, overrides := range builtinProfiles {
		for key, val := range overrides {
			v.SetDefault("scoring.profiles."+name+"."+key, val)
		}
	}

	// Cache defaults
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Watch defaults
	v.SetDefault("watch.zip_codes", []string{})
	v.SetDefault("watch.poll_interval", "6h")
	v.SetDefault("watch.limit", 20)
	v.SetDefault("watch.top_k", 5)
	v.SetDefault("watch.rent_estimates", false)
	v.SetDefault("watch.concurrency", 4)
	v.SetDefault("watch.notify_cooldown", "24h")

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 1.0)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Rentcast config
	if c.Rentcast.APIBaseURL == "" {
		return fmt.Errorf("rentcast.api_base_url is required")
	}
	if c.Rentcast.Timeout <= 0 {
		return fmt.Errorf("rentcast.timeout must be positive")
	}
	if c.Rentcast.MaxRetries < 1 {
		return fmt.Errorf("rentcast.max_retries must be at least 1")
	}
	if c.Rentcast.RequestsPerSecond <= 0 {
		return fmt.Errorf("rentcast.requests_per_second must be positive")
	}
	if c.Rentcast.Burst < 1 {
		return fmt.Errorf("rentcast.burst must be at least 1")
	}

	// Validate Scoring config
	if len(c.Scoring.Profiles) == 0 {
		return fmt.Errorf("scoring.profiles must contain at least one profile")
	}
	if _, ok := c.Scoring.Profiles[scoring.ProfileName(c.Scoring.DefaultProfile)]; !ok {
		return fmt.Errorf("scoring.default_profile %q is not a configured profile", c.Scoring.DefaultProfile)
	}
	for name, p := range c.Scoring.Profiles {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("scoring.profiles.%s: %w", name, err)
		}
	}

	// Validate Cache config
	validBackends := map[string]bool{"memory": true, "redis": true, "none": true}
	if !validBackends[c.Cache.Backend] {
		return fmt.Errorf("cache.backend must be one of: memory, redis, none")
	}
	if c.Cache.Backend != "none" && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Cache.Backend == "memory" && c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be at least 1")
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required when cache.backend is redis")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Watch config
	if c.Watch.PollInterval < 1*time.Minute {
		return fmt.Errorf("watch.poll_interval must be at least 1 minute")
	}
	if c.Watch.Limit < 1 {
		return fmt.Errorf("watch.limit must be at least 1")
	}
	if c.Watch.TopK < 0 {
		return fmt.Errorf("watch.top_k must not be negative")
	}
	if c.Watch.Concurrency < 1 {
		return fmt.Errorf("watch.concurrency must be at least 1")
	}
	if c.Watch.NotifyCooldown < 0 {
		return fmt.Errorf("watch.notify_cooldown must not be negative")
	}

	// Validate Server config
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rate_limit must be positive")
	}
	if c.Server.RateBurst < 1 {
		return fmt.Errorf("server.rate_burst must be at least 1")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Profile returns the named scoring profile. An empty name selects the default profile.
func (c *Config) Profile(name string) (scoring.Config, error) {
	if name == "" {
		name = c.Scoring.DefaultProfile
	}
	p, ok := c.Scoring.Profiles[scoring.ProfileName(name)]
	if !ok {
		return scoring.Config{}, fmt.Errorf("unknown scoring profile %q (available: %v)", name, c.ProfileNames())
	}
	return p, nil
}

// ProfileNames returns the configured profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Scoring.Profiles))
	for name := range c.Scoring.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
