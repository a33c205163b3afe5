package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for the assistant service.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Exa     ExaConfig     `yaml:"exa"`
	Cache   CacheConfig   `yaml:"cache"`
	Guest   GuestConfig   `yaml:"guest"`
	Video   VideoConfig   `yaml:"video"`
	Chat    ChatConfig    `yaml:"chat"`
	Logging LoggingConfig `yaml:"logging"`
	CORS    CORSConfig    `yaml:"cors"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `yaml:"port" env:"ASSISTANT_PORT"`
	Debug   bool   `yaml:"debug" env:"ASSISTANT_DEBUG"`
}

// ExaConfig holds search provider configuration.
//
// MaxResults caps how many results a single provider call may request.
// Raising it can improve result quality at the cost of latency; it is
// clamped to [10, 100] regardless of what the environment asks for.
type ExaConfig struct {
	APIKey       string        `yaml:"api_key" env:"EXA_API_KEY"`
	BaseURL      string        `yaml:"base_url" env:"EXA_BASE_URL"`
	MaxResults   int           `yaml:"max_results" env:"EXA_MAX_RESULTS"`
	DefaultDepth string        `yaml:"default_depth" env:"EXA_DEFAULT_DEPTH"`
	Timeout      time.Duration `yaml:"timeout"`
}

// CacheConfig holds cache backend selection and tuning.
// When UseLocalRedis is set the direct-protocol client is used; otherwise the
// REST client is used if the Upstash URL and token are configured.
type CacheConfig struct {
	UseLocalRedis    bool          `yaml:"use_local_redis" env:"USE_LOCAL_REDIS"`
	LocalRedisURL    string        `yaml:"local_redis_url" env:"LOCAL_REDIS_URL"`
	UpstashRESTURL   string        `yaml:"upstash_rest_url" env:"UPSTASH_REDIS_REST_URL"`
	UpstashRESTToken string        `yaml:"upstash_rest_token" env:"UPSTASH_REDIS_REST_TOKEN"`
	TTL              time.Duration `yaml:"ttl"`
	SweepInterval    time.Duration `yaml:"sweep_interval"`
}

// GuestConfig holds guest rate limiting configuration.
type GuestConfig struct {
	MaxMessages int           `yaml:"max_messages"`
	Window      time.Duration `yaml:"window"`
}

// VideoConfig holds video search and enrichment configuration.
type VideoConfig struct {
	EndpointURL       string        `yaml:"endpoint_url" env:"YT_ENDPOINT"`
	BatchSize         int           `yaml:"batch_size"`
	BatchDelay        time.Duration `yaml:"batch_delay"`
	CallTimeout       time.Duration `yaml:"call_timeout"`
	DefaultMaxResults int           `yaml:"default_max_results"`
}

// ChatConfig holds the chat boundary configuration. The streaming LLM layer
// is an external collaborator; only its address and the enabled provider set
// live here.
type ChatConfig struct {
	UpstreamURL      string   `yaml:"upstream_url" env:"CHAT_UPSTREAM_URL"`
	DefaultProvider  string   `yaml:"default_provider"`
	EnabledProviders []string `yaml:"enabled_providers" env:"CHAT_ENABLED_PROVIDERS"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins" env:"CORS_ORIGINS"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// Result ceiling bounds for provider calls.
const (
	MinResultCeiling     = 10
	MaxResultCeiling     = 100
	defaultResultCeiling = 50
)

// Load loads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	cfg, err := loadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}

	// Clamp after env overrides so a misconfigured EXA_MAX_RESULTS cannot
	// push the ceiling outside [MinResultCeiling, MaxResultCeiling].
	if cfg.Exa.MaxResults < MinResultCeiling {
		cfg.Exa.MaxResults = MinResultCeiling
	}
	if cfg.Exa.MaxResults > MaxResultCeiling {
		cfg.Exa.MaxResults = MaxResultCeiling
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "assistant"
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = "1.0.0"
	}
	if cfg.Service.Port == 0 {
		cfg.Service.Port = 8095
	}

	if cfg.Exa.BaseURL == "" {
		cfg.Exa.BaseURL = "https://api.exa.ai"
	}
	if cfg.Exa.MaxResults == 0 {
		cfg.Exa.MaxResults = defaultResultCeiling
	}
	if cfg.Exa.DefaultDepth == "" {
		cfg.Exa.DefaultDepth = "advanced"
	}
	if cfg.Exa.Timeout == 0 {
		cfg.Exa.Timeout = 30 * time.Second
	}

	if cfg.Cache.LocalRedisURL == "" {
		cfg.Cache.LocalRedisURL = "redis://localhost:6379"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.Cache.SweepInterval == 0 {
		cfg.Cache.SweepInterval = time.Hour
	}

	if cfg.Guest.MaxMessages == 0 {
		cfg.Guest.MaxMessages = 10
	}
	if cfg.Guest.Window == 0 {
		cfg.Guest.Window = 24 * time.Hour
	}

	if cfg.Video.BatchSize == 0 {
		cfg.Video.BatchSize = 5
	}
	if cfg.Video.BatchDelay == 0 {
		cfg.Video.BatchDelay = 100 * time.Millisecond
	}
	if cfg.Video.CallTimeout == 0 {
		cfg.Video.CallTimeout = 10 * time.Second
	}
	if cfg.Video.DefaultMaxResults == 0 {
		cfg.Video.DefaultMaxResults = 8
	}

	if cfg.Chat.DefaultProvider == "" {
		cfg.Chat.DefaultProvider = "google"
	}
	if len(cfg.Chat.EnabledProviders) == 0 {
		cfg.Chat.EnabledProviders = []string{"google", "openai", "anthropic"}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = 3600
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return &ValidationError{Field: "service.port", Message: fmt.Sprintf("invalid port: %d", c.Service.Port)}
	}
	if c.Exa.DefaultDepth != "basic" && c.Exa.DefaultDepth != "advanced" {
		return &ValidationError{Field: "exa.default_depth", Message: "must be basic or advanced"}
	}
	if c.Guest.MaxMessages < 1 {
		return &ValidationError{Field: "guest.max_messages", Message: "must be greater than 0"}
	}
	if c.Video.BatchSize < 1 {
		return &ValidationError{Field: "video.batch_size", Message: "must be greater than 0"}
	}
	if err := validateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}
