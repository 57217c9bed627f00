package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// LLMConfig contains all LLM integration related settings.
//
// Both API keys are optional: an empty key leaves that provider
// unconfigured, and with neither provider configured the generation
// service serves fallback documents only.
type LLMConfig struct {
	// OpenAIAPIKey authenticates against the primary provider.
	OpenAIAPIKey string `mapstructure:"openai_api_key"`

	// OpenAIBaseURL overrides the primary provider endpoint (tests, proxies).
	OpenAIBaseURL string `mapstructure:"openai_base_url"`

	// GeminiAPIKey authenticates against the secondary provider.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	// GeminiBaseURL overrides the secondary provider endpoint (tests, proxies).
	GeminiBaseURL string `mapstructure:"gemini_base_url"`

	// GeminiModel overrides the secondary provider's default model.
	GeminiModel string `mapstructure:"gemini_model"`

	// RateLimitMax is the primary provider request budget per window.
	// Zero means the package default.
	RateLimitMax int `mapstructure:"rate_limit_max" validate:"gte=0"`

	// RateLimitWindowSeconds is the budget window length.
	// Zero means the package default.
	RateLimitWindowSeconds int `mapstructure:"rate_limit_window_seconds" validate:"gte=0"`

	// CacheTTLHours is how long generated artifacts stay cached.
	// Zero means the package default (24 hours).
	CacheTTLHours int `mapstructure:"cache_ttl_hours" validate:"gte=0"`
}
