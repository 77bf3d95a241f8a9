package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// ShutdownTimeoutSeconds bounds the graceful shutdown of the HTTP server
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// ShutdownTimeout returns the graceful shutdown budget as a duration.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// LLM providers understood by the server
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=gemini openai anthropic"`

	GeminiAPIKey    string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key" validate:"required_if=Provider anthropic"`

	// OpenAIBaseURL points the OpenAI client at any compatible endpoint
	OpenAIBaseURL string `mapstructure:"openai_base_url" validate:"omitempty,url"`

	ModelName       string  `mapstructure:"model_name" validate:"required"`
	Temperature     float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens" validate:"gt=0"`

	// RequestTimeoutSeconds bounds a single completion, including every
	// generation call it makes
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"gt=0"`
}

// RequestTimeout returns the per-completion timeout as a duration.
func (c LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// QueueConfig contains the completion queue tunables.
type QueueConfig struct {
	ConcurrencyLimit int `mapstructure:"concurrency_limit" validate:"gte=1"`
	MaxRetries       int `mapstructure:"max_retries" validate:"gte=0"`
	BackoffBaseMS    int `mapstructure:"backoff_base_ms" validate:"gt=0"`

	// NotificationHistory is the number of recent notifications kept for the API
	NotificationHistory int `mapstructure:"notification_history" validate:"gt=0"`
}

// BackoffBase returns the retry backoff base as a duration.
func (c QueueConfig) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseMS) * time.Millisecond
}
