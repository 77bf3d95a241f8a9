package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "QCOMP"

// keys lists every setting so that environment variables are visible to
// Unmarshal even when no default or file value exists.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.shutdown_timeout_seconds",
	"database.url",
	"llm.provider",
	"llm.gemini_api_key",
	"llm.openai_api_key",
	"llm.anthropic_api_key",
	"llm.openai_base_url",
	"llm.model_name",
	"llm.temperature",
	"llm.max_output_tokens",
	"llm.request_timeout_seconds",
	"queue.concurrency_limit",
	"queue.max_retries",
	"queue.backoff_base_ms",
	"queue.notification_history",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 30)

	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_output_tokens", 2048)
	v.SetDefault("llm.request_timeout_seconds", 120)

	v.SetDefault("queue.concurrency_limit", 1)
	v.SetDefault("queue.max_retries", 2)
	v.SetDefault("queue.backoff_base_ms", 2000)
	v.SetDefault("queue.notification_history", 50)
}

// Load reads configuration from an optional file and from environment
// variables prefixed with QCOMP_ (QCOMP_QUEUE_CONCURRENCY_LIMIT and so on).
// Environment variables take precedence over file values. An empty path looks
// for config.yaml in the working directory and tolerates its absence.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
