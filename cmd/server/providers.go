package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-queue/internal/config"
	"github.com/phrazzld/scry-queue/internal/generation"
	"github.com/phrazzld/scry-queue/internal/platform/anthropic"
	"github.com/phrazzld/scry-queue/internal/platform/gemini"
	"github.com/phrazzld/scry-queue/internal/platform/openai"
)

// newTextGenerator builds the provider selected by cfg.Provider.
func newTextGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.TextGenerator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.NewGeminiGenerator(ctx, logger, cfg)
	case config.ProviderOpenAI:
		return openai.NewOpenAIGenerator(logger, cfg)
	case config.ProviderAnthropic:
		return anthropic.NewAnthropicGenerator(logger, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown LLM provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}
