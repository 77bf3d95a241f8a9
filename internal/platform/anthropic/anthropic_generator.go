package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/phrazzld/scry-queue/internal/config"
	"github.com/phrazzld/scry-queue/internal/generation"
	"github.com/phrazzld/scry-queue/internal/platform/logger"
)

// AnthropicGenerator implements generation.TextGenerator using the Anthropic SDK.
type AnthropicGenerator struct {
	logger      *slog.Logger
	client      *anthropicsdk.Client
	model       string
	temperature float64
	maxTokens   int64
}

var _ generation.TextGenerator = (*AnthropicGenerator)(nil)

// NewAnthropicGenerator creates an AnthropicGenerator from the LLM configuration.
// Extra request options are appended after the configured ones.
func NewAnthropicGenerator(
	logger *slog.Logger,
	cfg config.LLMConfig,
	opts ...option.RequestOption,
) (*AnthropicGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.MaxOutputTokens <= 0 {
		return nil, fmt.Errorf("%w: max output tokens must be positive", generation.ErrInvalidConfig)
	}

	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := anthropicsdk.NewClient(clientOpts...)

	return &AnthropicGenerator{
		logger:      logger.With(slog.String("component", "anthropic_generator")),
		client:      &client,
		model:       cfg.ModelName,
		temperature: float64(cfg.Temperature),
		maxTokens:   int64(cfg.MaxOutputTokens),
	}, nil
}

// GenerateText implements generation.TextGenerator
func (g *AnthropicGenerator) GenerateText(ctx context.Context, prompt generation.Prompt) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt.User)),
		},
		Temperature: anthropicsdk.Float(g.temperature),
	}
	if prompt.System != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: prompt.System}}
	}

	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		log.WarnContext(ctx, "Anthropic API call failed",
			slog.String("model", g.model),
			slog.String("error", err.Error()))
		return "", classifyError(err)
	}

	if msg.StopReason == "refusal" {
		return "", fmt.Errorf("%w: stop reason refusal", generation.ErrContentBlocked)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: no text blocks", generation.ErrInvalidResponse)
	}
	return text.String(), nil
}

func classifyError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", generation.ErrTransientFailure, err)
	}

	if generation.IsQuotaMessage(err.Error()) {
		return fmt.Errorf("%w: %w", generation.ErrRateLimited, err)
	}
	var apiErr *anthropicsdk.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", generation.StatusError(apiErr.StatusCode), err)
	}
	return fmt.Errorf("%w: %w", generation.ErrTransientFailure, err)
}
