package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/phrazzld/scry-queue/internal/config"
	"github.com/phrazzld/scry-queue/internal/generation"
	"github.com/phrazzld/scry-queue/internal/platform/logger"
)

// OpenAIGenerator implements generation.TextGenerator using the OpenAI SDK.
type OpenAIGenerator struct {
	logger      *slog.Logger
	client      *openaisdk.Client
	model       string
	temperature float64
	maxTokens   int64
}

var _ generation.TextGenerator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates an OpenAIGenerator from the LLM configuration.
// Extra request options are appended after the configured ones.
func NewOpenAIGenerator(logger *slog.Logger, cfg config.LLMConfig, opts ...option.RequestOption) (*OpenAIGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithMaxRetries(0),
	}
	if cfg.OpenAIBaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	client := openaisdk.NewClient(clientOpts...)

	return &OpenAIGenerator{
		logger:      logger.With(slog.String("component", "openai_generator")),
		client:      &client,
		model:       cfg.ModelName,
		temperature: float64(cfg.Temperature),
		maxTokens:   int64(cfg.MaxOutputTokens),
	}, nil
}

// GenerateText implements generation.TextGenerator
func (g *OpenAIGenerator) GenerateText(ctx context.Context, prompt generation.Prompt) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, 2)
	if prompt.System != "" {
		messages = append(messages, openaisdk.SystemMessage(prompt.System))
	}
	messages = append(messages, openaisdk.UserMessage(prompt.User))

	params := openaisdk.ChatCompletionNewParams{
		Model:       shared.ChatModel(g.model),
		Messages:    messages,
		Temperature: openaisdk.Float(g.temperature),
	}
	if g.maxTokens > 0 {
		params.MaxTokens = openaisdk.Int(g.maxTokens)
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.WarnContext(ctx, "OpenAI API call failed",
			slog.String("model", g.model),
			slog.String("error", err.Error()))
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", generation.ErrInvalidResponse)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", fmt.Errorf("%w: finish reason content_filter", generation.ErrContentBlocked)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		if choice.Message.Refusal != "" {
			return "", fmt.Errorf("%w: %s", generation.ErrContentBlocked, choice.Message.Refusal)
		}
		return "", fmt.Errorf("%w: empty message", generation.ErrInvalidResponse)
	}
	return choice.Message.Content, nil
}

func classifyError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", generation.ErrTransientFailure, err)
	}

	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == "insufficient_quota" || apiErr.Type == "rate_limit_exceeded" ||
			generation.IsQuotaMessage(apiErr.Message) {
			return fmt.Errorf("%w: %w", generation.ErrRateLimited, err)
		}
		return fmt.Errorf("%w: %w", generation.StatusError(apiErr.StatusCode), err)
	}
	if generation.IsQuotaMessage(err.Error()) {
		return fmt.Errorf("%w: %w", generation.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %w", generation.ErrTransientFailure, err)
}
