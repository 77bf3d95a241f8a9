package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/scry-queue/internal/config"
	"github.com/phrazzld/scry-queue/internal/generation"
	"github.com/phrazzld/scry-queue/internal/platform/logger"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used by GeminiGenerator.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements generation.TextGenerator using Google's Gemini API.
type GeminiGenerator struct {
	logger          *slog.Logger
	models          contentGenerator
	model           string
	temperature     float32
	maxOutputTokens int32
}

var _ generation.TextGenerator = (*GeminiGenerator)(nil)

// Option customises a GeminiGenerator.
type Option func(*genai.ClientConfig)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPClient = client
	}
}

// NewGeminiGenerator creates a GeminiGenerator from the LLM configuration.
// Returns generation.ErrInvalidConfig if the API key or model is missing.
func NewGeminiGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
	opts ...Option,
) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(clientConfig)
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(client.Models, logger, cfg), nil
}

func newGenerator(models contentGenerator, logger *slog.Logger, cfg config.LLMConfig) *GeminiGenerator {
	return &GeminiGenerator{
		logger:          logger.With(slog.String("component", "gemini_generator")),
		models:          models,
		model:           cfg.ModelName,
		temperature:     cfg.Temperature,
		maxOutputTokens: int32(cfg.MaxOutputTokens),
	}
}

func validateConfig(cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	return nil
}

// GenerateText implements generation.TextGenerator
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt generation.Prompt) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt.User}},
	}}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxOutputTokens,
	}
	if prompt.System != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		}
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, genConfig)
	if err != nil {
		classified := classifyError(err)
		log.WarnContext(ctx, "Gemini API call failed",
			slog.String("model", g.model),
			slog.String("error", err.Error()))
		return "", classified
	}

	return responseText(resp)
}

// responseText extracts the text of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if blockedFinish(candidate.FinishReason) {
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: no text in response", generation.ErrInvalidResponse)
	}
	return text.String(), nil
}

func blockedFinish(reason genai.FinishReason) bool {
	switch reason {
	case genai.FinishReasonSafety:
		return true
	}
	switch string(reason) {
	case "PROHIBITED_CONTENT", "BLOCKLIST", "SPII":
		return true
	}
	return false
}

// classifyError maps a genai client error onto the generation sentinels,
// keeping the original error in the chain.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", generation.ErrTransientFailure, err)
	}

	code, status := apiErrorDetails(err)
	switch {
	case status == "RESOURCE_EXHAUSTED" || generation.IsQuotaMessage(err.Error()):
		return fmt.Errorf("%w: %w", generation.ErrRateLimited, err)
	case code != 0:
		return fmt.Errorf("%w: %w", generation.StatusError(code), err)
	default:
		return fmt.Errorf("%w: %w", generation.ErrTransientFailure, err)
	}
}

func apiErrorDetails(err error) (int, string) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status
	}
	return 0, ""
}
