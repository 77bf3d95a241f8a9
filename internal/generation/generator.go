package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-queue/internal/domain"
	"github.com/phrazzld/scry-queue/internal/platform/logger"
)

// Generator produces answers and explanations for questions.
// This interface serves as a boundary between the application core and
// external LLM services.
type Generator interface {
	// GenerateAnswer returns a normalised answer for q: option letters for
	// choice questions, 正确 or 错误 for judge questions, free text otherwise.
	GenerateAnswer(ctx context.Context, q *domain.Question) (string, error)

	// GenerateExplanation returns an explanation of why answer is correct.
	// An empty answer falls back to the answer stored on q.
	GenerateExplanation(ctx context.Context, q *domain.Question, answer string) (string, error)
}

// Prompt is a single chat turn sent to a model.
type Prompt struct {
	System string
	User   string
}

// TextGenerator is implemented by provider adapters. It sends one prompt and
// returns the model's text output, classifying failures with the errors of
// this package. Implementations must not retry.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt Prompt) (string, error)
}

// PromptGenerator implements Generator on top of a TextGenerator.
type PromptGenerator struct {
	model  TextGenerator
	logger *slog.Logger
}

var _ Generator = (*PromptGenerator)(nil)

// NewPromptGenerator creates a Generator that renders prompts for model.
func NewPromptGenerator(model TextGenerator, logger *slog.Logger) (*PromptGenerator, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: text generator cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PromptGenerator{
		model:  model,
		logger: logger.With(slog.String("component", "prompt_generator")),
	}, nil
}

// GenerateAnswer implements Generator.GenerateAnswer
func (g *PromptGenerator) GenerateAnswer(ctx context.Context, q *domain.Question) (string, error) {
	if err := checkQuestion(q); err != nil {
		return "", err
	}

	prompt, err := AnswerPrompt(q)
	if err != nil {
		return "", err
	}

	raw, err := g.generate(ctx, q, "answer", prompt)
	if err != nil {
		return "", err
	}

	answer := ExtractAnswer(raw, q.Type, q.Options)
	if answer == "" {
		return "", fmt.Errorf("%w: no usable answer in %q", ErrInvalidResponse, truncate(raw, 64))
	}
	return answer, nil
}

// GenerateExplanation implements Generator.GenerateExplanation
func (g *PromptGenerator) GenerateExplanation(ctx context.Context, q *domain.Question, answer string) (string, error) {
	if err := checkQuestion(q); err != nil {
		return "", err
	}

	prompt, err := ExplanationPrompt(q, answer)
	if err != nil {
		return "", err
	}

	return g.generate(ctx, q, "explanation", prompt)
}

func (g *PromptGenerator) generate(ctx context.Context, q *domain.Question, field string, prompt Prompt) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger).With(
		slog.String("question_id", q.ID.String()),
		slog.String("field", field))

	log.DebugContext(ctx, "calling language model", slog.Int("prompt_length", len(prompt.User)))

	text, err := g.model.GenerateText(ctx, prompt)
	if err != nil {
		log.WarnContext(ctx, "language model call failed", slog.String("error", err.Error()))
		return "", err
	}

	text = trimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty %s", ErrInvalidResponse, field)
	}

	log.DebugContext(ctx, "language model call succeeded", slog.Int("response_length", len(text)))
	return text, nil
}

var errNilQuestion = errors.New("question cannot be nil")

func checkQuestion(q *domain.Question) error {
	if q == nil {
		return fmt.Errorf("%w: %w", ErrGenerationFailed, errNilQuestion)
	}
	if q.Content == "" {
		return fmt.Errorf("%w: %w", ErrGenerationFailed, domain.ErrEmptyQuestionContent)
	}
	return nil
}
