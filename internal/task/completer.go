package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-queue/internal/domain"
	"github.com/phrazzld/scry-queue/internal/generation"
	"github.com/phrazzld/scry-queue/internal/platform/logger"
	"github.com/phrazzld/scry-queue/internal/queue"
	"github.com/phrazzld/scry-queue/internal/store"
)

// Common errors
var (
	ErrNilStore     = errors.New("question store cannot be nil")
	ErrNilGenerator = errors.New("generator cannot be nil")
)

// restoreTimeout bounds the status rollback after a failed completion.
const restoreTimeout = 5 * time.Second

// QuestionCompleter implements queue.Completer for CompletionRequest payloads.
type QuestionCompleter struct {
	store     store.QuestionStore
	generator generation.Generator
	timeout   time.Duration
	logger    *slog.Logger
}

var _ queue.Completer = (*QuestionCompleter)(nil)

// NewQuestionCompleter creates a QuestionCompleter. A positive timeout bounds
// each Complete call, including every generation call it makes.
func NewQuestionCompleter(
	questions store.QuestionStore,
	generator generation.Generator,
	timeout time.Duration,
	logger *slog.Logger,
) (*QuestionCompleter, error) {
	if questions == nil {
		return nil, ErrNilStore
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &QuestionCompleter{
		store:     questions,
		generator: generator,
		timeout:   timeout,
		logger:    logger.With(slog.String("component", "question_completer")),
	}, nil
}

// Complete implements queue.Completer. It returns a CompletionResult on success.
func (c *QuestionCompleter) Complete(ctx context.Context, item queue.Item) (any, error) {
	req, err := requestFromItem(item)
	if err != nil {
		c.logger.ErrorContext(ctx, "rejecting queue item", slog.String("item_id", item.ID), slog.String("error", err.Error()))
		return nil, queue.Permanent(err)
	}

	log := c.logger.With(
		slog.String("question_id", req.QuestionID.String()),
		slog.String("mode", string(req.Mode)),
		slog.Int("retry_count", item.RetryCount))
	ctx = logger.WithLogger(ctx, log)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.complete(ctx, req)
	if err != nil {
		classified := classify(err)
		log.WarnContext(ctx, "question completion failed",
			slog.String("error", err.Error()),
			slog.Bool("rate_limited", errors.Is(classified, queue.ErrRateLimited)),
			slog.Bool("permanent", errors.Is(classified, queue.ErrPermanent)))
		return nil, classified
	}

	log.InfoContext(ctx, "question completed",
		slog.Bool("answer_saved", result.AnswerSaved),
		slog.Bool("explanation_saved", result.ExplanationSaved))
	return result, nil
}

func (c *QuestionCompleter) complete(ctx context.Context, req CompletionRequest) (CompletionResult, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	result := CompletionResult{QuestionID: req.QuestionID}

	q, err := c.store.GetByID(ctx, req.QuestionID)
	if err != nil {
		return result, fmt.Errorf("failed to load question: %w", err)
	}

	wantAnswer := req.Mode.IncludesAnswer() && q.AnswerStatus != domain.FieldStatusConfirmed
	wantExplanation := req.Mode.IncludesExplanation() && q.ExplanationStatus != domain.FieldStatusConfirmed
	if !wantAnswer && !wantExplanation {
		log.InfoContext(ctx, "nothing to complete, fields already confirmed")
		return result, nil
	}

	pending := domain.FieldStatusAIPending
	var mark store.StatusUpdate
	restore := store.StatusUpdate{OnlyIfPending: true}
	if wantAnswer {
		mark.Answer = &pending
		restore.Answer = &q.AnswerStatus
	}
	if wantExplanation {
		mark.Explanation = &pending
		restore.Explanation = &q.ExplanationStatus
	}

	if err := c.store.UpdateStatuses(ctx, q.ID, mark); err != nil {
		return result, fmt.Errorf("failed to mark question pending: %w", err)
	}

	completion, err := c.generate(ctx, q, wantAnswer, wantExplanation)
	if err == nil {
		var saved store.SavedCompletion
		saved, err = c.store.SaveCompletion(ctx, q.ID, completion)
		if err == nil {
			result.AnswerSaved = saved.AnswerSaved
			result.ExplanationSaved = saved.ExplanationSaved
			if completion.Answer != nil {
				result.Answer = *completion.Answer
			}
			if completion.Explanation != nil {
				result.Explanation = *completion.Explanation
			}
			return result, nil
		}
		err = fmt.Errorf("failed to save completion: %w", err)
	}

	c.restoreStatuses(ctx, q, restore)
	return result, err
}

// generate runs the model calls for the selected fields. The explanation is
// seeded with the freshly generated answer when both are requested.
func (c *QuestionCompleter) generate(
	ctx context.Context,
	q *domain.Question,
	wantAnswer, wantExplanation bool,
) (store.Completion, error) {
	var completion store.Completion

	answer := ""
	if wantAnswer {
		generated, err := c.generator.GenerateAnswer(ctx, q)
		if err != nil {
			return completion, fmt.Errorf("failed to generate answer: %w", err)
		}
		answer = generated
		completion.Answer = &generated
	}

	if wantExplanation {
		explanation, err := c.generator.GenerateExplanation(ctx, q, answer)
		if err != nil {
			return completion, fmt.Errorf("failed to generate explanation: %w", err)
		}
		completion.Explanation = &explanation
	}

	return completion, nil
}

// restoreStatuses puts fields still ai_pending back to what they were before
// the attempt. It runs even when ctx is already cancelled.
func (c *QuestionCompleter) restoreStatuses(ctx context.Context, q *domain.Question, restore store.StatusUpdate) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
	defer cancel()

	if err := c.store.UpdateStatuses(restoreCtx, q.ID, restore); err != nil {
		log.ErrorContext(ctx, "failed to restore question statuses", slog.String("error", err.Error()))
	}
}

// classify translates completion failures into the queue's vocabulary.
func classify(err error) error {
	switch {
	case errors.Is(err, generation.ErrRateLimited):
		return queue.RateLimited(err)
	case generation.IsPermanent(err),
		store.IsNotFoundError(err),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, ErrInvalidPayload),
		errors.Is(err, generation.ErrGenerationFailed):
		return queue.Permanent(err)
	default:
		return err
	}
}
