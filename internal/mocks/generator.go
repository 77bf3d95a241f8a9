package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-queue/internal/domain"
	"github.com/phrazzld/scry-queue/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	GenerateAnswerFn      func(ctx context.Context, q *domain.Question) (string, error)
	GenerateExplanationFn func(ctx context.Context, q *domain.Question, answer string) (string, error)

	// Default response values, used when the matching Fn is nil
	Answer      string
	Explanation string
	Err         error

	mu                sync.Mutex
	answerCalls       int
	explanationCalls  int
	explanationAnswer []string
}

var _ generation.Generator = (*MockGenerator)(nil)

// GenerateAnswer implements the generation.Generator interface
func (m *MockGenerator) GenerateAnswer(ctx context.Context, q *domain.Question) (string, error) {
	m.mu.Lock()
	m.answerCalls++
	m.mu.Unlock()

	if m.GenerateAnswerFn != nil {
		return m.GenerateAnswerFn(ctx, q)
	}
	return m.Answer, m.Err
}

// GenerateExplanation implements the generation.Generator interface
func (m *MockGenerator) GenerateExplanation(ctx context.Context, q *domain.Question, answer string) (string, error) {
	m.mu.Lock()
	m.explanationCalls++
	m.explanationAnswer = append(m.explanationAnswer, answer)
	m.mu.Unlock()

	if m.GenerateExplanationFn != nil {
		return m.GenerateExplanationFn(ctx, q, answer)
	}
	return m.Explanation, m.Err
}

// AnswerCalls returns how many times GenerateAnswer was called.
func (m *MockGenerator) AnswerCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.answerCalls
}

// ExplanationCalls returns how many times GenerateExplanation was called.
func (m *MockGenerator) ExplanationCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.explanationCalls
}

// ExplanationAnswers returns the answers passed to GenerateExplanation, in call order.
func (m *MockGenerator) ExplanationAnswers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.explanationAnswer...)
}

// MockTextGenerator implements generation.TextGenerator for testing
type MockTextGenerator struct {
	GenerateTextFn func(ctx context.Context, prompt generation.Prompt) (string, error)

	Text string
	Err  error

	mu      sync.Mutex
	prompts []generation.Prompt
}

var _ generation.TextGenerator = (*MockTextGenerator)(nil)

// GenerateText implements the generation.TextGenerator interface
func (m *MockTextGenerator) GenerateText(ctx context.Context, prompt generation.Prompt) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateTextFn != nil {
		return m.GenerateTextFn(ctx, prompt)
	}
	return m.Text, m.Err
}

// Prompts returns every prompt received, in call order.
func (m *MockTextGenerator) Prompts() []generation.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Prompt(nil), m.prompts...)
}
