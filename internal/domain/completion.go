package domain

import (
	"errors"
	"fmt"
)

// CompletionMode selects which fields of a question an LLM should fill in
type CompletionMode string

// Possible completion modes
const (
	CompletionModeAnswer      CompletionMode = "answer"
	CompletionModeExplanation CompletionMode = "explanation"
	CompletionModeBoth        CompletionMode = "both"
)

// ErrInvalidCompletionMode is returned for an unknown completion mode.
var ErrInvalidCompletionMode = errors.New("invalid completion mode")

// ParseCompletionMode validates a mode name. An empty name selects both fields.
func ParseCompletionMode(s string) (CompletionMode, error) {
	switch mode := CompletionMode(s); mode {
	case CompletionModeAnswer, CompletionModeExplanation, CompletionModeBoth:
		return mode, nil
	case "":
		return CompletionModeBoth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCompletionMode, s)
	}
}

// IncludesAnswer reports whether the mode generates an answer.
func (m CompletionMode) IncludesAnswer() bool {
	return m == CompletionModeAnswer || m == CompletionModeBoth
}

// IncludesExplanation reports whether the mode generates an explanation.
func (m CompletionMode) IncludesExplanation() bool {
	return m == CompletionModeExplanation || m == CompletionModeBoth
}
