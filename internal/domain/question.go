package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuestionType identifies how a question is answered
type QuestionType string

// Possible question types
const (
	QuestionTypeSingle   QuestionType = "single"
	QuestionTypeMultiple QuestionType = "multiple"
	QuestionTypeJudge    QuestionType = "judge"
	QuestionTypeEssay    QuestionType = "essay"
)

// Difficulty grades a question
type Difficulty string

// Possible difficulty values
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// FieldStatus tracks where the answer or explanation of a question came from
type FieldStatus string

// Possible field status values
const (
	FieldStatusNone        FieldStatus = "none"
	FieldStatusAIPending   FieldStatus = "ai_pending"
	FieldStatusAIGenerated FieldStatus = "ai_generated"
	FieldStatusConfirmed   FieldStatus = "confirmed"
)

// Common validation errors for Question
var (
	ErrEmptyQuestionID      = errors.New("question ID cannot be empty")
	ErrEmptyQuestionContent = errors.New("question content cannot be empty")
	ErrInvalidQuestionType  = errors.New("invalid question type")
	ErrInvalidDifficulty    = errors.New("invalid difficulty")
	ErrInvalidFieldStatus   = errors.New("invalid field status")
	ErrMissingOptions       = errors.New("choice questions require options")
)

// Question is an exam question whose answer and explanation may be
// completed by an LLM.
type Question struct {
	ID         uuid.UUID         `json:"id"`
	CategoryID *uuid.UUID        `json:"category_id,omitempty"`
	Type       QuestionType      `json:"type"`
	Difficulty Difficulty        `json:"difficulty"`
	Content    string            `json:"content"`
	Options    map[string]string `json:"options,omitempty"`

	Answer            string      `json:"answer,omitempty"`
	AnswerStatus      FieldStatus `json:"answer_status"`
	Explanation       string      `json:"explanation,omitempty"`
	ExplanationStatus FieldStatus `json:"explanation_status"`

	Tags   []string `json:"tags,omitempty"`
	Source string   `json:"source,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewQuestion creates a Question with a fresh ID, medium difficulty and no
// answer or explanation. Returns an error if validation fails.
func NewQuestion(qType QuestionType, content string, options map[string]string) (*Question, error) {
	now := time.Now().UTC()
	q := &Question{
		ID:                uuid.New(),
		Type:              qType,
		Difficulty:        DifficultyMedium,
		Content:           content,
		Options:           options,
		AnswerStatus:      FieldStatusNone,
		ExplanationStatus: FieldStatusNone,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate checks if the Question has valid data.
func (q *Question) Validate() error {
	if q.ID == uuid.Nil {
		return ErrEmptyQuestionID
	}
	if q.Content == "" {
		return ErrEmptyQuestionContent
	}
	if !q.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidQuestionType, q.Type)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, q.Difficulty)
	}
	if !q.AnswerStatus.Valid() || !q.ExplanationStatus.Valid() {
		return ErrInvalidFieldStatus
	}
	if q.Type.IsChoice() && len(q.Options) == 0 {
		return ErrMissingOptions
	}
	return nil
}

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeSingle, QuestionTypeMultiple, QuestionTypeJudge, QuestionTypeEssay:
		return true
	default:
		return false
	}
}

// IsChoice reports whether answers are option letters.
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeSingle || t == QuestionTypeMultiple
}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Valid reports whether s is a known field status.
func (s FieldStatus) Valid() bool {
	switch s {
	case FieldStatusNone, FieldStatusAIPending, FieldStatusAIGenerated, FieldStatusConfirmed:
		return true
	default:
		return false
	}
}
