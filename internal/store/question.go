package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-queue/internal/domain"
)

// QuestionFilter selects questions for batch completion. Nil fields match
// every question.
type QuestionFilter struct {
	CategoryID        *uuid.UUID
	Type              *domain.QuestionType
	AnswerStatus      *domain.FieldStatus
	ExplanationStatus *domain.FieldStatus
}

// StatusUpdate changes the answer and/or explanation status of a question.
// Nil fields are left untouched.
type StatusUpdate struct {
	Answer      *domain.FieldStatus
	Explanation *domain.FieldStatus

	// OnlyIfPending restricts the change to fields currently ai_pending, so
	// rolling back a failed generation never clobbers a confirmed field.
	OnlyIfPending bool
}

// Completion carries generated text for a question. Nil fields are left
// untouched; non-nil fields are stored with status ai_generated.
type Completion struct {
	Answer      *string
	Explanation *string
}

// SavedCompletion reports which fields SaveCompletion actually wrote.
// A field a human confirmed while generation was running is kept.
type SavedCompletion struct {
	AnswerSaved      bool
	ExplanationSaved bool
}

// QuestionStore defines the interface for question data persistence.
type QuestionStore interface {
	// Create saves a new question to the store.
	// Returns validation errors from the domain Question if data is invalid.
	Create(ctx context.Context, q *domain.Question) error

	// GetByID retrieves a question by its unique ID.
	// Returns ErrQuestionNotFound if the question does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error)

	// FindIDs returns the IDs of questions matching filter, oldest first.
	// A non-positive limit returns every match.
	FindIDs(ctx context.Context, filter QuestionFilter, limit int) ([]uuid.UUID, error)

	// UpdateStatuses changes the answer and/or explanation status.
	// Returns ErrQuestionNotFound if the question does not exist.
	UpdateStatuses(ctx context.Context, id uuid.UUID, update StatusUpdate) error

	// SaveCompletion stores generated text and marks it ai_generated,
	// skipping fields whose status is already confirmed.
	// Returns ErrQuestionNotFound if the question does not exist.
	SaveCompletion(ctx context.Context, id uuid.UUID, completion Completion) (SavedCompletion, error)

	// WithTx returns a new QuestionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) QuestionStore
}
