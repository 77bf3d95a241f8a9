package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-queue/internal/domain"
	"github.com/phrazzld/scry-queue/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockQuestionStore is a mock of store.QuestionStore for use with testify/mock
type MockQuestionStore struct {
	mock.Mock
}

var _ store.QuestionStore = (*MockQuestionStore)(nil)

// Create is a mock implementation of store.QuestionStore.Create
func (m *MockQuestionStore) Create(ctx context.Context, q *domain.Question) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

// GetByID is a mock implementation of store.QuestionStore.GetByID
func (m *MockQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	args := m.Called(ctx, id)
	if q, ok := args.Get(0).(*domain.Question); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

// FindIDs is a mock implementation of store.QuestionStore.FindIDs
func (m *MockQuestionStore) FindIDs(ctx context.Context, filter store.QuestionFilter, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, filter, limit)
	if ids, ok := args.Get(0).([]uuid.UUID); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateStatuses is a mock implementation of store.QuestionStore.UpdateStatuses
func (m *MockQuestionStore) UpdateStatuses(ctx context.Context, id uuid.UUID, update store.StatusUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

// SaveCompletion is a mock implementation of store.QuestionStore.SaveCompletion
func (m *MockQuestionStore) SaveCompletion(
	ctx context.Context,
	id uuid.UUID,
	completion store.Completion,
) (store.SavedCompletion, error) {
	args := m.Called(ctx, id, completion)
	saved, _ := args.Get(0).(store.SavedCompletion)
	return saved, args.Error(1)
}

// WithTx is a mock implementation of store.QuestionStore.WithTx
func (m *MockQuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	args := m.Called(tx)
	if ret, ok := args.Get(0).(store.QuestionStore); ok {
		return ret
	}
	return m
}
