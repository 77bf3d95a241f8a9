package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-queue/internal/domain"
	"github.com/phrazzld/scry-queue/internal/events"
	"github.com/phrazzld/scry-queue/internal/mocks"
	"github.com/phrazzld/scry-queue/internal/queue"
	"github.com/phrazzld/scry-queue/internal/service"
	"github.com/phrazzld/scry-queue/internal/store"
	"github.com/phrazzld/scry-queue/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeQueue records calls and returns canned results.
type fakeQueue struct {
	enqueued []queue.NewItem
	added    int
	removed  bool
	limit    int
	err      error
	paused   bool
	retried  int
	cleared  int
	clearAll bool
	limitErr error
	snapshot queue.Snapshot
	items    []queue.Item
}

func (q *fakeQueue) Enqueue(items []queue.NewItem) (int, error) {
	q.enqueued = append(q.enqueued, items...)
	return q.added, q.err
}

func (q *fakeQueue) Pause() error {
	q.paused = true
	return q.err
}

func (q *fakeQueue) Resume() error {
	q.paused = false
	return q.err
}

func (q *fakeQueue) Remove(string) (bool, error) { return q.removed, q.err }

func (q *fakeQueue) RetryFailed() (int, error) { return q.retried, q.err }

func (q *fakeQueue) ClearCompleted() (int, error) { return q.cleared, q.err }

func (q *fakeQueue) ClearAll() error {
	q.clearAll = true
	return q.err
}

func (q *fakeQueue) Snapshot() (queue.Snapshot, error) { return q.snapshot, q.err }

func (q *fakeQueue) Items() ([]queue.Item, error) { return q.items, q.err }

func (q *fakeQueue) SetConcurrencyLimit(n int) error {
	if q.limitErr != nil {
		return q.limitErr
	}
	q.limit = n
	return q.err
}

func newService(t *testing.T, q service.Queue, st *mocks.MockQuestionStore) *service.CompletionService {
	t.Helper()
	svc, err := service.NewCompletionService(q, st, events.NewRecentBuffer(10), nil)
	require.NoError(t, err)
	return svc
}

func TestNewCompletionService_NilDependencies(t *testing.T) {
	st := new(mocks.MockQuestionStore)
	buf := events.NewRecentBuffer(1)

	_, err := service.NewCompletionService(nil, st, buf, nil)
	assert.Error(t, err)
	_, err = service.NewCompletionService(&fakeQueue{}, nil, buf, nil)
	assert.Error(t, err)
	_, err = service.NewCompletionService(&fakeQueue{}, st, nil, nil)
	assert.Error(t, err)
}

func TestEnqueue_ExplicitIDs(t *testing.T) {
	q := &fakeQueue{added: 1}
	st := new(mocks.MockQuestionStore)
	svc := newService(t, q, st)

	a, b := uuid.New(), uuid.New()
	res, err := svc.Enqueue(context.Background(), service.EnqueueRequest{
		QuestionIDs: []uuid.UUID{a, b},
		Mode:        "answer",
	})
	require.NoError(t, err)
	assert.Equal(t, service.EnqueueResult{Requested: 2, Added: 1}, res)

	require.Len(t, q.enqueued, 2)
	assert.Equal(t, task.ItemID(a), q.enqueued[0].ID)
	assert.Equal(t, task.CompletionRequest{QuestionID: b, Mode: domain.CompletionModeAnswer}, q.enqueued[1].Payload)
	st.AssertNotCalled(t, "FindIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnqueue_Filter(t *testing.T) {
	q := &fakeQueue{added: 1}
	st := new(mocks.MockQuestionStore)
	svc := newService(t, q, st)

	none := domain.FieldStatusNone
	filter := store.QuestionFilter{AnswerStatus: &none}
	id := uuid.New()
	st.On("FindIDs", mock.Anything, filter, 25).Return([]uuid.UUID{id}, nil)

	res, err := svc.Enqueue(context.Background(), service.EnqueueRequest{Filter: filter, Limit: 25})
	require.NoError(t, err)
	assert.Equal(t, service.EnqueueResult{Requested: 1, Added: 1}, res)
	require.Len(t, q.enqueued, 1)
	assert.Equal(t, task.CompletionRequest{QuestionID: id, Mode: domain.CompletionModeBoth}, q.enqueued[0].Payload)
	st.AssertExpectations(t)
}

func TestEnqueue_NothingSelected(t *testing.T) {
	q := &fakeQueue{}
	st := new(mocks.MockQuestionStore)
	st.On("FindIDs", mock.Anything, store.QuestionFilter{}, 0).Return([]uuid.UUID{}, nil)

	res, err := newService(t, q, st).Enqueue(context.Background(), service.EnqueueRequest{})
	require.NoError(t, err)
	assert.Zero(t, res.Requested)
	assert.Empty(t, q.enqueued, "an empty selection never reaches the queue")
}

func TestEnqueue_Errors(t *testing.T) {
	t.Run("bad mode", func(t *testing.T) {
		_, err := newService(t, &fakeQueue{}, new(mocks.MockQuestionStore)).Enqueue(context.Background(),
			service.EnqueueRequest{QuestionIDs: []uuid.UUID{uuid.New()}, Mode: "all"})
		assert.ErrorIs(t, err, service.ErrInvalidRequest)
		assert.ErrorIs(t, err, domain.ErrInvalidCompletionMode)
	})

	t.Run("nil id", func(t *testing.T) {
		_, err := newService(t, &fakeQueue{}, new(mocks.MockQuestionStore)).Enqueue(context.Background(),
			service.EnqueueRequest{QuestionIDs: []uuid.UUID{uuid.Nil}})
		assert.ErrorIs(t, err, service.ErrInvalidRequest)
	})

	t.Run("store failure", func(t *testing.T) {
		st := new(mocks.MockQuestionStore)
		st.On("FindIDs", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		_, err := newService(t, &fakeQueue{}, st).Enqueue(context.Background(), service.EnqueueRequest{})
		var svcErr *service.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "enqueue", svcErr.Operation)
	})

	t.Run("queue stopped", func(t *testing.T) {
		q := &fakeQueue{err: queue.ErrProcessorStopped}
		_, err := newService(t, q, new(mocks.MockQuestionStore)).Enqueue(context.Background(),
			service.EnqueueRequest{QuestionIDs: []uuid.UUID{uuid.New()}})
		assert.ErrorIs(t, err, queue.ErrProcessorStopped)
	})
}

func TestQueueControls(t *testing.T) {
	ctx := context.Background()
	q := &fakeQueue{retried: 3, cleared: 2, removed: true, snapshot: queue.Snapshot{Total: 4}}
	svc := newService(t, q, new(mocks.MockQuestionStore))

	require.NoError(t, svc.Pause(ctx))
	assert.True(t, q.paused)
	require.NoError(t, svc.Resume(ctx))
	assert.False(t, q.paused)

	n, err := svc.RetryFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = svc.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, svc.ClearAll(ctx))
	assert.True(t, q.clearAll)

	require.NoError(t, svc.SetConcurrencyLimit(ctx, 4))
	assert.Equal(t, 4, q.limit)

	require.NoError(t, svc.Remove(ctx, "x"))

	snap, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Total)

	assert.Empty(t, svc.Notifications(10))
}

func TestRemove_NotFound(t *testing.T) {
	svc := newService(t, &fakeQueue{removed: false}, new(mocks.MockQuestionStore))
	assert.ErrorIs(t, svc.Remove(context.Background(), "missing"), service.ErrItemNotFound)
}

func TestSetConcurrencyLimit_Invalid(t *testing.T) {
	svc := newService(t, &fakeQueue{limitErr: queue.ErrInvalidConcurrency}, new(mocks.MockQuestionStore))
	err := svc.SetConcurrencyLimit(context.Background(), 0)
	assert.ErrorIs(t, err, service.ErrInvalidRequest)
	assert.ErrorIs(t, err, queue.ErrInvalidConcurrency)
}

func TestNewServiceError(t *testing.T) {
	assert.NoError(t, service.NewServiceError("op", "msg", nil))
	assert.Equal(t, service.ErrItemNotFound, service.NewServiceError("op", "msg", service.ErrItemNotFound))

	cause := errors.New("boom")
	err := service.NewServiceError("pause", "failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "completion service pause failed: failed: boom", err.Error())
}
