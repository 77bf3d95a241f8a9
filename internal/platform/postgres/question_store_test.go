package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-queue/internal/domain"
	"github.com/phrazzld/scry-queue/internal/platform/postgres"
	"github.com/phrazzld/scry-queue/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var questionRowColumns = []string{
	"id", "category_id", "type", "difficulty", "content", "options",
	"answer", "answer_status", "explanation", "explanation_status", "tags", "source",
	"created_at", "updated_at",
}

func newMockStore(t *testing.T) (*postgres.PostgresQuestionStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return postgres.NewPostgresQuestionStore(db, nil), mock
}

func strPtr(s string) *string { return &s }

func TestNewPostgresQuestionStore_NilDB(t *testing.T) {
	assert.Panics(t, func() { postgres.NewPostgresQuestionStore(nil, nil) })
}

func TestQuestionStore_Create(t *testing.T) {
	q, err := domain.NewQuestion(domain.QuestionTypeSingle, "2 + 2 = ?", map[string]string{"A": "3", "B": "4"})
	require.NoError(t, err)
	q.Tags = []string{"math"}

	t.Run("inserts row", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO questions")).
			WithArgs(
				q.ID, sqlmock.AnyArg(), "single", "medium", "2 + 2 = ?",
				`{"A":"3","B":"4"}`, sqlmock.AnyArg(), "none", sqlmock.AnyArg(), "none",
				`["math"]`, sqlmock.AnyArg(), q.CreatedAt, q.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), q))
	})

	t.Run("validation failure never reaches the database", func(t *testing.T) {
		s, _ := newMockStore(t)
		bad := *q
		bad.Content = ""
		err := s.Create(context.Background(), &bad)
		assert.ErrorIs(t, err, domain.ErrEmptyQuestionContent)
	})

	t.Run("unknown category", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO questions")).
			WillReturnError(newPgError("23503"))

		err := s.Create(context.Background(), q)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("duplicate id", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO questions")).
			WillReturnError(newPgError("23505"))

		err := s.Create(context.Background(), q)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})
}

func TestQuestionStore_GetByID(t *testing.T) {
	id := uuid.New()
	categoryID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("found", func(t *testing.T) {
		s, mock := newMockStore(t)
		rows := sqlmock.NewRows(questionRowColumns).AddRow(
			id.String(), categoryID.String(), "multiple", "hard", "Pick primes",
			[]byte(`{"A":"2","B":"4","C":"5"}`), "AC", "ai_generated", nil, "none",
			[]byte(`["math","primes"]`), "chapter 1", now, now,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(rows)

		q, err := s.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, q.ID)
		require.NotNil(t, q.CategoryID)
		assert.Equal(t, categoryID, *q.CategoryID)
		assert.Equal(t, domain.QuestionTypeMultiple, q.Type)
		assert.Equal(t, domain.DifficultyHard, q.Difficulty)
		assert.Equal(t, map[string]string{"A": "2", "B": "4", "C": "5"}, q.Options)
		assert.Equal(t, "AC", q.Answer)
		assert.Equal(t, domain.FieldStatusAIGenerated, q.AnswerStatus)
		assert.Empty(t, q.Explanation)
		assert.Equal(t, domain.FieldStatusNone, q.ExplanationStatus)
		assert.Equal(t, []string{"math", "primes"}, q.Tags)
		assert.Equal(t, "chapter 1", q.Source)
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE id = $1")).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		_, err := s.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrQuestionNotFound)
	})

	t.Run("malformed options", func(t *testing.T) {
		s, mock := newMockStore(t)
		rows := sqlmock.NewRows(questionRowColumns).AddRow(
			id.String(), nil, "single", "easy", "?", []byte(`not json`),
			nil, "none", nil, "none", nil, nil, now, now,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE id = $1")).WillReturnRows(rows)

		_, err := s.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestQuestionStore_FindIDs(t *testing.T) {
	first, second := uuid.New(), uuid.New()

	t.Run("no filter", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM questions ORDER BY created_at, id")).
			WithArgs().
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(first.String()).AddRow(second.String()))

		ids, err := s.FindIDs(context.Background(), store.QuestionFilter{}, 0)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first, second}, ids)
	})

	t.Run("filter and limit", func(t *testing.T) {
		s, mock := newMockStore(t)
		qType := domain.QuestionTypeJudge
		status := domain.FieldStatusNone
		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT id FROM questions WHERE type = $1 AND answer_status = $2 ORDER BY created_at, id LIMIT $3",
		)).
			WithArgs("judge", "none", 10).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(first.String()))

		ids, err := s.FindIDs(context.Background(), store.QuestionFilter{
			Type:         &qType,
			AnswerStatus: &status,
		}, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first}, ids)
	})

	t.Run("empty result is not nil", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT id FROM questions").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		ids, err := s.FindIDs(context.Background(), store.QuestionFilter{}, 5)
		require.NoError(t, err)
		assert.NotNil(t, ids)
		assert.Empty(t, ids)
	})
}

func TestQuestionStore_UpdateStatuses(t *testing.T) {
	id := uuid.New()
	pending := domain.FieldStatusAIPending

	t.Run("updates given fields", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta(
			"UPDATE questions SET answer_status = $1, explanation_status = $2, updated_at = $3 WHERE id = $4",
		)).
			WithArgs("ai_pending", "ai_pending", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.UpdateStatuses(context.Background(), id, store.StatusUpdate{Answer: &pending, Explanation: &pending})
		require.NoError(t, err)
	})

	t.Run("only if pending", func(t *testing.T) {
		s, mock := newMockStore(t)
		none := domain.FieldStatusNone
		mock.ExpectExec(regexp.QuoteMeta(
			"UPDATE questions SET answer_status = CASE WHEN answer_status = 'ai_pending' THEN $1 ELSE answer_status END, updated_at = $2 WHERE id = $3",
		)).
			WithArgs("none", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.UpdateStatuses(context.Background(), id, store.StatusUpdate{Answer: &none, OnlyIfPending: true})
		require.NoError(t, err)
	})

	t.Run("nothing to update", func(t *testing.T) {
		s, _ := newMockStore(t)
		require.NoError(t, s.UpdateStatuses(context.Background(), id, store.StatusUpdate{}))
	})

	t.Run("invalid status", func(t *testing.T) {
		s, _ := newMockStore(t)
		bogus := domain.FieldStatus("bogus")
		err := s.UpdateStatuses(context.Background(), id, store.StatusUpdate{Answer: &bogus})
		assert.ErrorIs(t, err, domain.ErrInvalidFieldStatus)
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("UPDATE questions SET answer_status").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.UpdateStatuses(context.Background(), id, store.StatusUpdate{Answer: &pending})
		assert.ErrorIs(t, err, store.ErrQuestionNotFound)
	})
}

func TestQuestionStore_SaveCompletion(t *testing.T) {
	id := uuid.New()
	lockQuery := regexp.QuoteMeta("SELECT answer_status, explanation_status FROM questions WHERE id = $1 FOR UPDATE")

	t.Run("saves both fields", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"answer_status", "explanation_status"}).
				AddRow("ai_pending", "ai_pending"))
		mock.ExpectExec(regexp.QuoteMeta(
			"UPDATE questions SET answer = $1, answer_status = $2, explanation = $3, explanation_status = $4, updated_at = $5 WHERE id = $6",
		)).
			WithArgs("B", "ai_generated", "4 is 2 + 2", "ai_generated", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		saved, err := s.SaveCompletion(context.Background(), id, store.Completion{
			Answer:      strPtr("B"),
			Explanation: strPtr("4 is 2 + 2"),
		})
		require.NoError(t, err)
		assert.Equal(t, store.SavedCompletion{AnswerSaved: true, ExplanationSaved: true}, saved)
	})

	t.Run("keeps confirmed answer", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"answer_status", "explanation_status"}).
				AddRow("confirmed", "ai_pending"))
		mock.ExpectExec(regexp.QuoteMeta(
			"UPDATE questions SET explanation = $1, explanation_status = $2, updated_at = $3 WHERE id = $4",
		)).
			WithArgs("because", "ai_generated", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		saved, err := s.SaveCompletion(context.Background(), id, store.Completion{
			Answer:      strPtr("A"),
			Explanation: strPtr("because"),
		})
		require.NoError(t, err)
		assert.False(t, saved.AnswerSaved)
		assert.True(t, saved.ExplanationSaved)
	})

	t.Run("everything confirmed writes nothing", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"answer_status", "explanation_status"}).
				AddRow("confirmed", "confirmed"))
		mock.ExpectCommit()

		saved, err := s.SaveCompletion(context.Background(), id, store.Completion{Answer: strPtr("A")})
		require.NoError(t, err)
		assert.Equal(t, store.SavedCompletion{}, saved)
	})

	t.Run("missing question rolls back", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(id).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := s.SaveCompletion(context.Background(), id, store.Completion{Answer: strPtr("A")})
		assert.ErrorIs(t, err, store.ErrQuestionNotFound)
	})

	t.Run("update failure rolls back", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"answer_status", "explanation_status"}).
				AddRow("none", "none"))
		mock.ExpectExec("UPDATE questions").WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := s.SaveCompletion(context.Background(), id, store.Completion{Answer: strPtr("A")})
		assert.Error(t, err)
	})
}
