package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	fnErr := errors.New("function failed")

	tests := []struct {
		name    string
		expect  func(mock sqlmock.Sqlmock)
		fn      TxFn
		wantErr error
	}{
		{
			name:   "commit on success",
			expect: func(mock sqlmock.Sqlmock) { mock.ExpectBegin(); mock.ExpectCommit() },
			fn:     func(context.Context, *sql.Tx) error { return nil },
		},
		{
			name:    "rollback on function error",
			expect:  func(mock sqlmock.Sqlmock) { mock.ExpectBegin(); mock.ExpectRollback() },
			fn:      func(context.Context, *sql.Tx) error { return fnErr },
			wantErr: fnErr,
		},
		{
			name:    "begin failure",
			expect:  func(mock sqlmock.Sqlmock) { mock.ExpectBegin().WillReturnError(errors.New("no connection")) },
			fn:      func(context.Context, *sql.Tx) error { return nil },
			wantErr: ErrTransactionFailed,
		},
		{
			name: "commit failure",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
			},
			fn:      func(context.Context, *sql.Tx) error { return nil },
			wantErr: ErrTransactionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.expect(mock)

			err = RunInTransaction(context.Background(), db, tt.fn)

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransaction_PanicRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreError("question", "save_completion", "update failed", cause)

	assert.Equal(t, "question save_completion: update failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsNotFoundError(ErrQuestionNotFound))
	assert.False(t, IsNotFoundError(cause))
}
