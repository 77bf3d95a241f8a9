package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scry-queue/internal/platform/postgres"
	"github.com/phrazzld/scry-queue/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "questions",
		ColumnName:     "content",
		ConstraintName: "questions_type_check",
	}
}

func TestMapError(t *testing.T) {
	plain := errors.New("connection refused")

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique violation", newPgError("23505"), store.ErrDuplicate},
		{"foreign key violation", newPgError("23503"), store.ErrInvalidEntity},
		{"check violation", newPgError("23514"), store.ErrInvalidEntity},
		{"not null violation", newPgError("23502"), store.ErrInvalidEntity},
		{"wrapped pg error", fmt.Errorf("exec: %w", newPgError("23505")), store.ErrDuplicate},
		{"other pg error", newPgError("40001"), nil},
		{"plain error", plain, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := postgres.MapError(tt.err)
			if tt.err == nil {
				assert.NoError(t, mapped)
				return
			}
			if tt.wantErr == nil {
				assert.Equal(t, tt.err, mapped, "unmapped errors pass through unchanged")
				return
			}
			assert.ErrorIs(t, mapped, tt.wantErr)
			assert.ErrorIs(t, mapped, tt.err, "original error stays in the chain")
		})
	}
}

func TestConstraintPredicates(t *testing.T) {
	assert.True(t, postgres.IsUniqueViolation(newPgError("23505")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503")))
	assert.True(t, postgres.IsForeignKeyViolation(newPgError("23503")))
	assert.True(t, postgres.IsCheckConstraintViolation(fmt.Errorf("wrapped: %w", newPgError("23514"))))
	assert.False(t, postgres.IsCheckConstraintViolation(errors.New("23514")))
}

func TestCheckRowsAffected(t *testing.T) {
	assert.NoError(t, postgres.CheckRowsAffected(sqlmock.NewResult(0, 1), "question"))
	assert.ErrorIs(t, postgres.CheckRowsAffected(sqlmock.NewResult(0, 0), "question"), store.ErrNotFound)
	assert.Error(t, postgres.CheckRowsAffected(sqlmock.NewErrorResult(errors.New("driver")), "question"))
	assert.Error(t, postgres.CheckRowsAffected(nil, "question"))
}
