package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-queue/internal/domain"
	"github.com/phrazzld/scry-queue/internal/platform/logger"
	"github.com/phrazzld/scry-queue/internal/store"
)

// PostgresQuestionStore implements the store.QuestionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresQuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuestionStore creates a new PostgreSQL implementation of the QuestionStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresQuestionStore(db store.DBTX, logger *slog.Logger) *PostgresQuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

// Ensure PostgresQuestionStore implements store.QuestionStore interface
var _ store.QuestionStore = (*PostgresQuestionStore)(nil)

const questionColumns = `id, category_id, type, difficulty, content, options,
	answer, answer_status, explanation, explanation_status, tags, source,
	created_at, updated_at`

// Create implements store.QuestionStore.Create
func (s *PostgresQuestionStore) Create(ctx context.Context, q *domain.Question) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := q.Validate(); err != nil {
		log.Warn("question validation failed during create",
			slog.String("error", err.Error()),
			slog.String("question_id", q.ID.String()))
		return err
	}

	options, err := marshalNullable(q.Options, len(q.Options) == 0)
	if err != nil {
		return fmt.Errorf("%w: options: %v", store.ErrInvalidEntity, err)
	}
	tags, err := marshalNullable(q.Tags, len(q.Tags) == 0)
	if err != nil {
		return fmt.Errorf("%w: tags: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO questions (` + questionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.db.ExecContext(ctx, query,
		q.ID,
		nullUUID(q.CategoryID),
		string(q.Type),
		string(q.Difficulty),
		q.Content,
		options,
		nullString(q.Answer),
		string(q.AnswerStatus),
		nullString(q.Explanation),
		string(q.ExplanationStatus),
		tags,
		nullString(q.Source),
		q.CreatedAt,
		q.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during question creation",
				slog.String("question_id", q.ID.String()))
			return fmt.Errorf("%w: category not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create question",
			slog.String("error", err.Error()),
			slog.String("question_id", q.ID.String()))
		return MapError(err)
	}

	log.Debug("question created", slog.String("question_id", q.ID.String()))
	return nil
}

// GetByID implements store.QuestionStore.GetByID
// Returns store.ErrQuestionNotFound if the question does not exist.
func (s *PostgresQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

	var (
		q                      domain.Question
		categoryID             uuid.NullUUID
		qType, difficulty      string
		answerStatus, explStat string
		options, tags          []byte
		answer, expl, source   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&q.ID,
		&categoryID,
		&qType,
		&difficulty,
		&q.Content,
		&options,
		&answer,
		&answerStatus,
		&expl,
		&explStat,
		&tags,
		&source,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("question not found", slog.String("question_id", id.String()))
			return nil, store.ErrQuestionNotFound
		}
		log.Error("failed to get question by ID",
			slog.String("error", err.Error()),
			slog.String("question_id", id.String()))
		return nil, MapError(err)
	}

	if categoryID.Valid {
		q.CategoryID = &categoryID.UUID
	}
	q.Type = domain.QuestionType(qType)
	q.Difficulty = domain.Difficulty(difficulty)
	q.Answer = answer.String
	q.AnswerStatus = domain.FieldStatus(answerStatus)
	q.Explanation = expl.String
	q.ExplanationStatus = domain.FieldStatus(explStat)
	q.Source = source.String

	if len(options) > 0 {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("%w: malformed options for question %s: %v", store.ErrInvalidEntity, id, err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &q.Tags); err != nil {
			return nil, fmt.Errorf("%w: malformed tags for question %s: %v", store.ErrInvalidEntity, id, err)
		}
	}

	return &q, nil
}

// FindIDs implements store.QuestionStore.FindIDs
func (s *PostgresQuestionStore) FindIDs(ctx context.Context, filter store.QuestionFilter, limit int) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		where []string
		args  []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.CategoryID != nil {
		add("category_id", *filter.CategoryID)
	}
	if filter.Type != nil {
		add("type", string(*filter.Type))
	}
	if filter.AnswerStatus != nil {
		add("answer_status", string(*filter.AnswerStatus))
	}
	if filter.ExplanationStatus != nil {
		add("explanation_status", string(*filter.ExplanationStatus))
	}

	var query strings.Builder
	query.WriteString("SELECT id FROM questions")
	if len(where) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(where, " AND "))
	}
	query.WriteString(" ORDER BY created_at, id")
	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		log.Error("failed to find questions", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("questions found", slog.Int("count", len(ids)), slog.Int("limit", limit))
	return ids, nil
}

// UpdateStatuses implements store.QuestionStore.UpdateStatuses
// Returns store.ErrQuestionNotFound if the question does not exist.
func (s *PostgresQuestionStore) UpdateStatuses(ctx context.Context, id uuid.UUID, update store.StatusUpdate) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	set := newSetClause()
	assign := set.add
	if update.OnlyIfPending {
		assign = set.addIfPending
	}
	if update.Answer != nil {
		if !update.Answer.Valid() {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidFieldStatus)
		}
		assign("answer_status", string(*update.Answer))
	}
	if update.Explanation != nil {
		if !update.Explanation.Valid() {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidFieldStatus)
		}
		assign("explanation_status", string(*update.Explanation))
	}
	if set.empty() {
		return nil
	}

	result, err := s.db.ExecContext(ctx, set.update(id), set.args...)
	if err != nil {
		log.Error("failed to update question statuses",
			slog.String("error", err.Error()),
			slog.String("question_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "question"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrQuestionNotFound
		}
		return err
	}
	return nil
}

// SaveCompletion implements store.QuestionStore.SaveCompletion
// The row is locked while its statuses are checked, so a field confirmed by
// a human is never overwritten by a generation that started before it.
func (s *PostgresQuestionStore) SaveCompletion(
	ctx context.Context,
	id uuid.UUID,
	completion store.Completion,
) (store.SavedCompletion, error) {
	var saved store.SavedCompletion

	db, ok := s.db.(*sql.DB)
	if !ok {
		// Already inside a caller-managed transaction.
		return s.saveCompletion(ctx, id, completion)
	}

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		saved, err = s.withTx(tx).saveCompletion(ctx, id, completion)
		return err
	})
	return saved, err
}

func (s *PostgresQuestionStore) saveCompletion(
	ctx context.Context,
	id uuid.UUID,
	completion store.Completion,
) (store.SavedCompletion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	var saved store.SavedCompletion

	var answerStatus, explStatus string
	err := s.db.QueryRowContext(ctx,
		`SELECT answer_status, explanation_status FROM questions WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&answerStatus, &explStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return saved, store.ErrQuestionNotFound
		}
		return saved, MapError(err)
	}

	set := newSetClause()
	if completion.Answer != nil && domain.FieldStatus(answerStatus) != domain.FieldStatusConfirmed {
		set.add("answer", *completion.Answer)
		set.add("answer_status", string(domain.FieldStatusAIGenerated))
		saved.AnswerSaved = true
	}
	if completion.Explanation != nil && domain.FieldStatus(explStatus) != domain.FieldStatusConfirmed {
		set.add("explanation", *completion.Explanation)
		set.add("explanation_status", string(domain.FieldStatusAIGenerated))
		saved.ExplanationSaved = true
	}
	if set.empty() {
		log.Info("completion discarded, fields already confirmed",
			slog.String("question_id", id.String()))
		return saved, nil
	}

	if _, err := s.db.ExecContext(ctx, set.update(id), set.args...); err != nil {
		log.Error("failed to save completion",
			slog.String("error", err.Error()),
			slog.String("question_id", id.String()))
		return store.SavedCompletion{}, store.NewStoreError("question", "save_completion", "update failed", MapError(err))
	}

	log.Debug("completion saved",
		slog.String("question_id", id.String()),
		slog.Bool("answer_saved", saved.AnswerSaved),
		slog.Bool("explanation_saved", saved.ExplanationSaved))
	return saved, nil
}

// WithTx implements store.QuestionStore.WithTx
func (s *PostgresQuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	return s.withTx(tx)
}

func (s *PostgresQuestionStore) withTx(tx *sql.Tx) *PostgresQuestionStore {
	return &PostgresQuestionStore{db: tx, logger: s.logger}
}

// setClause accumulates "column = $n" assignments for an UPDATE.
type setClause struct {
	columns []string
	args    []any
}

func newSetClause() *setClause {
	return &setClause{}
}

func (c *setClause) add(column string, value any) {
	c.args = append(c.args, value)
	c.columns = append(c.columns, fmt.Sprintf("%s = $%d", column, len(c.args)))
}

// addIfPending assigns value only when the column currently holds ai_pending.
func (c *setClause) addIfPending(column string, value any) {
	c.args = append(c.args, value)
	c.columns = append(c.columns, fmt.Sprintf("%s = CASE WHEN %s = '%s' THEN $%d ELSE %s END",
		column, column, domain.FieldStatusAIPending, len(c.args), column))
}

func (c *setClause) empty() bool {
	return len(c.columns) == 0
}

// update renders the statement, appending updated_at and the id argument.
func (c *setClause) update(id uuid.UUID) string {
	c.add("updated_at", time.Now().UTC())
	c.args = append(c.args, id)
	return fmt.Sprintf("UPDATE questions SET %s WHERE id = $%d", strings.Join(c.columns, ", "), len(c.args))
}

func marshalNullable(v any, empty bool) (any, error) {
	if empty {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
