// Package postgres implements store.QuestionStore on PostgreSQL through
// database/sql and the pgx driver, maps pgx errors onto store errors, and
// embeds the goose migrations that create the schema.
package postgres
