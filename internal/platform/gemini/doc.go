// Package gemini provides an implementation of the generation.TextGenerator
// interface that uses Google's Gemini API.
//
// This package is an infrastructure adapter connecting the application's
// generation logic to Google's external Gemini service through the
// google.golang.org/genai client. It translates a generation.Prompt into a
// GenerateContent call and translates failures back into the sentinel errors
// of the generation package:
//
//   - HTTP 429 or RESOURCE_EXHAUSTED becomes generation.ErrRateLimited
//   - a safety block becomes generation.ErrContentBlocked
//   - an empty candidate becomes generation.ErrInvalidResponse
//   - other client errors (bad request, unknown model) become generation.ErrRejected
//   - anything else becomes generation.ErrTransientFailure
//
// The adapter makes exactly one API call per prompt. Retrying is left to the
// completion queue, which pauses globally on a rate limit.
package gemini
