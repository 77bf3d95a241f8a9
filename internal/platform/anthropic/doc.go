// Package anthropic provides an implementation of the
// generation.TextGenerator interface for Anthropic's Messages API.
//
// Like the other provider adapters it sends one request per prompt with the
// SDK's retries disabled and maps HTTP 429 to generation.ErrRateLimited.
// A refusal stop reason is reported as generation.ErrContentBlocked.
package anthropic
