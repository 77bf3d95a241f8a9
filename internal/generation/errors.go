package generation

import (
	"errors"
	"net/http"
	"strings"
)

// Common errors returned by the generation package and its providers
var (
	// ErrGenerationFailed is returned when generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate question content")

	// ErrInvalidResponse is returned when the LLM response is empty or malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during generation")

	// ErrRateLimited is returned when the provider rejects a call because a
	// rate limit or quota was exhausted
	ErrRateLimited = errors.New("language model rate limit reached")

	// ErrRejected is returned when the provider refuses the request itself,
	// for example an unknown model or a malformed prompt
	ErrRejected = errors.New("request rejected by language model provider")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// IsPermanent reports whether retrying err with the same prompt is pointless.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrContentBlocked) ||
		errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, ErrRejected)
}

// StatusError returns the sentinel matching an HTTP status code returned by
// a provider API.
func StatusError(code int) error {
	switch code {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusUnprocessableEntity:
		return ErrRejected
	default:
		return ErrTransientFailure
	}
}

var quotaMarkers = []string{
	"quota",
	"resource has been exhausted",
	"resource_exhausted",
	"rate limit",
	"rate_limit",
}

// IsQuotaMessage reports whether a provider error message describes an
// exhausted quota or rate limit, whatever status code came with it.
func IsQuotaMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
