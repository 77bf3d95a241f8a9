// Package redact removes credentials and personal data from strings before
// they are logged or returned in error responses. Provider SDK errors and
// database driver errors can echo API keys, bearer tokens and connection
// strings, so every error that reaches a log line passes through here.
package redact

import "regexp"

// Placeholders substituted for redacted values.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules run in order; the more specific key formats come first so a generic
// rule never leaves half a key behind.
var rules = []rule{
	// user:password@ in connection URLs
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis|amqp)://[^@\s/]+@`), RedactedCredentialPlaceholder},

	// Provider API keys
	{regexp.MustCompile(`\bsk-ant-[A-Za-z0-9_\-]{8,}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`\bsk-(?:proj-)?[A-Za-z0-9_\-]{16,}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{30,}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`), RedactedKeyPlaceholder},

	// Tokens
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), RedactedTokenPlaceholder},
	{regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-.~+/]{8,}=*`), "Bearer " + RedactedTokenPlaceholder},

	// key=value style secrets, including query strings such as ?key=...
	{regexp.MustCompile(`(?i)\b(password|passwd|pwd)([=:]\s*['"]?)[^'"&\s]{3,}`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)\b(api[_-]?key|x-api-key|x-goog-api-key|key|token|secret)(['"]?\s*[:=]\s*['"]?)[A-Za-z0-9_\-.~+/]{8,}`), RedactedKeyPlaceholder},

	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), RedactedStackPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
