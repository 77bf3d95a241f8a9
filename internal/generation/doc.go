// Package generation defines how questions are turned into LLM prompts and
// how raw model output becomes stored answers and explanations.
//
// A TextGenerator is the narrow port implemented by each provider adapter
// (Gemini, OpenAI, Anthropic). PromptGenerator wraps one and implements
// Generator, the interface the completion task depends on. Providers report
// failures with the sentinel errors in errors.go so callers can tell a rate
// limit from a blocked prompt without knowing which SDK produced it.
package generation
