// Package openai provides an implementation of the generation.TextGenerator
// interface for the OpenAI chat completions API and any endpoint compatible
// with it (DeepSeek, Qwen, local gateways), selected with
// llm.openai_base_url.
//
// Each prompt is a single chat completion with the SDK's own retries
// disabled. HTTP 429 responses, which OpenAI also uses for exhausted quota,
// become generation.ErrRateLimited so the completion queue can pause.
package openai
