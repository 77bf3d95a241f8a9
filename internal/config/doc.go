// Package config handles configuration loading, parsing, and validation
// from a config file and QCOMP_-prefixed environment variables. It provides
// type-safe access to the server, database, LLM and queue settings while
// keeping configuration details separate from business logic.
package config
