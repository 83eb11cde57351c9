// Package llm provides a provider-neutral abstraction over text generation
// backends.
//
// The package defines the Generator interface plus the shared Options and
// Error types. Provider subpackages (ollama, openai, anthropic) implement
// Generator against their vendor SDKs and translate vendor errors into the
// llm.Error taxonomy, so callers can branch on error category (rate limit,
// timeout, retryable) without importing any SDK.
//
// Provider selection is handled by Registry: it resolves the configured
// provider into a ClientKey holding everything a client constructor needs
// (API key, host, model). Client construction itself happens in the caller,
// which keeps this package free of SDK imports.
package llm
