// Package llm provides an OpenAI-compatible chat completion client used to
// turn transcripts into insight prose.
//
// Any endpoint that speaks the /chat/completions schema works: OpenAI itself,
// OpenRouter (set referer and title for its attribution headers), or a local
// gateway.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, receive free-form text.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s, up to 4 attempts by
// default). A Retry-After header overrides the computed delay. Context
// cancellation aborts retries immediately.
package llm
