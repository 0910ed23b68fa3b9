// Package llm wraps the OpenAI-compatible chat completion APIs used by
// retrieval, extraction, and composition. One client instance talks to one
// endpoint/model pair; the retrieval planner points its client at the
// Perplexity base URL while extraction and composition use OpenAI proper.
package llm

import (
	"context"
	"encoding/json"
)

// Client is the chat surface the pipeline depends on.
type Client interface {
	// Chat sends a plain completion request and returns the raw text.
	Chat(ctx context.Context, system, user string) (string, error)

	// ChatJSON requests a JSON-object response.
	ChatJSON(ctx context.Context, system, user string, maxTokens int) (string, error)

	// ChatJSONSchema requests a response constrained by a strict JSON schema.
	ChatJSONSchema(ctx context.Context, name string, schema json.RawMessage, system, user string, maxTokens int) (string, error)
}
