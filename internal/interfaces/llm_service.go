package interfaces

import (
	"context"
)

// Message represents a single chat message in a conversation
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// LLMService abstracts a language-model completion provider. Implementations
// must tolerate wrapper text around JSON payloads in completions - callers are
// responsible for extraction and validation.
type LLMService interface {
	// Chat generates a completion for the conversation history
	Chat(ctx context.Context, messages []Message) (string, error)

	// Name returns the provider name for logging and records
	Name() string

	// HealthCheck verifies the provider is reachable
	HealthCheck(ctx context.Context) error

	// Close releases provider resources
	Close() error
}
