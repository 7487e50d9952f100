package llm

import (
	"context"
)

// Client defines the interface for chat-completions providers
type Client interface {
	// Chat sends a chat request and returns the decoded response.
	// Failures are returned as *APIError.
	Chat(ctx context.Context, request *ChatRequest) (*ChatResponse, error)

	// Close cleans up any resources
	Close() error
}
