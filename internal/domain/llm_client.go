package domain

import "context"

// Message is one turn of a chat-completion conversation.
type Message struct {
	Role    string
	Content string
}

// LLMResponse carries the LLM output text.
type LLMResponse struct {
	Text string
	Done bool
}

// LLMClient defines the capability to send chat messages to an LLM
// service and receive a single textual completion.
type LLMClient interface {
	Chat(ctx context.Context, messages []Message, maxTokens int) (*LLMResponse, error)
	Version() string
}
