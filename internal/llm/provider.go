// Package llm is the narrow boundary to the hosted text-generation API:
// a prompt goes in, text comes out, and every failure is an explicit error.
package llm

import "context"

// Provider is the core abstraction for LLM interaction.
type Provider interface {
	// Complete sends the request and returns the generated text.
	Complete(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the optional system prompt.
	System string

	// Messages is the conversation. The assistant builds single-turn
	// prompts, so this usually holds one user message.
	Messages []Message

	// MaxTokens bounds the length of the completion.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds a single-turn request.
func UserPrompt(prompt string, maxTokens int, temperature float64) Request {
	return Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// Response holds the LLM's output.
type Response struct {
	// Text is the completion, trimmed of surrounding whitespace.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
