package llm

import (
	"context"
)

// Provider is the core abstraction for LLM interaction.
// Any backend that turns a prompt plus sampling parameters into text (or
// fails) satisfies it; model identity, endpoint and auth stay inside the
// implementation.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its raw text output.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. For single-turn completions
	// (the only kind QuizBot issues), this contains one user message.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
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

// Response holds the LLM's output.
type Response struct {
	// Text is the raw generated output. It may be empty; callers decide
	// whether an empty completion is worth retrying.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	StopReason StopReason
}

// StopReason is a vendor finish reason normalized across providers.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
	// StopFiltered means the vendor withheld output on safety or policy
	// grounds.
	StopFiltered StopReason = "filtered"
)

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
