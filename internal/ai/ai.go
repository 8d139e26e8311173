// Package ai defines the chat-completion contract the tutor depends on and
// its Gemini implementation.
package ai

import "context"

// Message is one role-tagged chat message. Roles follow the Gemini
// convention: "user" and "model" ("assistant" is accepted and mapped).
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to a completion call.
type CompletionRequest struct {
	Messages          []Message `json:"messages"`
	SystemInstruction string    `json:"system_instruction,omitempty"`
	Model             string    `json:"model,omitempty"`
	MaxTokens         int       `json:"max_tokens,omitempty"`
	Temperature       float64   `json:"temperature,omitempty"`
	TopP              float64   `json:"top_p,omitempty"`
	TopK              int       `json:"top_k,omitempty"`
}

// CompletionResponse is the output of a completion call.
type CompletionResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// ModelInfo describes an available model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxTokens   int    `json:"max_tokens"`
	Description string `json:"description"`
}

// Provider is the completion service contract. Failures are returned as
// errors and surfaced to the user; the portal never retries automatically.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	Models() []ModelInfo
	HealthCheck(ctx context.Context) error
}
