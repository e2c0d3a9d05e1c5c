// Package llm talks to the generative-completion service.
package llm

import "context"

// Message is one chat message sent to the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the minimal completion interface the pipeline depends on.
type Client interface {
	// Complete sends the system prompt plus user prompt and returns the
	// generated text.
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}
