// Package llm defines the language-model capability used by the agent and its gollm-backed client.
package llm

import (
	"context"
)

// Message roles understood by every Completer.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a conversation sent to a model.
type Message struct {
	Role    string
	Content string
}

// Choice is one candidate completion.
type Choice struct {
	Content string
}

// Response holds the candidate completions returned for a request.
type Response struct {
	Choices []Choice
}

// FirstChoice returns the first candidate and whether one exists.
func (response Response) FirstChoice() (Choice, bool) {
	if len(response.Choices) == 0 {
		return Choice{}, false
	}
	return response.Choices[0], true
}

// Completer is a blocking request/response language-model capability.
type Completer interface {
	Complete(ctx context.Context, messages []Message, modelID string) (Response, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, messages []Message, modelID string) (Response, error)

// Complete calls completerFunc.
func (completerFunc CompleterFunc) Complete(ctx context.Context, messages []Message, modelID string) (Response, error) {
	return completerFunc(ctx, messages, modelID)
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}
