package ai

import (
	"context"
	"errors"
)

// Message roles understood by chat completion providers.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ErrEmptyCompletion indicates the provider answered without any text.
var ErrEmptyCompletion = errors.New("ai: empty completion")

// Message is a single role tagged chat message.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest describes one chat completion call.
type CompletionRequest struct {
	Messages    []Message
	Model       string
	Temperature float32
	MaxTokens   int
}

// Client produces a single text completion for a list of messages.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
