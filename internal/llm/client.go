// Package llm adapts the external language-model completion API. A single
// request per chat turn, no retries: provider errors surface directly to the
// caller.
package llm

import (
	"context"
	"errors"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrCompletionFailed covers every provider failure mode: transport errors,
// API errors and responses with no usable candidate.
var ErrCompletionFailed = errors.New("completion request failed")

// Message is one prior conversation turn, oldest first.
type Message struct {
	Role    string
	Content string
}

// Client produces a single completion for the new user text given the prior
// turns. Implementations carry their own system instruction and generation
// parameters.
type Client interface {
	Complete(ctx context.Context, history []Message, userText string) (string, error)
}
