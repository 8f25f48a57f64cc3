package ai

import (
	"context"
	"errors"
)

// ErrGeneration matches every provider failure surfaced by SuggestionService
var ErrGeneration = errors.New("generation failed")

// GenerationError carries the provider failure unchanged so its message
// can be reported to the caller.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return e.Err.Error() }

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// Provider is a generative text backend. One call produces one raw text
// output for one prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MessageInput is the only part of a conversation message the generator
// looks at.
type MessageInput struct {
	Text string `json:"text"`
}

// SuggestionRequest is the body of POST /api/ai/reply-suggestions
type SuggestionRequest struct {
	Messages []MessageInput `json:"messages"`
}

// SuggestionResponse is the success body of POST /api/ai/reply-suggestions
type SuggestionResponse struct {
	Success     bool     `json:"success"`
	Suggestions []string `json:"suggestions"`
}
