// Package ai implements the generative backends used by the bot: Google
// Gemini as the primary model, an optional OpenAI-compatible alternate
// model, and decorators that add circuit breaking and prompt reframing.
package ai

import (
	"context"
	"errors"
)

// ErrNoAnswer is returned when the backend responded but produced no usable
// text, for example because the answer was blocked or empty.
var ErrNoAnswer = errors.New("no answer")

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one entry of conversation history.
type Turn struct {
	Role Role
	Text string
}

// Image is inline image data sent along with a prompt.
type Image struct {
	Data     []byte
	MimeType string
}

// Request is a single generation request.
type Request struct {
	Prompt  string
	History []Turn
	Image   *Image
}

// Generator produces text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
