// Package recap turns a window of chat messages into a short summary. Small
// windows are summarized with one call; large ones are split into chunks that
// are summarized in parallel and then combined.
package recap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/recapbot/internal/ai"
	"github.com/edgard/recapbot/internal/text"
)

const (
	// MaxTokenLength is the input size up to which a single call is made, and
	// the length the final answer is shortened to when it is exceeded.
	MaxTokenLength = 4096
	// ChunkSize is the size of each piece of an oversized window.
	ChunkSize = 3000
)

// Mode selects how the request prompt is used.
type Mode int

const (
	// ModeStandard produces a topic recap; Prompt, if set, adds instructions.
	ModeStandard Mode = iota
	// ModeRaw uses Prompt verbatim as the task over the chat lines.
	ModeRaw
)

// Request is one summarization request.
type Request struct {
	Prompt string
	// Lines are "sender: text" entries in chronological order. The last one
	// is the triggering message.
	Lines  []string
	Mode   Mode
	UseAlt bool
}

// Engine runs summarization requests against a generator.
type Engine struct {
	primary ai.Generator
	alt     ai.Generator
	log     *slog.Logger
}

// NewEngine creates an engine. alt may be nil, in which case alternate-model
// requests use primary.
func NewEngine(primary, alt ai.Generator, log *slog.Logger) *Engine {
	return &Engine{
		primary: primary,
		alt:     alt,
		log:     log.With("component", "recap"),
	}
}

func (e *Engine) generator(useAlt bool) ai.Generator {
	if useAlt && e.alt != nil {
		return e.alt
	}
	return e.primary
}

// Summarize produces the answer for req. Generation failures are returned
// unchanged except for the final shortening call, which is best effort.
func (e *Engine) Summarize(ctx context.Context, req Request) (string, error) {
	gen := e.generator(req.UseAlt)
	task := taskFor(req)

	estimate := 0
	for _, line := range req.Lines {
		estimate += text.Len(line)
	}

	var (
		out string
		err error
	)
	if estimate <= MaxTokenLength {
		out, err = e.singleShot(ctx, gen, task, req.Lines)
	} else {
		out, err = e.chunked(ctx, gen, task, req.Lines)
	}
	if err != nil {
		return "", err
	}

	if text.Len(out) > MaxTokenLength {
		e.log.DebugContext(ctx, "Answer exceeds maximum length, shortening", "length", text.Len(out))
		shortened, err := gen.Generate(ctx, ai.Request{Prompt: fmt.Sprintf(shortenTemplate, MaxTokenLength, out)})
		if err != nil {
			e.log.WarnContext(ctx, "Failed to shorten answer, returning it unshortened", "error", err)
			return out, nil
		}
		return shortened, nil
	}
	return out, nil
}

func taskFor(req Request) string {
	switch {
	case req.Mode == ModeRaw:
		return req.Prompt
	case req.Prompt != "":
		return recapTask + "\n" + req.Prompt
	default:
		return recapTask
	}
}

func (e *Engine) singleShot(ctx context.Context, gen ai.Generator, task string, lines []string) (string, error) {
	if len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}
	prompt := fmt.Sprintf(singleShotTemplate, task, strings.Join(lines, " "))

	e.log.DebugContext(ctx, "Summarizing in a single call", "lines", len(lines))
	out, err := gen.Generate(ctx, ai.Request{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return out, nil
}

func (e *Engine) chunked(ctx context.Context, gen ai.Generator, task string, lines []string) (string, error) {
	chunks := text.Split(strings.Join(lines, "; "), ChunkSize)
	partials := make([]string, len(chunks))

	e.log.DebugContext(ctx, "Summarizing in chunks", "lines", len(lines), "chunks", len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			prompt := fmt.Sprintf(chunkTemplate, i+1, len(chunks), task, chunk)
			out, err := gen.Generate(gctx, ai.Request{Prompt: prompt})
			if err != nil {
				return fmt.Errorf("summarize chunk %d of %d: %w", i+1, len(chunks), err)
			}
			partials[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(combineTemplate, task, MaxTokenLength, strings.Join(partials, "\n\n"))
	out, err := gen.Generate(ctx, ai.Request{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("combine summaries: %w", err)
	}
	return out, nil
}
