package recap_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/edgard/recapbot/internal/ai"
	"github.com/edgard/recapbot/internal/recap"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (f *fakeGenerator) Generate(_ context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()
	if f.reply != nil {
		return f.reply(req.Prompt)
	}
	return "summary", nil
}

func (f *fakeGenerator) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeLines(n, size int) []string {
	lines := make([]string, n)
	for i := range lines {
		prefix := fmt.Sprintf("user%d: ", i)
		lines[i] = prefix + strings.Repeat("x", size-len(prefix))
	}
	return lines
}

func TestSummarize_SingleShot(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{}
	engine := recap.NewEngine(gen, nil, discardLogger())

	lines := []string{"alice: hi", "bob: hello", "carol: /recap"}
	out, err := engine.Summarize(context.Background(), recap.Request{Lines: lines})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if out != "summary" {
		t.Errorf("Summarize() = %q, want %q", out, "summary")
	}

	calls := gen.calls()
	if len(calls) != 1 {
		t.Fatalf("generation calls = %d, want 1", len(calls))
	}
	if !strings.Contains(calls[0], "alice: hi bob: hello") {
		t.Errorf("prompt does not contain the space-joined lines: %q", calls[0])
	}
	if strings.Contains(calls[0], "/recap") {
		t.Errorf("prompt contains the most recent line: %q", calls[0])
	}
}

func TestSummarize_AtThreshold(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{}
	engine := recap.NewEngine(gen, nil, discardLogger())

	// exactly MaxTokenLength characters in total stays on the single-shot path
	lines := makeLines(4, recap.MaxTokenLength/4)
	if _, err := engine.Summarize(context.Background(), recap.Request{Lines: lines}); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got := len(gen.calls()); got != 1 {
		t.Errorf("generation calls = %d, want 1", got)
	}
}

func TestSummarize_Chunked(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		lines     []string
		wantCalls int
	}{
		// 3 lines of 2000 plus 2 separators = 6004 characters, 3 chunks
		{name: "three chunks", lines: makeLines(3, 2000), wantCalls: 4},
		// 10 lines of 1000 plus 9 separators = 10018 characters, 4 chunks
		{name: "four chunks", lines: makeLines(10, 1000), wantCalls: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := &fakeGenerator{reply: func(prompt string) (string, error) {
				if strings.HasPrefix(prompt, "The partial answers") {
					return "combined", nil
				}
				return "PARTIAL", nil
			}}
			engine := recap.NewEngine(gen, nil, discardLogger())

			out, err := engine.Summarize(context.Background(), recap.Request{Lines: tt.lines})
			if err != nil {
				t.Fatalf("Summarize() error = %v", err)
			}
			if out != "combined" {
				t.Errorf("Summarize() = %q, want %q", out, "combined")
			}

			calls := gen.calls()
			if len(calls) != tt.wantCalls {
				t.Fatalf("generation calls = %d, want %d", len(calls), tt.wantCalls)
			}
			combine := calls[len(calls)-1]
			if strings.Count(combine, "PARTIAL") != tt.wantCalls-1 {
				t.Errorf("combine prompt should include every partial answer: %q", combine)
			}
			if !strings.Contains(combine, "only once") {
				t.Errorf("combine prompt should forbid duplicate topics: %q", combine)
			}
		})
	}
}

func TestSummarize_ChunksRunConcurrently(t *testing.T) {
	t.Parallel()

	const chunks = 3

	var (
		mu       sync.Mutex
		arrived  int
		finished int
		combined int
	)
	allArrived := make(chan struct{})

	gen := &fakeGenerator{reply: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "The partial answers") {
			mu.Lock()
			combined = finished
			mu.Unlock()
			return "combined", nil
		}

		mu.Lock()
		arrived++
		if arrived == chunks {
			close(allArrived)
		}
		mu.Unlock()

		// Every chunk call waits here until all of them are in flight.
		select {
		case <-allArrived:
		case <-time.After(5 * time.Second):
			return "", errors.New("chunk calls did not overlap")
		}

		mu.Lock()
		finished++
		mu.Unlock()
		return "PARTIAL", nil
	}}
	engine := recap.NewEngine(gen, nil, discardLogger())

	// 3 lines of 2000 plus 2 separators = 6004 characters, 3 chunks
	out, err := engine.Summarize(context.Background(), recap.Request{Lines: makeLines(3, 2000)})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if out != "combined" {
		t.Errorf("Summarize() = %q, want %q", out, "combined")
	}

	mu.Lock()
	defer mu.Unlock()
	if arrived != chunks {
		t.Errorf("chunk calls = %d, want %d", arrived, chunks)
	}
	if combined != chunks {
		t.Errorf("chunk calls finished before combine = %d, want %d", combined, chunks)
	}
}

func TestSummarize_Shortening(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("y", recap.MaxTokenLength+1)

	t.Run("shortened", func(t *testing.T) {
		t.Parallel()

		gen := &fakeGenerator{reply: func(prompt string) (string, error) {
			if strings.HasPrefix(prompt, "Shorten") {
				return "short", nil
			}
			return long, nil
		}}
		out, err := recap.NewEngine(gen, nil, discardLogger()).Summarize(context.Background(), recap.Request{Lines: []string{"a: b", "c: d"}})
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if out != "short" || len(gen.calls()) != 2 {
			t.Errorf("Summarize() = %q after %d calls, want shortened answer after 2", out, len(gen.calls()))
		}
	})

	t.Run("shortening failure is best effort", func(t *testing.T) {
		t.Parallel()

		gen := &fakeGenerator{reply: func(prompt string) (string, error) {
			if strings.HasPrefix(prompt, "Shorten") {
				return "", errors.New("backend down")
			}
			return long, nil
		}}
		out, err := recap.NewEngine(gen, nil, discardLogger()).Summarize(context.Background(), recap.Request{Lines: []string{"a: b", "c: d"}})
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if out != long {
			t.Errorf("Summarize() should return the unshortened answer")
		}
	})
}

func TestSummarize_Errors(t *testing.T) {
	t.Parallel()

	backendErr := errors.New("backend down")

	t.Run("single shot", func(t *testing.T) {
		t.Parallel()

		gen := &fakeGenerator{reply: func(string) (string, error) { return "", backendErr }}
		_, err := recap.NewEngine(gen, nil, discardLogger()).Summarize(context.Background(), recap.Request{Lines: []string{"a: b", "c: d"}})
		if !errors.Is(err, backendErr) {
			t.Errorf("Summarize() error = %v, want %v", err, backendErr)
		}
	})

	t.Run("chunk failure skips combine", func(t *testing.T) {
		t.Parallel()

		gen := &fakeGenerator{reply: func(prompt string) (string, error) {
			if strings.Contains(prompt, "part 2 of") {
				return "", backendErr
			}
			return "partial", nil
		}}
		_, err := recap.NewEngine(gen, nil, discardLogger()).Summarize(context.Background(), recap.Request{Lines: makeLines(3, 2000)})
		if !errors.Is(err, backendErr) {
			t.Errorf("Summarize() error = %v, want %v", err, backendErr)
		}
		for _, p := range gen.calls() {
			if strings.HasPrefix(p, "The partial answers") {
				t.Error("combine call made after a chunk failed")
			}
		}
	})
}

func TestSummarize_Modes(t *testing.T) {
	t.Parallel()

	primary := &fakeGenerator{}
	alt := &fakeGenerator{}
	engine := recap.NewEngine(primary, alt, discardLogger())

	_, err := engine.Summarize(context.Background(), recap.Request{
		Prompt: "what did bob say about lunch?",
		Lines:  []string{"bob: pizza", "alice: @bot what did bob say about lunch?"},
		Mode:   recap.ModeRaw,
		UseAlt: true,
	})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if len(primary.calls()) != 0 {
		t.Errorf("primary generator used for an alternate-model request")
	}
	calls := alt.calls()
	if len(calls) != 1 {
		t.Fatalf("alternate generator calls = %d, want 1", len(calls))
	}
	if !strings.HasPrefix(calls[0], "what did bob say about lunch?") {
		t.Errorf("raw mode should use the prompt as the task: %q", calls[0])
	}

	// without an alternate generator the primary is used
	fallback := recap.NewEngine(primary, nil, discardLogger())
	if _, err := fallback.Summarize(context.Background(), recap.Request{Lines: []string{"a: b"}, UseAlt: true}); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(primary.calls()) != 1 {
		t.Errorf("primary generator calls = %d, want 1", len(primary.calls()))
	}
}
