package text_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/edgard/recapbot/internal/text"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		size     int
		expected []string
	}{
		{name: "empty input", input: "", size: 10, expected: []string{}},
		{name: "non-positive size", input: "abc", size: 0, expected: []string{}},
		{name: "shorter than size", input: "abc", size: 10, expected: []string{"abc"}},
		{name: "exact multiple", input: "abcdef", size: 3, expected: []string{"abc", "def"}},
		{name: "short last chunk", input: "abcdefg", size: 3, expected: []string{"abc", "def", "g"}},
		{name: "multi-byte runes", input: "ááéé", size: 2, expected: []string{"áá", "éé"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := text.Split(tt.input, tt.size)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Split() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplit_Properties(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("lorem ipsum dolor sit amet; ", 400)
	for _, size := range []int{1, 7, 100, 3000, 20000} {
		chunks := text.Split(input, size)

		if got := strings.Join(chunks, ""); got != input {
			t.Fatalf("size %d: concatenated chunks differ from input", size)
		}

		want := (text.Len(input) + size - 1) / size
		if len(chunks) != want {
			t.Errorf("size %d: got %d chunks, want %d", size, len(chunks), want)
		}

		for i, c := range chunks {
			if text.Len(c) > size {
				t.Errorf("size %d: chunk %d has %d characters", size, i, text.Len(c))
			}
			if i < len(chunks)-1 && text.Len(c) != size {
				t.Errorf("size %d: non-final chunk %d has %d characters", size, i, text.Len(c))
			}
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := text.Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate() = %q, want %q", got, "hello")
	}
	if got := text.Truncate("hello world", 8); got != "hello..." {
		t.Errorf("Truncate() = %q, want %q", got, "hello...")
	}
	if got := text.Truncate("hello world", 2); got != "..." {
		t.Errorf("Truncate() = %q, want %q", got, "...")
	}
}
