// Package text holds the pure text helpers used by the summarization and
// mention workflows: chunking, output sanitizing and mention stripping.
package text

// Split slices s into consecutive, non-overlapping chunks of at most
// maxChunkSize characters. Lengths are measured in runes so multi-byte
// characters are never cut. The last chunk may be shorter than maxChunkSize.
// An empty input or a non-positive size yields an empty slice.
func Split(s string, maxChunkSize int) []string {
	if s == "" || maxChunkSize <= 0 {
		return []string{}
	}

	runes := []rune(s)
	chunks := make([]string, 0, (len(runes)+maxChunkSize-1)/maxChunkSize)
	for start := 0; start < len(runes); start += maxChunkSize {
		end := min(start+maxChunkSize, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// Len returns the length of s in characters.
func Len(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// Truncate shortens s to at most maxLen characters, marking the cut with "...".
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
