package text

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	unicodeReplacer = strings.NewReplacer(
		"\u2060", "", "\u180E", "",
		"\u2028", "\n", "\u2029", "\n\n",
		"\u200B", " ", "\u200C", " ",
		"\u200D", "", "\uFEFF", "",
		"\u00AD", "", "\u205F", " ",
		"\u202A", "", "\u202B", "",
		"\u202C", "", "\u202D", "", "\u202E", "",
	)

	// Matches chat-line prefixes a model sometimes echoes back,
	// e.g. "[2025-03-06 22:30:11] alice: ".
	linePrefixRegex       = regexp.MustCompile(`(?m)^(?:\[\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}[^\]]*\] [^:\n]{1,64}: )+`)
	controlCharsRegex     = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	multipleNewlinesRegex = regexp.MustCompile(`\n{3,}`)
)

// Sanitize cleans generated text before it is sent to the chat. It removes
// echoed chat-line prefixes, normalizes line endings and invisible unicode,
// drops control characters and collapses runs of blank lines.
func Sanitize(input string) string {
	s := linePrefixRegex.ReplaceAllString(input, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = unicodeReplacer.Replace(s)
	s = controlCharsRegex.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRightFunc(lines[i], unicode.IsSpace)
	}
	s = strings.Join(lines, "\n")
	s = multipleNewlinesRegex.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// StripMention removes every "@username" occurrence (case-insensitive) from s
// and collapses the whitespace left behind.
func StripMention(s, username string) string {
	if username == "" {
		return strings.TrimSpace(s)
	}
	re := regexp.MustCompile(`(?i)@` + regexp.QuoteMeta(username) + `\b`)
	return strings.Join(strings.Fields(re.ReplaceAllString(s, " ")), " ")
}

// ContainsWord reports whether s contains word as a standalone token,
// ignoring case and surrounding punctuation.
func ContainsWord(s, word string) bool {
	if word == "" {
		return false
	}
	for _, w := range strings.Fields(s) {
		if strings.EqualFold(strings.TrimFunc(w, unicode.IsPunct), word) {
			return true
		}
	}
	return false
}
