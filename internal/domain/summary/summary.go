// Package summary produces the word-truncated policy summaries shown on the
// dashboard.
package summary

import "strings"

// DefaultMaxWords is the summary length when callers pass a non-positive limit.
const DefaultMaxWords = 200

// Summary is the result of Summarize.
type Summary struct {
	Summary   string `json:"summary"`
	WordCount int    `json:"word_count"`
}

// Summarize keeps the first maxWords whitespace-separated words of text.
// Text that is already short enough is returned unchanged, including its
// original spacing; longer text is re-joined with single spaces.
func Summarize(text string, maxWords int) Summary {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return Summary{Summary: text, WordCount: len(words)}
	}
	return Summary{
		Summary:   strings.Join(words[:maxWords], " "),
		WordCount: maxWords,
	}
}
