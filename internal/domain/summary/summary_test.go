package summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_ShortTextUnchanged(t *testing.T) {
	text := "Policy  covers\nfire and theft."
	s := Summarize(text, 10)
	assert.Equal(t, text, s.Summary)
	assert.Equal(t, 5, s.WordCount)
}

func TestSummarize_Truncates(t *testing.T) {
	s := Summarize("one two\tthree\nfour five", 3)
	assert.Equal(t, "one two three", s.Summary)
	assert.Equal(t, 3, s.WordCount)
}

func TestSummarize_DefaultLimit(t *testing.T) {
	text := strings.Repeat("word ", DefaultMaxWords+50)
	s := Summarize(text, 0)
	assert.Equal(t, DefaultMaxWords, s.WordCount)
	assert.Len(t, strings.Fields(s.Summary), DefaultMaxWords)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize("", 5)
	assert.Equal(t, "", s.Summary)
	assert.Equal(t, 0, s.WordCount)
}
