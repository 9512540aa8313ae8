// Package highlight locates literal phrase occurrences inside a text preview
// and splits the text into plain and highlighted segments for rendering.
//
// Matching is case-insensitive under Unicode simple folding and purely
// literal: phrase characters never carry pattern meaning.  When candidate
// occurrences overlap, the longest phrase wins; among phrases of equal length
// the one listed first wins.  Concatenating the Content of the returned
// segments always reproduces the input text exactly.
//
// Annotate is a pure function and is safe for concurrent use.  Its result
// depends only on (text, phrases), so callers may memoize it under CacheKey.
package highlight

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// Segment is one contiguous run of the annotated text.  Start and End are
// character (rune) offsets into the original text, End exclusive.
type Segment struct {
	Content     string `json:"content"`
	Highlighted bool   `json:"highlighted"`
	PhraseIndex *int   `json:"phrase_index,omitempty"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
}

// candidate is a usable phrase together with its position in the caller's list.
type candidate struct {
	index int
	runes []rune
}

// span is a claimed interval [start, end) owned by a phrase.
type span struct {
	start, end int
	phrase     int
}

// Annotate splits text into segments, highlighting every accepted occurrence
// of the given phrases.  Empty phrases are skipped.  Text that is not valid
// UTF-8 is rejected with ErrCodeInvalidArgument.
func Annotate(text string, phrases []string) ([]Segment, error) {
	if !utf8.ValidString(text) {
		return nil, errors.InvalidArgument("text must be valid UTF-8")
	}
	if text == "" {
		return []Segment{}, nil
	}

	runes := []rune(text)
	offsets := byteOffsets(text, len(runes))

	cands := candidates(phrases)
	if len(cands) == 0 {
		return []Segment{{Content: text, Start: 0, End: len(runes)}}, nil
	}

	owner := make([]int, len(runes))
	for i := range owner {
		owner[i] = -1
	}

	var spans []span
	for _, c := range cands {
		n := len(c.runes)
		for i := 0; i+n <= len(runes); {
			if !matchAt(runes, i, c.runes) || claimed(owner, i, i+n) {
				i++
				continue
			}
			id := len(spans)
			spans = append(spans, span{start: i, end: i + n, phrase: c.index})
			for k := i; k < i+n; k++ {
				owner[k] = id
			}
			i += n
		}
	}

	return buildSegments(text, offsets, owner, spans), nil
}

// AnnotateOptional is Annotate for decoded input where the text or individual
// phrases may be absent.  A nil text is a caller error; nil phrases are
// skipped while keeping the original indices of the remaining ones.
func AnnotateOptional(text *string, phrases []*string) ([]Segment, error) {
	if text == nil {
		return nil, errors.InvalidArgument("text is required")
	}
	flat := make([]string, len(phrases))
	for i, p := range phrases {
		if p != nil {
			flat[i] = *p
		}
	}
	return Annotate(*text, flat)
}

// Reconstruct concatenates segment contents in order.
func Reconstruct(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		sb.WriteString(s.Content)
	}
	return sb.String()
}

// HighlightedCount returns the number of highlighted segments.
func HighlightedCount(segments []Segment) int {
	n := 0
	for _, s := range segments {
		if s.Highlighted {
			n++
		}
	}
	return n
}

// CacheKey returns a stable digest of the inputs, suitable as a memoization key.
func CacheKey(text string, phrases []string) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(len(text))))
	h.Write([]byte{0})
	h.Write([]byte(text))
	for _, p := range phrases {
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// candidates drops empty phrases and orders the rest by descending character
// length.  The sort is stable so equal lengths keep list order.
func candidates(phrases []string) []candidate {
	out := make([]candidate, 0, len(phrases))
	for i, p := range phrases {
		if p == "" || !utf8.ValidString(p) {
			continue
		}
		out = append(out, candidate{index: i, runes: []rune(p)})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return len(out[a].runes) > len(out[b].runes)
	})
	return out
}

func matchAt(text []rune, at int, phrase []rune) bool {
	for k, r := range phrase {
		if !foldEqual(text[at+k], r) {
			return false
		}
	}
	return true
}

// foldEqual reports whether a and b are equal under Unicode simple case folding.
func foldEqual(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

func claimed(owner []int, start, end int) bool {
	for k := start; k < end; k++ {
		if owner[k] >= 0 {
			return true
		}
	}
	return false
}

// byteOffsets maps rune index i to its byte offset in text; the final entry is len(text).
func byteOffsets(text string, n int) []int {
	offsets := make([]int, 0, n+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}

func buildSegments(text string, offsets, owner []int, spans []span) []Segment {
	out := make([]Segment, 0, 2*len(spans)+1)
	for i := 0; i < len(owner); {
		if owner[i] < 0 {
			j := i
			for j < len(owner) && owner[j] < 0 {
				j++
			}
			out = append(out, Segment{Content: text[offsets[i]:offsets[j]], Start: i, End: j})
			i = j
			continue
		}
		sp := spans[owner[i]]
		idx := sp.phrase
		out = append(out, Segment{
			Content:     text[offsets[sp.start]:offsets[sp.end]],
			Highlighted: true,
			PhraseIndex: &idx,
			Start:       sp.start,
			End:         sp.end,
		})
		i = sp.end
	}
	return out
}
