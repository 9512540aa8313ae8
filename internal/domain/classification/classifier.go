// Package classification assigns insurance document types from keyword
// evidence and builds the richer multi-engine analysis behind the document
// analyze endpoint.
package classification

import (
	"strings"
)

// DocTypeOther is reported when no pattern keyword is present.
const DocTypeOther = "Other"

// Pattern is a document type and the keywords that indicate it.
type Pattern struct {
	DocType  string
	Keywords []string
}

// Patterns are evaluated in order; on equal hit counts the earlier type wins.
var Patterns = []Pattern{
	{DocType: "Claim Form", Keywords: []string{"claim number", "policy number", "loss date", "incident"}},
	{DocType: "Inspection Report", Keywords: []string{"inspection", "survey", "inspector", "site visit"}},
	{DocType: "Invoice", Keywords: []string{"invoice", "gst", "amount due", "bill no"}},
}

// Confidence values of the keyword engine.
const (
	ConfidenceOther     = 0.4
	ConfidenceThreeHits = 0.95
	ConfidenceTwoHits   = 0.85
	ConfidenceOneHit    = 0.7
)

// Result is the keyword engine's verdict.
type Result struct {
	DocType         string   `json:"doc_type"`
	Confidence      float64  `json:"confidence"`
	KeywordsMatched []string `json:"keywords_matched"`
}

// Classify runs the keyword engine over text.
func Classify(text string) Result {
	lower := strings.ToLower(text)

	best := Result{DocType: DocTypeOther, KeywordsMatched: []string{}}
	bestCount := 0
	for _, p := range Patterns {
		hits := matchKeywords(lower, p.Keywords)
		if len(hits) > bestCount {
			bestCount = len(hits)
			best.DocType = p.DocType
			best.KeywordsMatched = hits
		}
	}
	best.Confidence = confidenceFor(best.DocType, bestCount)
	return best
}

func confidenceFor(docType string, hits int) float64 {
	switch {
	case docType == DocTypeOther:
		return ConfidenceOther
	case hits >= 3:
		return ConfidenceThreeHits
	case hits == 2:
		return ConfidenceTwoHits
	default:
		return ConfidenceOneHit
	}
}

func matchKeywords(lower string, keywords []string) []string {
	hits := []string{}
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

// Slug converts a document type to its tag form, e.g. "Claim Form" -> "claim-form".
func Slug(docType string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(docType)), " ", "-")
}

// PatternFor returns the pattern of a document type.
func PatternFor(docType string) (Pattern, bool) {
	for _, p := range Patterns {
		if p.DocType == docType {
			return p, true
		}
	}
	return Pattern{}, false
}
