package classification

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/fraud"
)

// Input is the extracted content handed to Analyze.
type Input struct {
	Text   string
	Pages  []string
	Format string // "pdf" | "text"
}

// EngineBreakdown reports each engine's confidence.
type EngineBreakdown struct {
	KeywordEngine  float64 `json:"keyword_engine"`
	SemanticEngine float64 `json:"semantic_engine"`
	LayoutEngine   float64 `json:"layout_engine"`
}

// PageClass is the classification of a single page.
type PageClass struct {
	PageNumber int     `json:"page_number"`
	DocType    string  `json:"doc_type"`
	Confidence float64 `json:"confidence"`
}

// Field is a value lifted from the text.
type Field struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Signal is a fraud indicator found in the document text.
type Signal struct {
	Severity    string `json:"severity"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Analysis is the full multi-engine result.
type Analysis struct {
	DocType          string          `json:"doc_type"`
	Confidence       float64         `json:"confidence"`
	KeywordsMatched  []string        `json:"keywords_matched"`
	HighlightPhrases []string        `json:"highlight_phrases"`
	Tags             []string        `json:"tags"`
	QualityScore     float64         `json:"quality_score"`
	EngineBreakdown  EngineBreakdown `json:"engine_breakdown"`
	PageMap          []PageClass     `json:"page_map"`
	ExtractedFields  []Field         `json:"extracted_fields"`
	FraudSignals     []Signal        `json:"fraud_signals"`
}

// LowTextWords is the word count under which a document is tagged "low-text".
const LowTextWords = 50

type fieldRule struct {
	name       string
	re         *regexp.Regexp
	confidence float64
}

var amountRe = regexp.MustCompile(`(?i)((?:₹|\$|€|\b(?:rs\.?|inr|usd|eur))\s?[0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

var fieldRules = []fieldRule{
	{"policy_number", regexp.MustCompile(`(?i)policy\s*(?:no\b\.?|number|#)\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-/]{3,})`), 0.9},
	{"claim_number", regexp.MustCompile(`(?i)claim\s*(?:no\b\.?|number|#)\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-/]{3,})`), 0.9},
	{"invoice_number", regexp.MustCompile(`(?i)(?:invoice|bill)\s*(?:no\b\.?|number|#)\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-/]{2,})`), 0.85},
	{"gst_number", regexp.MustCompile(`\b(\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z])\b`), 0.95},
	{"amount", amountRe, 0.8},
	{"date", regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})\b`), 0.75},
}

var (
	amountDigitsRe    = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]{1,2})?`)
	duplicateHintsRes = regexp.MustCompile(`(?i)\b(duplicate (?:copy|invoice|bill)|copy of (?:invoice|bill)|re-?issued invoice|reprint)\b`)
)

// Analyze runs the keyword, semantic, layout, field and fraud engines
// concurrently and assembles their results.
func Analyze(ctx context.Context, in Input) (*Analysis, error) {
	pages := in.Pages
	if len(pages) == 0 && in.Text != "" {
		pages = []string{in.Text}
	}
	lower := strings.ToLower(in.Text)

	var (
		keyword  Result
		semantic float64
		layout   float64
		fields   []Field
		pageMap  []PageClass
		signals  []Signal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		keyword = Classify(in.Text)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		semantic = semanticScore(lower)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		layout = layoutScore(in.Text, len(pages))
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		fields = ExtractFields(in.Text)
		return nil
	})
	g.Go(func() error {
		pageMap = make([]PageClass, 0, len(pages))
		for i, p := range pages {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := Classify(p)
			pageMap = append(pageMap, PageClass{PageNumber: i + 1, DocType: r.DocType, Confidence: r.Confidence})
		}
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		signals = FraudSignals(in.Text)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	words := len(strings.Fields(in.Text))
	return &Analysis{
		DocType:          keyword.DocType,
		Confidence:       keyword.Confidence,
		KeywordsMatched:  keyword.KeywordsMatched,
		HighlightPhrases: highlightPhrases(keyword.KeywordsMatched, fields),
		Tags:             tags(keyword.DocType, in.Format, len(pages), words),
		QualityScore:     qualityScore(in.Text, words, len(fields)),
		EngineBreakdown: EngineBreakdown{
			KeywordEngine:  keyword.Confidence,
			SemanticEngine: semantic,
			LayoutEngine:   layout,
		},
		PageMap:         pageMap,
		ExtractedFields: fields,
		FraudSignals:    signals,
	}, nil
}

// semanticScore blends coverage of the winning type's keywords with coverage
// of the whole keyword vocabulary.
func semanticScore(lower string) float64 {
	total, present := 0, 0
	bestHits, bestLen := 0, 1
	for _, p := range Patterns {
		hits := len(matchKeywords(lower, p.Keywords))
		total += len(p.Keywords)
		present += hits
		if hits > bestHits {
			bestHits, bestLen = hits, len(p.Keywords)
		}
	}
	if total == 0 {
		return 0
	}
	overall := float64(present) / float64(total)
	if bestHits == 0 {
		return round2(overall * 0.5)
	}
	return round2(0.7*float64(bestHits)/float64(bestLen) + 0.3*overall)
}

// layoutScore rewards "label: value" line structure and multi-page layouts.
func layoutScore(text string, pageCount int) float64 {
	lines, structured := 0, 0
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines++
		if i := strings.Index(l, ":"); i > 0 && i < len(l)-1 {
			structured++
		}
	}
	if lines == 0 {
		return 0
	}
	score := 0.4 + 0.4*float64(structured)/float64(lines)
	if pageCount > 1 {
		score += 0.2
	} else {
		score += 0.1
	}
	return round2(math.Min(score, 1))
}

// ExtractFields returns the first match of each known field.
func ExtractFields(text string) []Field {
	fields := []Field{}
	for _, r := range fieldRules {
		m := r.re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		fields = append(fields, Field{Name: r.name, Value: strings.TrimSpace(m[1]), Confidence: r.confidence})
	}
	return fields
}

// FraudSignals derives indicators from suspicious wording, large amounts and
// duplicate-invoice hints.
func FraudSignals(text string) []Signal {
	signals := []Signal{}

	if hits := fraud.MatchKeywords(text); len(hits) > 0 {
		signals = append(signals, Signal{
			Severity:    "medium",
			Label:       "suspicious_keywords",
			Description: "Suspicious keywords found: " + strings.Join(hits, ", "),
		})
	}

	if top := maxAmount(text); top > fraud.VeryHighAmount {
		signals = append(signals, Signal{
			Severity:    "high",
			Label:       "very_high_amount",
			Description: "Document mentions an amount above " + formatAmount(fraud.VeryHighAmount) + ".",
		})
	} else if top > fraud.HighAmount {
		signals = append(signals, Signal{
			Severity:    "medium",
			Label:       "high_amount",
			Description: "Document mentions an amount above " + formatAmount(fraud.HighAmount) + ".",
		})
	}

	if duplicateHintsRes.MatchString(text) {
		signals = append(signals, Signal{
			Severity:    "high",
			Label:       "duplicate_invoice",
			Description: "Document looks like a duplicate or re-issued invoice.",
		})
	}
	return signals
}

func maxAmount(text string) float64 {
	top := 0.0
	for _, m := range amountRe.FindAllString(text, -1) {
		digits := amountDigitsRe.FindString(m)
		v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
		if err == nil && v > top {
			top = v
		}
	}
	return top
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func highlightPhrases(keywords []string, fields []Field) []string {
	out := make([]string, 0, len(keywords)+len(fields))
	seen := make(map[string]struct{}, cap(out))
	add := func(s string) {
		k := strings.ToLower(s)
		if s == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	for _, k := range keywords {
		add(k)
	}
	for _, f := range fields {
		add(f.Value)
	}
	return out
}

func tags(docType, format string, pageCount, words int) []string {
	out := []string{Slug(docType)}
	if format == "pdf" {
		out = append(out, "pdf")
	} else {
		out = append(out, "text")
	}
	if pageCount > 1 {
		out = append(out, "multi-page")
	}
	if words < LowTextWords {
		out = append(out, "low-text")
	}
	return out
}

// qualityScore weighs text length, field yield and the share of printable
// characters.
func qualityScore(text string, words, fieldCount int) float64 {
	if text == "" {
		return 0
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	lengthPart := math.Min(float64(words)/200, 1) * 0.4
	fieldPart := math.Min(float64(fieldCount)/3, 1) * 0.3
	printPart := float64(printable) / float64(total) * 0.3
	return round2(lengthPart + fieldPart + printPart)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
