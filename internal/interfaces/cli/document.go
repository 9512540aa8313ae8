package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/classification"
	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/summary"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/internal/intelligence/textextract"
)

// readDocument loads a local file and extracts its text the same way uploads
// are handled by the API.
func readDocument(cmd *cobra.Command, path string) (*textextract.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	ext, err := textextract.Extract(cmd.Context(), filepath.Base(path), contentType, data)
	if err != nil {
		return nil, err
	}
	loggerFor(cmd).Debug("Extracted document",
		logging.String("file", path),
		logging.String("format", ext.Format),
		logging.Int("pages", ext.PageCount()),
	)
	return ext, nil
}

// ClassificationResult is the output of the classify command.
type ClassificationResult struct {
	File string `json:"file"`
	classification.Result
}

func (r ClassificationResult) String() string {
	return fmt.Sprintf("%s: %s (confidence %.2f, keywords: %s)",
		r.File, r.DocType, r.Confidence, strings.Join(r.KeywordsMatched, ", "))
}

func (r ClassificationResult) TableHeaders() []string {
	return []string{"FILE", "DOC TYPE", "CONFIDENCE", "KEYWORDS"}
}

func (r ClassificationResult) TableRows() [][]string {
	return [][]string{{
		r.File,
		r.DocType,
		strconv.FormatFloat(r.Confidence, 'f', 2, 64),
		strings.Join(r.KeywordsMatched, ", "),
	}}
}

// NewClassifyCmd runs the keyword classifier over a local file.
func NewClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify FILE",
		Short: "Classify a document by keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, ClassificationResult{
				File:   filepath.Base(args[0]),
				Result: classification.Classify(ext.Text),
			})
		},
	}
}

// AnalysisResult is the output of the analyze command.
type AnalysisResult struct {
	File string `json:"file"`
	*classification.Analysis
	Preview string `json:"preview"`
}

func (r AnalysisResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "File:       %s\n", r.File)
	fmt.Fprintf(&sb, "Type:       %s (confidence %.2f)\n", r.DocType, r.Confidence)
	fmt.Fprintf(&sb, "Quality:    %.2f\n", r.QualityScore)
	fmt.Fprintf(&sb, "Tags:       %s\n", strings.Join(r.Tags, ", "))
	for _, f := range r.ExtractedFields {
		fmt.Fprintf(&sb, "Field:      %s = %s\n", f.Name, f.Value)
	}
	for _, s := range r.FraudSignals {
		fmt.Fprintf(&sb, "Signal:     [%s] %s\n", s.Severity, s.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (r AnalysisResult) TableHeaders() []string {
	return []string{"PAGE", "DOC TYPE", "CONFIDENCE"}
}

func (r AnalysisResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.PageMap))
	for _, p := range r.PageMap {
		rows = append(rows, []string{
			strconv.Itoa(p.PageNumber),
			p.DocType,
			strconv.FormatFloat(p.Confidence, 'f', 2, 64),
		})
	}
	return rows
}

// NewAnalyzeCmd runs the full multi-engine analysis over a local file.
func NewAnalyzeCmd() *cobra.Command {
	var previewChars int

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Run the full document analysis",
		Long:  "Classify every page, extract fields, and report fraud signals and a quality score.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			analysis, err := classification.Analyze(cmd.Context(), classification.Input{
				Text:   ext.Text,
				Pages:  ext.Pages,
				Format: ext.Format,
			})
			if err != nil {
				return err
			}
			return PrintResult(cmd, AnalysisResult{
				File:     filepath.Base(args[0]),
				Analysis: analysis,
				Preview:  textextract.Preview(ext.Text, previewChars),
			})
		},
	}
	cmd.Flags().IntVar(&previewChars, "preview-chars", textextract.DefaultPreviewChars, "length of the text preview")
	return cmd
}

// SummaryResult is the output of the summarize command.
type SummaryResult struct {
	File string `json:"file"`
	summary.Summary
}

func (r SummaryResult) String() string { return r.Summary.Summary }

// NewSummarizeCmd prints the word-truncated summary of a local file.
func NewSummarizeCmd() *cobra.Command {
	var words int

	cmd := &cobra.Command{
		Use:   "summarize FILE",
		Short: "Summarize a policy document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, SummaryResult{
				File:    filepath.Base(args[0]),
				Summary: summary.Summarize(ext.Text, words),
			})
		},
	}
	cmd.Flags().IntVarP(&words, "words", "w", summary.DefaultMaxWords, "maximum words in the summary")
	return cmd
}
