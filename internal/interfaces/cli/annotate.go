package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/internal/intelligence/highlight"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// AnnotationResult is the output of the annotate command.
type AnnotationResult struct {
	Segments    []highlight.Segment `json:"segments"`
	Highlighted int                 `json:"highlighted"`
}

// String marks highlighted segments with brackets.
func (r AnnotationResult) String() string {
	var sb strings.Builder
	for _, s := range r.Segments {
		if s.Highlighted {
			sb.WriteString("[")
			sb.WriteString(s.Content)
			sb.WriteString("]")
			continue
		}
		sb.WriteString(s.Content)
	}
	return sb.String()
}

func (r AnnotationResult) TableHeaders() []string {
	return []string{"START", "END", "PHRASE", "CONTENT"}
}

func (r AnnotationResult) TableRows() [][]string {
	rows := make([][]string, 0, r.Highlighted)
	for _, s := range r.Segments {
		if !s.Highlighted || s.PhraseIndex == nil {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Start),
			strconv.Itoa(s.End),
			strconv.Itoa(*s.PhraseIndex),
			s.Content,
		})
	}
	return rows
}

// NewAnnotateCmd highlights phrases in a text given inline or read from a file.
func NewAnnotateCmd() *cobra.Command {
	var (
		text    string
		file    string
		phrases []string
	)

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Highlight phrase occurrences in a text",
		Long:  "Split a text into plain and highlighted segments.  Matching is literal and\ncase-insensitive; overlapping matches go to the longest phrase.",
		Example: `  insuredoc annotate --text "Fire damage at the warehouse" --phrase fire --phrase warehouse
  insuredoc annotate --file claim.txt --phrase "policy number" -o table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (text == "") == (file == "") {
				return errors.InvalidArgument("exactly one of --text or --file is required")
			}
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", file, err)
				}
				text = string(data)
			}

			segments, err := highlight.Annotate(text, phrases)
			if err != nil {
				return err
			}
			res := AnnotationResult{Segments: segments, Highlighted: highlight.HighlightedCount(segments)}
			loggerFor(cmd).Debug("Annotated text",
				logging.Int("segments", len(segments)),
				logging.Int("highlighted", res.Highlighted),
			)
			return PrintResult(cmd, res)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "text to annotate")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file")
	cmd.Flags().StringArrayVarP(&phrases, "phrase", "p", nil, "phrase to highlight (repeatable)")
	return cmd
}
