// Package textextract turns uploaded documents into plain text for the
// analysis pipeline.  PDFs are read page by page; everything else is treated
// as UTF-8 text.
package textextract

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// DefaultPreviewChars is the preview length returned alongside analyses.
const DefaultPreviewChars = 4000

// Format values reported in Extraction.Format.
const (
	FormatPDF  = "pdf"
	FormatText = "text"
)

// Extraction is the decoded content of one document.
type Extraction struct {
	Text   string   `json:"text"`
	Pages  []string `json:"pages"`
	Format string   `json:"format"`
}

// PageCount returns the number of pages, never less than one for non-empty text.
func (e *Extraction) PageCount() int {
	if len(e.Pages) == 0 && e.Text != "" {
		return 1
	}
	return len(e.Pages)
}

// Extract decodes data according to its filename and content type.
func Extract(ctx context.Context, filename, contentType string, data []byte) (*Extraction, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyFile, "Empty file.")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if IsPDF(filename, contentType) {
		return extractPDF(ctx, data)
	}
	return extractText(data)
}

// IsPDF reports whether the upload should be parsed as PDF.
func IsPDF(filename, contentType string) bool {
	if strings.EqualFold(strings.TrimSpace(contentType), "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

func extractPDF(ctx context.Context, data []byte) (*Extraction, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExtractionFailed, "Could not extract text from the document.")
	}

	n := r.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeExtractionFailed, "Could not extract text from the document.").
				WithDetail("page extraction failed")
		}
		pages = append(pages, norm.NFC.String(txt))
	}

	return &Extraction{
		Text:   strings.TrimSpace(strings.Join(pages, "\n")),
		Pages:  pages,
		Format: FormatPDF,
	}, nil
}

func extractText(data []byte) (*Extraction, error) {
	// A leading BOM selects the decoder (UTF-8/UTF-16) and is dropped.
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupportedEncoding, "Unsupported file encoding.")
	}
	if bytes.IndexByte(decoded, 0) >= 0 {
		return nil, errors.New(errors.ErrCodeUnsupportedEncoding, "Unsupported file encoding.")
	}

	text := norm.NFC.String(strings.ToValidUTF8(string(decoded), ""))
	return &Extraction{
		Text:   text,
		Pages:  strings.Split(text, "\f"),
		Format: FormatText,
	}, nil
}

// Preview truncates text to at most limit characters without splitting a
// multi-byte character.  A non-positive limit selects DefaultPreviewChars.
func Preview(text string, limit int) string {
	if limit <= 0 {
		limit = DefaultPreviewChars
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}
