package textextract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

func TestExtract_EmptyFile(t *testing.T) {
	_, err := Extract(context.Background(), "a.txt", "text/plain", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyFile))
}

func TestExtract_PlainText(t *testing.T) {
	ext, err := Extract(context.Background(), "claim.txt", "text/plain", []byte("Claim Number: CLM-1\nLoss date 2024-01-02"))
	require.NoError(t, err)
	assert.Equal(t, FormatText, ext.Format)
	assert.Equal(t, "Claim Number: CLM-1\nLoss date 2024-01-02", ext.Text)
	assert.Equal(t, 1, ext.PageCount())
}

func TestExtract_StripsUTF8BOM(t *testing.T) {
	ext, err := Extract(context.Background(), "a.txt", "", []byte("\xEF\xBB\xBFinvoice"))
	require.NoError(t, err)
	assert.Equal(t, "invoice", ext.Text)
}

func TestExtract_DropsInvalidBytes(t *testing.T) {
	ext, err := Extract(context.Background(), "a.txt", "", []byte("in\xffvoice"))
	require.NoError(t, err)
	assert.Equal(t, "invoice", ext.Text)
}

func TestExtract_RejectsBinary(t *testing.T) {
	_, err := Extract(context.Background(), "a.bin", "application/octet-stream", []byte{'a', 0, 'b'})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedEncoding))
	assert.Contains(t, err.Error(), "Unsupported file encoding.")
}

func TestExtract_NormalizesToNFC(t *testing.T) {
	ext, err := Extract(context.Background(), "a.txt", "", []byte("cafe\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", ext.Text)
}

func TestExtract_FormFeedSplitsPages(t *testing.T) {
	ext, err := Extract(context.Background(), "a.txt", "", []byte("page one\fpage two"))
	require.NoError(t, err)
	assert.Equal(t, []string{"page one", "page two"}, ext.Pages)
	assert.Equal(t, 2, ext.PageCount())
}

func TestExtract_InvalidPDF(t *testing.T) {
	_, err := Extract(context.Background(), "policy.pdf", "application/pdf", []byte("not a pdf"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExtractionFailed))
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Extract(ctx, "a.txt", "", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("x.PDF", ""))
	assert.True(t, IsPDF("upload", "application/pdf"))
	assert.False(t, IsPDF("x.txt", "text/plain"))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc", Preview("abc", 10))
	assert.Equal(t, "ab", Preview("abc", 2))
	assert.Equal(t, "éé", Preview("ééé", 2))

	long := strings.Repeat("x", DefaultPreviewChars+10)
	assert.Len(t, Preview(long, 0), DefaultPreviewChars)
}
