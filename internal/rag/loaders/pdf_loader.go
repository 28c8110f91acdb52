package loaders

import (
	"bytes"
	"context"

	"github.com/ledongthuc/pdf"

	"docqa/internal/rag/interfaces"
	"docqa/internal/ragerr"
)

// PdfLoader extracts the plain text of a PDF document.
type PdfLoader struct{}

// NewPdfLoader creates a new PdfLoader.
func NewPdfLoader() *PdfLoader {
	return &PdfLoader{}
}

// Extract returns the full text of the PDF as a single string. A
// corrupt or unreadable file yields an extraction error scoped to this
// document.
func (l *PdfLoader) Extract(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", ragerr.Wrap(err, ragerr.CodeExtraction, "failed to open PDF")
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		return "", ragerr.Wrap(err, ragerr.CodeExtraction, "failed to extract PDF text")
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plainText); err != nil {
		return "", ragerr.Wrap(err, ragerr.CodeExtraction, "failed to read PDF text stream")
	}
	return buf.String(), nil
}

// compile-time check to ensure PdfLoader implements the Loader interface
var _ interfaces.Loader = (*PdfLoader)(nil)
