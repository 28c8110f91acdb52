package loaders

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"docqa/internal/rag/interfaces"
	"docqa/internal/ragerr"
)

// TxtLoader extracts plain text documents as-is.
type TxtLoader struct{}

// NewTxtLoader creates a new TxtLoader.
func NewTxtLoader() *TxtLoader {
	return &TxtLoader{}
}

// Extract returns the document bytes as a string. Invalid UTF-8 is
// rejected as an extraction error.
func (l *TxtLoader) Extract(ctx context.Context, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ragerr.New(ragerr.CodeExtraction, "document is not valid UTF-8 text")
	}
	return string(data), nil
}

// ForFile picks a loader by file extension; unknown extensions default
// to the plain text loader.
func ForFile(name string) interfaces.Loader {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return NewPdfLoader()
	default:
		return NewTxtLoader()
	}
}

// compile-time check to ensure TxtLoader implements the Loader interface
var _ interfaces.Loader = (*TxtLoader)(nil)
