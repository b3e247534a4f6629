package core

import (
	"context"
	"strings"
)

// Format is the closed set of upload formats the extractor knows about.
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatStructuredDoc
	FormatMarkup
	FormatPlainText
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatStructuredDoc:
		return "docx"
	case FormatMarkup:
		return "markdown"
	case FormatPlainText:
		return "text"
	default:
		return "unknown"
	}
}

// DetectFormat maps a filename suffix to a Format. Matching is case-sensitive:
// "report.PDF" is FormatUnknown.
func DetectFormat(filename string) Format {
	switch {
	case strings.HasSuffix(filename, ".pdf"):
		return FormatPDF
	case strings.HasSuffix(filename, ".docx"):
		return FormatStructuredDoc
	case strings.HasSuffix(filename, ".md"):
		return FormatMarkup
	case strings.HasSuffix(filename, ".txt"):
		return FormatPlainText
	}
	return FormatUnknown
}

// TextExtractor turns the raw bytes of an upload into text.
// FormatUnknown yields "" and no error.
type TextExtractor interface {
	Extract(ctx context.Context, path string, format Format, data []byte) (string, error)
}
