package ingestion_engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/yuin/goldmark"

	"github.com/markdave123-py/docqa/internal/core"
)

var _ core.TextExtractor = (*DocumentExtractor)(nil)

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// DocumentExtractor implements core.TextExtractor for PDF, DOCX, Markdown and plain text.
type DocumentExtractor struct {
	markdown  goldmark.Markdown
	pdfToText func(r io.Reader) (string, error)
	logger    *slog.Logger
}

func NewDocumentExtractor(logger *slog.Logger) *DocumentExtractor {
	return &DocumentExtractor{
		markdown:  goldmark.New(),
		pdfToText: docconvPDF,
		logger:    logger.With("component", "extractor"),
	}
}

// docconvPDF shells out to pdftotext through docconv; pages come back in order.
func docconvPDF(r io.Reader) (string, error) {
	body, _, err := docconv.ConvertPDF(r)
	return body, err
}

// Extract dispatches on format. FormatUnknown is a silent no-op that returns "".
func (e *DocumentExtractor) Extract(ctx context.Context, path string, format core.Format, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	switch format {
	case core.FormatPDF:
		text, err = e.extractPDF(data)
	case core.FormatStructuredDoc:
		text, err = extractDOCX(data)
	case core.FormatMarkup:
		text, err = e.extractMarkdown(data)
	case core.FormatPlainText:
		text, err = extractPlainText(data)
	default:
		e.logger.Debug("no extractor for format, skipping", "path", path)
		return "", nil
	}
	if err != nil {
		return "", &core.ExtractionError{Format: format, Path: path, Err: err}
	}

	e.logger.Debug("text extracted", "path", path, "format", format.String(), "bytes", len(text))
	return text, nil
}

// extractMarkdown returns the rendered HTML, not stripped text.
func (e *DocumentExtractor) extractMarkdown(data []byte) (string, error) {
	src, err := extractPlainText(data)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := e.markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// extractPlainText decodes UTF-8 and normalises line endings to "\n".
func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errInvalidUTF8
	}
	text := string(data)
	if strings.ContainsRune(text, '\r') {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
	}
	return text, nil
}
