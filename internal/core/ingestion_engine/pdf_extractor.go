package ingestion_engine

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractPDF validates the document structure with pdfcpu before handing it
// to the text converter.
func (e *DocumentExtractor) extractPDF(data []byte) (string, error) {
	pages, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	if pages == 0 {
		return "", errors.New("pdf has no pages")
	}

	text, err := e.pdfToText(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("convert pdf: %w", err)
	}
	return text, nil
}
