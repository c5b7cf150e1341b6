package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrInvalidPDF indicates the uploaded bytes could not be parsed as a PDF.
var ErrInvalidPDF = errors.New("invalid PDF document")

// extractPDFText extracts plain text from PDF bytes, page by page,
// concatenated with newlines. Pages that fail text extraction are skipped;
// a document with no extractable text yields an empty string, which
// ingestion treats as a valid zero-chunk knowledge base.
func extractPDFText(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Scanned or malformed pages have no extractable text.
			continue
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}
