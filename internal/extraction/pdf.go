package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads every page's text layer in page order. Pages whose content
// cannot be decoded are skipped; the document fails only if nothing at all
// could be read.
func extractPDF(data []byte) (res *Result, err error) {
	if !looksLikePDF(data) {
		return nil, &DocumentReadError{Format: FormatPDF, Message: "missing %PDF- header"}
	}

	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &DocumentReadError{Format: FormatPDF, Message: "malformed document", Cause: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &DocumentReadError{Format: FormatPDF, Message: "failed to open", Cause: err}
	}

	pageCount := reader.NumPage()
	var (
		sb      strings.Builder
		failed  int
		lastErr error
	)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		// Font resource names are page-scoped, so fonts are resolved per page.
		text, err := page.GetPlainText(nil)
		if err != nil {
			failed++
			lastErr = err
			continue
		}
		if sb.Len() > 0 && text != "" {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}

	if sb.Len() == 0 && failed > 0 {
		return nil, &DocumentReadError{
			Format:  FormatPDF,
			Message: fmt.Sprintf("could not decode text on %d of %d pages", failed, pageCount),
			Cause:   lastErr,
		}
	}

	return &Result{Format: FormatPDF, Text: sb.String(), Pages: pageCount}, nil
}
