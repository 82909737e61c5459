// Package extraction obtains raw text from resume and job description documents.
package extraction

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Format identifies how a document's bytes are encoded.
type Format string

const (
	// FormatAuto detects the format from the document content.
	FormatAuto Format = ""
	// FormatPDF is a PDF with an extractable text layer.
	FormatPDF Format = "pdf"
	// FormatText is plain UTF-8 text.
	FormatText Format = "text"
	// FormatHTML is an HTML page, typically a pasted job posting.
	FormatHTML Format = "html"
)

// Document is the raw input to extraction. It is consumed once.
type Document struct {
	Name    string
	Format  Format
	Content []byte
}

// Result is the text extracted from one document.
type Result struct {
	Format Format
	Text   string
	Pages  int
}

// Extractor turns documents into text. It holds no per-document state and is
// safe for concurrent use.
type Extractor struct {
	logger *zap.Logger
}

// New creates an Extractor. A nil logger disables logging.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract returns the concatenated text of every segment of doc in source
// order. It fails with *DocumentReadError when the document cannot be parsed
// and with *EmptyTextError when parsing succeeds but yields only whitespace.
func (e *Extractor) Extract(doc Document) (*Result, error) {
	if len(doc.Content) == 0 {
		switch doc.Format {
		case FormatText, FormatHTML:
			return nil, &EmptyTextError{Format: doc.Format, Pages: 1}
		}
		return nil, &DocumentReadError{Format: doc.Format, Message: "document is empty"}
	}

	format := doc.Format
	if format == FormatAuto {
		detected, err := DetectFormat(doc.Content)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	var (
		res *Result
		err error
	)
	switch format {
	case FormatPDF:
		res, err = extractPDF(doc.Content)
	case FormatHTML:
		res, err = extractHTML(doc.Content)
	case FormatText:
		if !utf8.Valid(doc.Content) {
			return nil, &DocumentReadError{Format: FormatText, Message: "text is not valid UTF-8"}
		}
		res = &Result{Format: FormatText, Text: string(doc.Content), Pages: 1}
	default:
		return nil, &DocumentReadError{Format: format, Message: "unsupported format"}
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(res.Text) == "" {
		return nil, &EmptyTextError{Format: format, Pages: res.Pages}
	}

	e.logger.Debug("extracted document text",
		zap.String("name", doc.Name),
		zap.String("format", string(format)),
		zap.Int("pages", res.Pages),
		zap.Int("chars", len(res.Text)),
	)

	return res, nil
}

// DetectFormat sniffs the content type of data.
func DetectFormat(data []byte) (Format, error) {
	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is("application/pdf"):
		return FormatPDF, nil
	case mtype.Is("text/html"):
		return FormatHTML, nil
	case mtype.Is("text/plain"):
		return FormatText, nil
	}
	return FormatAuto, &DocumentReadError{
		Format:  FormatAuto,
		Message: fmt.Sprintf("unsupported content type %s", mtype.String()),
	}
}

// FormatFromFilename maps a file extension to a Format. Unknown extensions map
// to FormatAuto so the content decides.
func FormatFromFilename(name string) Format {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return FormatPDF
	case strings.HasSuffix(lower, ".txt"):
		return FormatText
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return FormatHTML
	}
	return FormatAuto
}

// looksLikePDF reports whether data starts with the PDF magic bytes.
func looksLikePDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
