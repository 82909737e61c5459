package extraction

import "fmt"

// DocumentReadError indicates the document could not be opened or parsed:
// corrupt bytes, a format mismatch, or an unsupported format.
type DocumentReadError struct {
	Format  Format
	Message string
	Cause   error
}

func (e *DocumentReadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to read %s: %s: %v", describe(e.Format), e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to read %s: %s", describe(e.Format), e.Message)
}

func (e *DocumentReadError) Unwrap() error {
	return e.Cause
}

// EmptyTextError indicates the document was parsed but contains no extractable
// text, e.g. a scanned PDF without a text layer.
type EmptyTextError struct {
	Format Format
	Pages  int
}

func (e *EmptyTextError) Error() string {
	if e.Format == FormatPDF {
		return fmt.Sprintf("no extractable text in pdf document (%d pages); it may be a scanned image", e.Pages)
	}
	return fmt.Sprintf("no extractable text in %s", describe(e.Format))
}

// describe names a document by format, e.g. "pdf document".
func describe(f Format) string {
	if f == FormatAuto {
		return "document"
	}
	return string(f) + " document"
}
