package constellation

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument is wrapped by every MalformedDocumentError.
var ErrMalformedDocument = errors.New("malformed constellation")

// MalformedDocumentError reports a document whose annotations cannot produce
// a consistent outline: dangling breadcrumb references, out-of-range page
// indices, mismatched annotation lengths.
type MalformedDocumentError struct {
	Slug   string
	Page   int // -1 when the problem is not tied to a page
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	if e.Page < 0 {
		return fmt.Sprintf("%s %q: %s", ErrMalformedDocument, e.Slug, e.Reason)
	}
	return fmt.Sprintf("%s %q: page %d: %s", ErrMalformedDocument, e.Slug, e.Page, e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error {
	return ErrMalformedDocument
}

// Malformed builds a MalformedDocumentError.
func Malformed(slug string, page int, format string, args ...any) error {
	return &MalformedDocumentError{Slug: slug, Page: page, Reason: fmt.Sprintf(format, args...)}
}
