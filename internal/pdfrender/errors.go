package pdfrender

import (
	"errors"
	"fmt"
)

// Common PDF rendering errors
var (
	// ErrInvalidPDF is returned when the input cannot be parsed as a PDF
	// document (corrupt file, unsupported encryption, missing header).
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrPDFTooLarge is returned when the PDF exceeds the maximum file size limit.
	ErrPDFTooLarge = errors.New("PDF file size exceeds the maximum limit (20MB)")

	// ErrPageOutOfRange is returned when a requested page number does not
	// exist in the document.
	ErrPageOutOfRange = errors.New("page number out of range")

	// ErrEmptyDocument is returned when the PDF contains no pages.
	ErrEmptyDocument = errors.New("PDF contains no pages")
)

// RenderError wraps errors with additional context about the rendering failure.
type RenderError struct {
	// Op is the operation that failed (e.g., "PageCount", "RenderPages").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("pdfrender: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("pdfrender: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *RenderError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRenderError creates a new RenderError with the specified operation and underlying error.
func NewRenderError(op string, err error, details string) *RenderError {
	return &RenderError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapRenderError wraps an error as a RenderError if it isn't already one.
func WrapRenderError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var renderErr *RenderError
	if errors.As(err, &renderErr) {
		return err // Already wrapped
	}

	return NewRenderError(op, err, details)
}
