package verify

import (
	"errors"
	"fmt"
)

// Common verification errors
var (
	// ErrEmptyInput is returned when the document payload is empty.
	ErrEmptyInput = errors.New("document is empty")
)

// VerifyError wraps errors with additional context about the verification failure.
// Rasterization and recognition failures are never downgraded to partial
// results; they abort the call and surface through this type, with the
// underlying sentinel (e.g. pdfrender.ErrInvalidPDF, ocr.ErrRecognitionFailed)
// reachable via errors.Is.
type VerifyError struct {
	// Op is the operation that failed (e.g., "Verify", "ExtractText").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *VerifyError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("verify: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("verify: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *VerifyError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *VerifyError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewVerifyError creates a new VerifyError with the specified operation and underlying error.
func NewVerifyError(op string, err error, details string) *VerifyError {
	return &VerifyError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapVerifyError wraps an error as a VerifyError if it isn't already one.
func WrapVerifyError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var verifyErr *VerifyError
	if errors.As(err, &verifyErr) {
		return err // Already wrapped
	}

	return NewVerifyError(op, err, details)
}
