// Package ocr provides text recognition for document images.
//
// Two backends are available, selected through the OCR_BACKEND environment
// variable: Google Cloud Vision document text detection (the default) and
// Google Document AI. Both accept a single raster image per call; PDF
// documents are rasterized page by page before recognition (see the
// pdfrender package).
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//
// Document AI backend additionally requires:
//   - GOOGLE_PROJECT_ID (or GOOGLE_CLOUD_PROJECT)
//   - GOOGLE_PROCESSOR_ID (or DOCUMENT_AI_PROCESSOR_ID)
//   - GOOGLE_LOCATION (or GOOGLE_CLOUD_LOCATION, defaults to "us")
//
// Recognition runs with English, French, and Arabic loaded simultaneously,
// since the documents being verified routinely mix those scripts.
package ocr

import (
	"context"
	"os"
	"strings"
	"time"
)

// MaxImageSizeBytes is the maximum image size for synchronous recognition (20MB).
const MaxImageSizeBytes = 20 * 1024 * 1024

// LanguageHints are the recognition languages loaded for every request.
var LanguageHints = []string{"en", "fr", "ar"}

// Recognizer defines the interface for text recognition services.
type Recognizer interface {
	// RecognizeImage extracts text from a single raster image (PNG or JPEG).
	RecognizeImage(ctx context.Context, image []byte) (string, error)

	// RecognizeImageWithMetadata extracts text with additional metadata
	// such as confidence scores and detected languages.
	RecognizeImageWithMetadata(ctx context.Context, image []byte) (*Result, error)

	// Close releases the underlying API client.
	Close() error
}

// Result contains the outcome of recognizing one image with metadata.
type Result struct {
	// Text is the extracted text content. It may be empty for an image
	// with no readable text; that is not an error at this layer.
	Text string `json:"text"`

	// Confidence is the average confidence score across the detected text (0.0 to 1.0).
	Confidence float32 `json:"confidence"`

	// LanguageCodes contains the languages detected in the image.
	LanguageCodes []string `json:"language_codes,omitempty"`

	// ProcessedAt is the timestamp when recognition completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long the recognition took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// NewRecognizerForBackend returns the recognizer for the named backend:
// "vision" or "documentai". An empty name selects Vision. Callers that
// validate their configuration (internal/config) pass the validated value
// through here so backend selection is decided in one place.
func NewRecognizerForBackend(ctx context.Context, backend string) (Recognizer, error) {
	const op = "NewRecognizerForBackend"

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "vision":
		return NewGoogleVisionRecognizer(ctx)
	case "documentai":
		return NewDocumentAIRecognizer(ctx)
	default:
		return nil, NewOCRError(op, ErrUnsupportedBackend, backend)
	}
}

// NewRecognizer returns the recognizer selected by the OCR_BACKEND
// environment variable: "vision" (the default) or "documentai".
func NewRecognizer(ctx context.Context) (Recognizer, error) {
	return NewRecognizerForBackend(ctx, os.Getenv("OCR_BACKEND"))
}
