package ocr

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/require"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
)

func TestValidateImage(t *testing.T) {
	require.ErrorIs(t, validateImage("op", nil), ErrEmptyImage)
	require.ErrorIs(t, validateImage("op", []byte{}), ErrEmptyImage)
	require.ErrorIs(t, validateImage("op", make([]byte, MaxImageSizeBytes+1)), ErrImageTooLarge)
	require.NoError(t, validateImage("op", []byte("fine")))
	require.NoError(t, validateImage("op", make([]byte, MaxImageSizeBytes)))
}

func TestSniffMimeType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte("\x89PNG\r\n\x1a\nrest"), "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"pdf", []byte("%PDF-1.7"), "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sniffMimeType(tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := sniffMimeType([]byte("GIF89a"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = sniffMimeType(nil)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestBuildAnnotateRequest(t *testing.T) {
	image := []byte("png bytes")

	req := buildAnnotateRequest(image)
	require.Len(t, req.Requests, 1)

	annotate := req.Requests[0]
	require.Equal(t, image, annotate.Image.Content)
	require.Len(t, annotate.Features, 1)
	require.Equal(t, visionpb.Feature_DOCUMENT_TEXT_DETECTION, annotate.Features[0].Type)
	require.Equal(t, LanguageHints, annotate.ImageContext.LanguageHints)
}

func TestAnnotationFromResponse(t *testing.T) {
	t.Run("nil response", func(t *testing.T) {
		_, err := annotationFromResponse("op", nil)
		require.ErrorIs(t, err, ErrRecognitionFailed)
	})

	t.Run("empty response list", func(t *testing.T) {
		_, err := annotationFromResponse("op", &visionpb.BatchAnnotateImagesResponse{})
		require.ErrorIs(t, err, ErrRecognitionFailed)
	})

	t.Run("per-image API error", func(t *testing.T) {
		resp := &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{
				{Error: &statuspb.Status{Message: "image corrupt"}},
			},
		}
		_, err := annotationFromResponse("op", resp)
		require.ErrorIs(t, err, ErrRecognitionFailed)
		require.Contains(t, err.Error(), "image corrupt")
	})

	t.Run("annotation returned", func(t *testing.T) {
		resp := &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{
				{FullTextAnnotation: &visionpb.TextAnnotation{Text: "Dr Ahmed Benali"}},
			},
		}
		annotation, err := annotationFromResponse("op", resp)
		require.NoError(t, err)
		require.Equal(t, "Dr Ahmed Benali", annotation.Text)
	})

	t.Run("blank page has no annotation", func(t *testing.T) {
		resp := &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{{}},
		}
		annotation, err := annotationFromResponse("op", resp)
		require.NoError(t, err)
		require.Nil(t, annotation)
	})
}

func TestProcessAnnotation(t *testing.T) {
	g := &GoogleVisionRecognizer{}

	t.Run("nil annotation is an empty result", func(t *testing.T) {
		result := g.processAnnotation(nil)
		require.Empty(t, result.Text)
		require.Zero(t, result.Confidence)
	})

	t.Run("text and page metadata", func(t *testing.T) {
		annotation := &visionpb.TextAnnotation{
			Text: "Dr Ahmed Benali",
			Pages: []*visionpb.Page{
				{
					Confidence: 0.9,
					Property: &visionpb.TextAnnotation_TextProperty{
						DetectedLanguages: []*visionpb.TextAnnotation_DetectedLanguage{
							{LanguageCode: "fr"},
						},
					},
				},
				{Confidence: 0.7},
			},
		}

		result := g.processAnnotation(annotation)
		require.Equal(t, "Dr Ahmed Benali", result.Text)
		require.InDelta(t, 0.8, result.Confidence, 1e-6)
		require.Equal(t, []string{"fr"}, result.LanguageCodes)
	})
}

func TestHandleVisionError(t *testing.T) {
	g := &GoogleVisionRecognizer{}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"timeout", errors.New("rpc error: context deadline exceeded"), context.DeadlineExceeded},
		{"canceled", errors.New("rpc error: context canceled"), ErrContextCanceled},
		{"quota", errors.New("rpc error: QUOTA_EXCEEDED"), ErrQuotaExceeded},
		{"other", errors.New("rpc error: internal"), ErrRecognitionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, g.handleVisionError("op", tt.err), tt.want)
		})
	}
}

func TestProcessorName(t *testing.T) {
	p := &DocumentAIRecognizer{config: DocumentAIConfig{
		ProjectID:   "my-project",
		Location:    "eu",
		ProcessorID: "proc-123",
	}}
	require.Equal(t, "projects/my-project/locations/eu/processors/proc-123", p.processorName())

	p.config.ProcessorVersion = "v2"
	require.Equal(t, "projects/my-project/locations/eu/processors/proc-123/processorVersions/v2", p.processorName())
}

func TestProcessDocument(t *testing.T) {
	p := &DocumentAIRecognizer{}

	doc := &documentaipb.Document{
		Text: "Licence N 12345",
		Pages: []*documentaipb.Document_Page{
			{
				DetectedLanguages: []*documentaipb.Document_Page_DetectedLanguage{
					{LanguageCode: "fr", Confidence: 0.95},
				},
			},
		},
	}

	result := p.processDocument(doc)
	require.Equal(t, "Licence N 12345", result.Text)
	require.InDelta(t, 0.95, result.Confidence, 1e-6)
	require.Equal(t, []string{"fr"}, result.LanguageCodes)
}

func TestHandleProcessingError(t *testing.T) {
	p := &DocumentAIRecognizer{config: DocumentAIConfig{ProcessorID: "proc-123"}}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"permission", errors.New("rpc error: PERMISSION_DENIED"), ErrMissingCredentials},
		{"quota", errors.New("rpc error: QUOTA_EXCEEDED"), ErrQuotaExceeded},
		{"not found", errors.New("rpc error: NOT_FOUND"), ErrInvalidConfiguration},
		{"bad input", errors.New("rpc error: INVALID_ARGUMENT"), ErrUnsupportedFormat},
		{"timeout", errors.New("rpc error: context deadline exceeded"), context.DeadlineExceeded},
		{"other", errors.New("rpc error: internal"), ErrRecognitionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, p.handleProcessingError("op", tt.err), tt.want)
		})
	}
}

func TestNewRecognizerUnsupportedBackend(t *testing.T) {
	t.Setenv("OCR_BACKEND", "tesseract")

	_, err := NewRecognizer(context.Background())
	require.ErrorIs(t, err, ErrUnsupportedBackend)
}

func TestNewRecognizerForBackend(t *testing.T) {
	t.Setenv("GOOGLE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("GOOGLE_PROCESSOR_ID", "")
	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "")

	_, err := NewRecognizerForBackend(context.Background(), "tesseract")
	require.ErrorIs(t, err, ErrUnsupportedBackend)

	// Backend names are trimmed and case-folded; with no processor
	// configured the Document AI constructor rejects the configuration,
	// proving the documentai branch was selected.
	_, err = NewRecognizerForBackend(context.Background(), "  DocumentAI ")
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestNewDocumentAIRecognizerRequiresConfig(t *testing.T) {
	t.Setenv("OCR_BACKEND", "documentai")
	t.Setenv("GOOGLE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("GOOGLE_PROCESSOR_ID", "")
	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "")

	_, err := NewRecognizer(context.Background())
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestOCRErrorWrapping(t *testing.T) {
	base := errors.New("network down")
	wrapped := WrapOCRError("RecognizeImage", base, "after 3 pages")

	var ocrErr *OCRError
	require.ErrorAs(t, wrapped, &ocrErr)
	require.Equal(t, "RecognizeImage", ocrErr.Op)
	require.ErrorIs(t, wrapped, base)
	require.Contains(t, wrapped.Error(), "after 3 pages")

	require.Same(t, wrapped, WrapOCRError("Other", wrapped, ""))
	require.NoError(t, WrapOCRError("op", nil, ""))
}

func TestGetEnvVarPrecedence(t *testing.T) {
	t.Setenv("OCR_TEST_PRIMARY", "")
	t.Setenv("OCR_TEST_FALLBACK", "fallback")
	require.Equal(t, "fallback", getEnvVar("OCR_TEST_PRIMARY", "OCR_TEST_FALLBACK"))

	t.Setenv("OCR_TEST_PRIMARY", "primary")
	require.Equal(t, "primary", getEnvVar("OCR_TEST_PRIMARY", "OCR_TEST_FALLBACK"))
}
