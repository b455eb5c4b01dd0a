package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// GoogleVisionRecognizer implements Recognizer using Google Cloud Vision
// document text detection.
type GoogleVisionRecognizer struct {
	client *vision.ImageAnnotatorClient
}

// NewGoogleVisionRecognizer creates a new recognizer with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewGoogleVisionRecognizer(ctx context.Context) (Recognizer, error) {
	const op = "NewGoogleVisionRecognizer"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		// Use credentials file
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &GoogleVisionRecognizer{
		client: client,
	}, nil
}

// NewGoogleVisionRecognizerWithClient creates a new recognizer with an explicit client (for testing).
func NewGoogleVisionRecognizerWithClient(client *vision.ImageAnnotatorClient) Recognizer {
	return &GoogleVisionRecognizer{
		client: client,
	}
}

// RecognizeImage extracts text from a single raster image.
func (g *GoogleVisionRecognizer) RecognizeImage(ctx context.Context, image []byte) (string, error) {
	result, err := g.RecognizeImageWithMetadata(ctx, image)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// RecognizeImageWithMetadata extracts text from a single raster image with metadata.
func (g *GoogleVisionRecognizer) RecognizeImageWithMetadata(ctx context.Context, image []byte) (*Result, error) {
	const op = "RecognizeImageWithMetadata"
	startTime := time.Now()

	if err := validateImage(op, image); err != nil {
		return nil, err
	}

	resp, err := g.client.BatchAnnotateImages(ctx, buildAnnotateRequest(image))
	if err != nil {
		return nil, g.handleVisionError(op, err)
	}

	annotation, err := annotationFromResponse(op, resp)
	if err != nil {
		return nil, err
	}

	result := g.processAnnotation(annotation)
	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	return result, nil
}

// buildAnnotateRequest prepares a document text detection request for one image.
func buildAnnotateRequest(image []byte) *visionpb.BatchAnnotateImagesRequest {
	return &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{
						Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION,
					},
				},
				ImageContext: &visionpb.ImageContext{LanguageHints: LanguageHints},
			},
		},
	}
}

// annotationFromResponse unwraps the single-image batch response, surfacing
// per-response API errors.
func annotationFromResponse(op string, resp *visionpb.BatchAnnotateImagesResponse) (*visionpb.TextAnnotation, error) {
	if resp == nil || len(resp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrRecognitionFailed, "no response from Vision API")
	}

	imageResp := resp.Responses[0]
	if imageResp.Error != nil {
		return nil, WrapOCRError(op, ErrRecognitionFailed, fmt.Sprintf("Vision API error: %s", imageResp.Error.Message))
	}

	return imageResp.FullTextAnnotation, nil
}

// processAnnotation extracts text and metadata from the full text annotation.
// A nil annotation means the image contains no detectable text; that is
// reported as an empty result rather than an error, since a blank page in
// a multi-page document is a legitimate input.
func (g *GoogleVisionRecognizer) processAnnotation(annotation *visionpb.TextAnnotation) *Result {
	if annotation == nil {
		return &Result{}
	}

	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)

	for _, page := range annotation.Pages {
		if page.Confidence > 0 {
			confidenceSum += page.Confidence
			confidenceCount++
		}
		if page.Property != nil {
			for _, lang := range page.Property.DetectedLanguages {
				if lang.LanguageCode != "" {
					languageSet[lang.LanguageCode] = true
				}
			}
		}
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	var languages []string
	for lang := range languageSet {
		languages = append(languages, lang)
	}

	return &Result{
		Text:          annotation.Text,
		Confidence:    avgConfidence,
		LanguageCodes: languages,
	}
}

// handleVisionError converts Vision API errors to recognition errors.
func (g *GoogleVisionRecognizer) handleVisionError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "context deadline exceeded"):
		return WrapOCRError(op, context.DeadlineExceeded, "recognition timeout")
	case strings.Contains(errStr, "context canceled"):
		return WrapOCRError(op, ErrContextCanceled, "")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") || strings.Contains(errStr, "quota"):
		return WrapOCRError(op, ErrQuotaExceeded, "Vision API quota exceeded")
	default:
		return WrapOCRError(op, ErrRecognitionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
}

// validateImage rejects empty or oversized image payloads before any API call.
func validateImage(op string, image []byte) error {
	if len(image) == 0 {
		return WrapOCRError(op, ErrEmptyImage, "")
	}
	if len(image) > MaxImageSizeBytes {
		return WrapOCRError(op, ErrImageTooLarge, fmt.Sprintf("image size: %d bytes", len(image)))
	}
	return nil
}

// Close closes the underlying Vision client.
func (g *GoogleVisionRecognizer) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
