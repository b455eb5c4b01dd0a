// Package verify drives the document verification pipeline: rasterize PDF
// pages when needed, recognize text, normalize it, and fuzzy-match every
// expected field against it, producing a per-field pass/fail with
// similarity scores and an aggregate result.
//
// The pipeline is stateless: each call builds its own buffers, nothing is
// cached between calls, and independent concurrent calls do not interact.
// Pages of a multi-page document are processed strictly in ascending page
// order, one at a time, so the merged text is deterministic.
//
// Success is all-or-nothing: every checked field must be found. Partial
// matches are reported through the overall score so a human reviewer can
// decide whether they are acceptable; they never pass automatically.
package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"docverify/internal/fuzzy"
	"docverify/internal/logger"
	"docverify/internal/ocr"
	"docverify/internal/pdfrender"
	"docverify/internal/textnorm"
)

// DefaultMaxPDFPages caps how many pages of a multi-page document are
// rasterized and recognized per verification call.
const DefaultMaxPDFPages = pdfrender.DefaultMaxPages

// convertingShare is the slice of the 0-100 progress range allotted to the
// PDF conversion phase; recognition fills the rest.
const convertingShare = 30

// Rasterizer converts PDF pages into OCR-ready images.
// *pdfrender.Renderer satisfies it.
type Rasterizer interface {
	// PageCount reports the total page count without rendering.
	PageCount(data []byte) (int, error)

	// RenderPages rasterizes up to maxPages pages in ascending page order,
	// invoking onPage after each rendered page.
	RenderPages(ctx context.Context, data []byte, maxPages int, scale float64, onPage func(done, total int)) ([]pdfrender.Page, error)
}

// Options control the verification pipeline. The zero value selects the defaults.
type Options struct {
	// MaxPDFPages caps multi-page documents. Default: DefaultMaxPDFPages.
	MaxPDFPages int

	// SimilarityThreshold is the minimum token similarity for a text field
	// to count as found. Default: fuzzy.DefaultThreshold.
	SimilarityThreshold float64

	// Scale is the PDF render scale factor. Default: pdfrender.DefaultScale.
	Scale float64
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.MaxPDFPages <= 0 {
		o.MaxPDFPages = DefaultMaxPDFPages
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = fuzzy.DefaultThreshold
	}
	if o.Scale <= 0 {
		o.Scale = pdfrender.DefaultScale
	}
	return o
}

// Verifier runs the end-to-end document verification pipeline.
type Verifier struct {
	recognizer ocr.Recognizer
	rasterizer Rasterizer
	opts       Options
	log        zerolog.Logger
}

// New creates a verifier. A nil rasterizer selects the MuPDF-backed
// pdfrender.Renderer.
func New(recognizer ocr.Recognizer, rasterizer Rasterizer, opts Options) *Verifier {
	if rasterizer == nil {
		rasterizer = pdfrender.NewRenderer()
	}
	return &Verifier{
		recognizer: recognizer,
		rasterizer: rasterizer,
		opts:       opts.withDefaults(),
		log:        logger.WithComponent("verify"),
	}
}

// Verify runs the full pipeline over a document (PNG/JPEG image or PDF)
// and checks every non-empty expected field against the extracted text.
//
// With zero non-empty fields the pipeline still runs OCR, so RawText and
// CleanedText are available for manual inspection, but the result reports
// Success=false and OverallScore=0: an empty expectation set is never a pass.
//
// Any rasterization or recognition failure aborts the whole call; no
// partial result is returned and no retry happens inside the pipeline.
func (v *Verifier) Verify(ctx context.Context, document []byte, expected ExpectedFields, onProgress ProgressFunc) (*Result, error) {
	const op = "Verify"
	startTime := time.Now()

	rawText, err := v.extractText(ctx, op, document, &progressReporter{fn: onProgress})
	if err != nil {
		return nil, err
	}

	cleanedText := textnorm.CleanText(rawText)
	digitsText := textnorm.ExtractDigits(rawText)

	fields := expected.list()
	checked := make(map[FieldName]FieldVerification, len(fields))
	found := 0
	for _, f := range fields {
		var fv FieldVerification
		if f.numeric {
			fv = matchDigits(f.value, digitsText)
		} else {
			fv = v.matchText(f.value, cleanedText)
		}
		if fv.Found {
			found++
		}
		checked[f.name] = fv
	}

	result := &Result{
		Fields:      checked,
		RawText:     rawText,
		CleanedText: cleanedText,
		ProcessedAt: time.Now(),
	}
	if len(fields) > 0 {
		result.OverallScore = 100 * float64(found) / float64(len(fields))
		result.Success = found == len(fields)
	}
	result.ProcessingTime = time.Since(startTime)

	v.log.Info().
		Int("fields_checked", len(fields)).
		Int("fields_found", found).
		Float64("overall_score", result.OverallScore).
		Bool("success", result.Success).
		Dur("duration", result.ProcessingTime).
		Int("text_length", len(rawText)).
		Msg("Verification completed")

	return result, nil
}

// ExtractText runs only the rasterize+recognize half of the pipeline and
// returns the raw concatenated text. It backs the standalone text
// extraction command and is also useful for manual document inspection.
func (v *Verifier) ExtractText(ctx context.Context, document []byte, onProgress ProgressFunc) (string, error) {
	return v.extractText(ctx, "ExtractText", document, &progressReporter{fn: onProgress})
}

// extractText produces the raw OCR text for an image or PDF document.
// PDF pages are rendered first (converting phase), then recognized one at
// a time in ascending page order (recognizing phase); page texts are
// joined with a single separating space.
func (v *Verifier) extractText(ctx context.Context, op string, document []byte, rep *progressReporter) (string, error) {
	if len(document) == 0 {
		return "", WrapVerifyError(op, ErrEmptyInput, "")
	}

	if !isPDF(document) {
		rep.report(StageRecognizing, 0, "Recognizing text")
		text, err := v.recognizer.RecognizeImage(ctx, document)
		if err != nil {
			return "", WrapVerifyError(op, err, "text recognition failed")
		}
		rep.report(StageRecognizing, 100, "Recognition complete")
		return text, nil
	}

	pageCount, err := v.rasterizer.PageCount(document)
	if err != nil {
		return "", WrapVerifyError(op, err, "failed to read PDF")
	}
	v.log.Debug().
		Int("page_count", pageCount).
		Int("max_pages", v.opts.MaxPDFPages).
		Msg("Converting PDF for recognition")

	rep.report(StageConverting, 0, fmt.Sprintf("Converting document (%d pages)", pageCount))
	pages, err := v.rasterizer.RenderPages(ctx, document, v.opts.MaxPDFPages, v.opts.Scale, func(done, total int) {
		rep.report(StageConverting, done*convertingShare/total,
			fmt.Sprintf("Converted page %d of %d", done, total))
	})
	if err != nil {
		return "", WrapVerifyError(op, err, "PDF conversion failed")
	}

	var merged strings.Builder
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", WrapVerifyError(op, err, fmt.Sprintf("canceled after %d of %d pages", i, len(pages)))
		}

		rep.report(StageRecognizing, convertingShare+i*(100-convertingShare)/len(pages),
			fmt.Sprintf("Recognizing text on page %d of %d", page.Number, len(pages)))

		text, err := v.recognizer.RecognizeImage(ctx, page.PNG)
		if err != nil {
			return "", WrapVerifyError(op, err, fmt.Sprintf("text recognition failed on page %d", page.Number))
		}
		if i > 0 {
			merged.WriteByte(' ')
		}
		merged.WriteString(text)
	}

	rep.report(StageRecognizing, 100, "Recognition complete")
	return merged.String(), nil
}

// matchText fuzzy-matches a text field against the normalized text.
func (v *Verifier) matchText(expected, cleanedText string) FieldVerification {
	m := fuzzy.Contains(cleanedText, strings.ToLower(expected), v.opts.SimilarityThreshold)
	return FieldVerification{
		Found:         m.Found,
		Similarity:    m.Similarity,
		ExpectedValue: expected,
		MatchedWord:   m.MatchedWord,
	}
}

// matchDigits compares a numeric field on its digit sequence. Similarity is
// binary: edit distance is not meaningful for digit sequences extracted
// from formatted numbers and dates.
func matchDigits(expected, digitsText string) FieldVerification {
	fv := FieldVerification{ExpectedValue: expected}

	want := textnorm.ExtractDigits(expected)
	if want != "" && strings.Contains(digitsText, want) {
		fv.Found = true
		fv.Similarity = 1
		fv.MatchedWord = want
	}
	return fv
}

// isPDF sniffs the PDF header.
func isPDF(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "%PDF"
}
