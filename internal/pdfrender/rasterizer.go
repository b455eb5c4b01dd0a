// Package pdfrender converts PDF pages into raster images suitable for
// OCR input.
//
// Rendering is backed by MuPDF through go-fitz. Pages are rendered one at
// a time, in ascending page order, to bound peak memory while the OCR
// engine works through a multi-page document. Nothing is cached between
// calls; every rendering surface is transient and discarded after the
// page has been PNG-encoded.
//
// Rendering Limits:
//   - Maximum file size: 20MB (matches the synchronous OCR input limit)
//   - Default page cap: 3 pages per document
//   - Default render scale: 2.0 (144 DPI), trading fidelity for cost
package pdfrender

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"

	"docverify/internal/logger"
)

const (
	// MaxFileSizeBytes is the maximum PDF size accepted for rendering (20MB).
	MaxFileSizeBytes = 20 * 1024 * 1024

	// DefaultScale is the default render scale factor. A scale of 1.0
	// corresponds to 72 DPI.
	DefaultScale = 2.0

	// DefaultMaxPages caps how many pages of a multi-page document are
	// rendered, bounding the per-document OCR cost.
	DefaultMaxPages = 3

	baseDPI = 72.0
)

// Page is a single rendered PDF page, PNG encoded.
type Page struct {
	// Number is the 1-based page number within the source document.
	Number int

	// PNG is the encoded page image.
	PNG []byte
}

// DataURL returns the page image encoded as a data:image/png;base64 URL.
func (p *Page) DataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(p.PNG)
}

// Renderer rasterizes PDF documents with MuPDF.
type Renderer struct {
	log zerolog.Logger
}

// NewRenderer creates a new PDF renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		log: logger.WithComponent("pdfrender"),
	}
}

// PageCount reports the total page count without rendering any pages, so
// callers can decide whether to treat a document as single- or multi-page
// before committing to the more expensive render+OCR loop.
func (r *Renderer) PageCount(data []byte) (int, error) {
	const op = "PageCount"

	doc, err := r.open(op, data)
	if err != nil {
		return 0, err
	}
	defer doc.Close()

	return doc.NumPage(), nil
}

// RenderPage rasterizes a single 1-based page at the given scale factor.
// A scale of 0 or less selects DefaultScale.
func (r *Renderer) RenderPage(ctx context.Context, data []byte, page int, scale float64) (*Page, error) {
	const op = "RenderPage"

	if err := ctx.Err(); err != nil {
		return nil, WrapRenderError(op, err, "canceled before rendering")
	}

	doc, err := r.open(op, data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return r.renderPage(op, doc, page, scale)
}

// RenderPages rasterizes up to maxPages pages in ascending page order.
// The optional onPage callback is invoked after each page has been
// encoded, with the 1-based count of completed pages and the total number
// of pages being rendered.
func (r *Renderer) RenderPages(ctx context.Context, data []byte, maxPages int, scale float64, onPage func(done, total int)) ([]Page, error) {
	const op = "RenderPages"

	doc, err := r.open(op, data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	total := doc.NumPage()
	if total == 0 {
		return nil, WrapRenderError(op, ErrEmptyDocument, "")
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if total > maxPages {
		r.log.Debug().
			Int("page_count", total).
			Int("max_pages", maxPages).
			Msg("Document exceeds page cap, rendering truncated")
		total = maxPages
	}

	pages := make([]Page, 0, total)
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, WrapRenderError(op, err, fmt.Sprintf("canceled after %d of %d pages", n-1, total))
		}

		page, err := r.renderPage(op, doc, n, scale)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *page)

		if onPage != nil {
			onPage(n, total)
		}
	}

	return pages, nil
}

// renderPage rasterizes one page of an open document.
func (r *Renderer) renderPage(op string, doc *fitz.Document, page int, scale float64) (*Page, error) {
	if page < 1 || page > doc.NumPage() {
		return nil, WrapRenderError(op, ErrPageOutOfRange, fmt.Sprintf("page %d of %d", page, doc.NumPage()))
	}
	if scale <= 0 {
		scale = DefaultScale
	}

	// go-fitz pages are 0-based.
	img, err := doc.ImageDPI(page-1, baseDPI*scale)
	if err != nil {
		return nil, WrapRenderError(op, ErrInvalidPDF, fmt.Sprintf("failed to render page %d: %v", page, err))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, WrapRenderError(op, err, fmt.Sprintf("failed to encode page %d", page))
	}

	return &Page{Number: page, PNG: buf.Bytes()}, nil
}

// open validates the raw input and parses it with MuPDF.
func (r *Renderer) open(op string, data []byte) (*fitz.Document, error) {
	if len(data) == 0 {
		return nil, WrapRenderError(op, ErrInvalidPDF, "empty input")
	}
	if len(data) > MaxFileSizeBytes {
		return nil, WrapRenderError(op, ErrPDFTooLarge, fmt.Sprintf("file size: %d bytes", len(data)))
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		return nil, WrapRenderError(op, ErrInvalidPDF, "missing PDF header")
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, WrapRenderError(op, ErrInvalidPDF, fmt.Sprintf("failed to parse PDF: %v", err))
	}

	return doc, nil
}
