package pdfrender

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageCountRejectsEmptyInput(t *testing.T) {
	r := NewRenderer()

	_, err := r.PageCount(nil)
	require.ErrorIs(t, err, ErrInvalidPDF)

	_, err = r.PageCount([]byte{})
	require.ErrorIs(t, err, ErrInvalidPDF)
}

func TestPageCountRejectsMissingHeader(t *testing.T) {
	r := NewRenderer()

	for _, data := range [][]byte{
		[]byte("not a pdf at all"),
		[]byte{0x89, 'P', 'N', 'G'}, // PNG magic, wrong format
		[]byte("%PD"),               // truncated header
	} {
		_, err := r.PageCount(data)
		require.ErrorIs(t, err, ErrInvalidPDF, "input %q", data)
	}
}

func TestPageCountRejectsOversizedInput(t *testing.T) {
	r := NewRenderer()

	data := make([]byte, MaxFileSizeBytes+1)
	copy(data, "%PDF-1.4")

	_, err := r.PageCount(data)
	require.ErrorIs(t, err, ErrPDFTooLarge)
}

func TestRenderPageCanceledContext(t *testing.T) {
	r := NewRenderer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RenderPage(ctx, []byte("%PDF-1.4 stub"), 1, DefaultScale)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRenderPagesRejectsInvalidInput(t *testing.T) {
	r := NewRenderer()

	_, err := r.RenderPages(context.Background(), []byte("garbage"), DefaultMaxPages, DefaultScale, nil)
	require.ErrorIs(t, err, ErrInvalidPDF)
}

func TestPageDataURL(t *testing.T) {
	p := &Page{Number: 1, PNG: []byte{0x89, 0x50, 0x4e, 0x47}}

	url := p.DataURL()
	require.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(p.PNG), url)
}

func TestRenderErrorFormatting(t *testing.T) {
	err := NewRenderError("RenderPage", ErrPageOutOfRange, "page 7 of 3")
	require.Contains(t, err.Error(), "RenderPage")
	require.Contains(t, err.Error(), "page 7 of 3")
	require.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestWrapRenderError(t *testing.T) {
	require.NoError(t, WrapRenderError("PageCount", nil, ""))

	base := errors.New("mupdf exploded")
	wrapped := WrapRenderError("PageCount", base, "")
	require.ErrorIs(t, wrapped, base)

	var renderErr *RenderError
	require.ErrorAs(t, wrapped, &renderErr)

	// Double wrapping keeps the original operation context.
	require.Same(t, wrapped, WrapRenderError("RenderPages", wrapped, ""))
}
