package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docverify/internal/logger"
	"docverify/internal/pdfrender"
)

var rasterizeCmd = &cobra.Command{
	Use:   "rasterize [pdf-file]",
	Short: "Render PDF pages to PNG images",
	Long: `Render the pages of a PDF document to PNG images, the same raster input
the verification pipeline feeds into OCR. Also reports the page count, so a
document can be sized up before committing to the full render+OCR run.`,
	Example: `  # Report the page count only
  docverify rasterize license.pdf --count-only

  # Render the first 3 pages into the current directory
  docverify rasterize license.pdf

  # Render at higher fidelity into a target directory
  docverify rasterize license.pdf --scale 3.0 --max-pages 5 -o ./pages

  # Print data URLs instead of writing files
  docverify rasterize license.pdf --data-url`,
	Args: cobra.ExactArgs(1),
	RunE: runRasterize,
}

func init() {
	rootCmd.AddCommand(rasterizeCmd)

	rasterizeCmd.Flags().StringP("output", "o", ".", "Directory for rendered page images")
	rasterizeCmd.Flags().Float64("scale", pdfrender.DefaultScale, "Render scale factor (1.0 = 72 DPI)")
	rasterizeCmd.Flags().Int("max-pages", pdfrender.DefaultMaxPages, "Maximum pages to render")
	rasterizeCmd.Flags().Bool("count-only", false, "Report the page count without rendering")
	rasterizeCmd.Flags().Bool("data-url", false, "Print pages as data:image/png;base64 URLs instead of writing files")
	rasterizeCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runRasterize(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("rasterize-cmd")

	outputDir, _ := cmd.Flags().GetString("output")
	scale, _ := cmd.Flags().GetFloat64("scale")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	countOnly, _ := cmd.Flags().GetBool("count-only")
	dataURL, _ := cmd.Flags().GetBool("data-url")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	pdfPath := args[0]
	document, fileInfo, err := readDocumentFile(pdfPath, log)
	if err != nil {
		return err
	}

	renderer := pdfrender.NewRenderer()

	pageCount, err := renderer.PageCount(document)
	if err != nil {
		return handleVerifyError(err, log)
	}
	fmt.Printf("%s: %d page(s)\n", filepath.Base(fileInfo.Name()), pageCount)

	if countOnly {
		return nil
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	log.Info().
		Str("file", pdfPath).
		Int("page_count", pageCount).
		Int("max_pages", maxPages).
		Float64("scale", scale).
		Msg("Rendering PDF pages")

	pages, err := renderer.RenderPages(ctx, document, maxPages, scale, func(done, total int) {
		log.Info().
			Int("page", done).
			Int("total", total).
			Msg("Page rendered")
	})
	if err != nil {
		return handleVerifyError(err, log)
	}

	if dataURL {
		for _, page := range pages {
			fmt.Printf("page %d: %s\n", page.Number, page.DataURL())
		}
		return nil
	}

	baseName := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	for _, page := range pages {
		outputPath := filepath.Join(outputDir, fmt.Sprintf("%s-page-%d.png", baseName, page.Number))
		if err := os.WriteFile(outputPath, page.PNG, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write page image")
			return fmt.Errorf("failed to write page image: %w", err)
		}
		fmt.Printf("wrote %s (%d bytes)\n", outputPath, len(page.PNG))
	}

	return nil
}
