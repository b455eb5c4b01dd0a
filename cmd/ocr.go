package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docverify/internal/logger"
	"docverify/internal/textnorm"
	"docverify/internal/verify"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [document]",
	Short: "Extract text from a document image or PDF",
	Long: `Extract all text from a document image (PNG/JPEG) or PDF without
checking any fields. PDF pages are rasterized and recognized one at a time,
in page order, and the page texts are concatenated.

Useful for inspecting what the verifier would see before deciding which
expected fields to check.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Extract text from a license scan to stdout
  docverify ocr license.pdf

  # Save normalized text to file
  docverify ocr license.pdf --cleaned -o extracted.txt

  # Output as JSON with processing metadata
  docverify ocr license.jpg --json -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

// ocrOutput is the JSON output structure for the ocr command.
type ocrOutput struct {
	Text               string    `json:"text"`
	CleanedText        string    `json:"cleaned_text"`
	FileName           string    `json:"file_name"`
	FileSize           int64     `json:"file_size"`
	ProcessedAt        time.Time `json:"processed_at"`
	ProcessingDuration string    `json:"processing_duration"`
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	ocrCmd.Flags().Bool("cleaned", false, "Output normalized text instead of raw OCR output")
	ocrCmd.Flags().Bool("json", false, "Output as JSON")
	ocrCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
	ocrCmd.Flags().Float64("scale", 0, "PDF render scale factor (default from env, 2.0)")
	ocrCmd.Flags().Int("max-pages", 0, "Maximum PDF pages to process (default from env, 3)")
}

func runOCR(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr-cmd")

	outputPath, _ := cmd.Flags().GetString("output")
	cleaned, _ := cmd.Flags().GetBool("cleaned")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	documentPath := args[0]
	document, fileInfo, err := readDocumentFile(documentPath, log)
	if err != nil {
		return err
	}

	log.Info().
		Str("file", documentPath).
		Int64("size", fileInfo.Size()).
		Msg("Starting text extraction")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	cfg := loadConfig(log)

	recognizer, err := createRecognizer(ctx, cfg.OCRBackend, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := recognizer.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close recognizer")
		}
	}()

	opts := cfg.GetVerifyOptions()
	if cmd.Flags().Changed("scale") {
		opts.Scale, _ = cmd.Flags().GetFloat64("scale")
	}
	if cmd.Flags().Changed("max-pages") {
		opts.MaxPDFPages, _ = cmd.Flags().GetInt("max-pages")
	}

	startTime := time.Now()
	verifier := verify.New(recognizer, nil, opts)
	text, err := verifier.ExtractText(ctx, document, logProgress(log))
	if err != nil {
		return handleVerifyError(err, log)
	}
	processingDuration := time.Since(startTime)

	log.Info().
		Dur("duration", processingDuration).
		Int("text_length", len(text)).
		Msg("Text extraction completed")

	var outputData []byte
	if jsonOutput {
		outputData, err = json.MarshalIndent(ocrOutput{
			Text:               text,
			CleanedText:        textnorm.CleanText(text),
			FileName:           filepath.Base(fileInfo.Name()),
			FileSize:           fileInfo.Size(),
			ProcessedAt:        time.Now(),
			ProcessingDuration: processingDuration.String(),
		}, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal JSON output")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	} else {
		if cleaned {
			text = textnorm.CleanText(text)
		}
		outputData = []byte(text)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(outputData)).
			Msg("Extracted text written to file")
		return nil
	}

	if _, err := os.Stdout.Write(outputData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !jsonOutput && !strings.HasSuffix(string(outputData), "\n") {
		fmt.Println()
	}
	return nil
}
