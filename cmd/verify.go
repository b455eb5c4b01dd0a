package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docverify/internal/config"
	"docverify/internal/logger"
	"docverify/internal/ocr"
	"docverify/internal/pdfrender"
	"docverify/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [document]",
	Short: "Verify that a document contains the expected field values",
	Long: `Run the full verification pipeline over a document image (PNG/JPEG) or
PDF: rasterize PDF pages, recognize text, normalize it, and fuzzy-match
every expected field supplied through flags.

Verification succeeds only when every supplied field is found. A partial
match is reported through the overall score but never passes automatically.
With no field flags at all, the command still extracts and reports the text
so the document can be inspected manually, and the result is a failure.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Verify a practitioner license scan
  docverify verify license.pdf --last-name Benali --registration-number 12345

  # Verify a clinic registration photo, with a stricter threshold
  docverify verify clinic.jpg --facility-name "Clinique El Amal" --threshold 0.8

  # Full result as JSON, including raw and normalized text
  docverify verify license.pdf --last-name Benali --json -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

// verifyOutput is the JSON output structure for the verify command.
type verifyOutput struct {
	*verify.Result
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("first-name", "", "Expected first name")
	verifyCmd.Flags().String("last-name", "", "Expected last name")
	verifyCmd.Flags().String("full-name", "", "Expected full name")
	verifyCmd.Flags().String("registration-number", "", "Expected registration number (matched on digits)")
	verifyCmd.Flags().String("date", "", "Expected date (matched on digits)")
	verifyCmd.Flags().String("facility-name", "", "Expected facility name")

	verifyCmd.Flags().Float64("threshold", 0, "Minimum token similarity for a text field match (default from env, 0.7)")
	verifyCmd.Flags().Float64("scale", 0, "PDF render scale factor (default from env, 2.0)")
	verifyCmd.Flags().Int("max-pages", 0, "Maximum PDF pages to process (default from env, 3)")
	verifyCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	verifyCmd.Flags().Bool("json", false, "Output as JSON")
	verifyCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runVerify(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("verify-cmd")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	expected := expectedFieldsFromFlags(cmd)
	cfg := loadConfig(log)
	opts := verifyOptionsFromFlags(cmd, cfg)

	documentPath := args[0]
	document, fileInfo, err := readDocumentFile(documentPath, log)
	if err != nil {
		return err
	}

	log.Info().
		Str("file", documentPath).
		Int64("size", fileInfo.Size()).
		Float64("threshold", opts.SimilarityThreshold).
		Int("max_pages", opts.MaxPDFPages).
		Msg("Starting document verification")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	recognizer, err := createRecognizer(ctx, cfg.OCRBackend, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := recognizer.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close recognizer")
		}
	}()

	verifier := verify.New(recognizer, nil, opts)
	result, err := verifier.Verify(ctx, document, expected, logProgress(log))
	if err != nil {
		return handleVerifyError(err, log)
	}

	log.Info().
		Bool("success", result.Success).
		Float64("overall_score", result.OverallScore).
		Int64("processing_ms", result.ProcessingTime.Milliseconds()).
		Msg("Verification completed")

	return outputVerifyResult(result, fileInfo, outputPath, jsonOutput, log)
}

// expectedFieldsFromFlags collects the per-field expectations.
func expectedFieldsFromFlags(cmd *cobra.Command) verify.ExpectedFields {
	get := func(name string) string {
		value, _ := cmd.Flags().GetString(name)
		return strings.TrimSpace(value)
	}
	return verify.ExpectedFields{
		FirstName:          get("first-name"),
		LastName:           get("last-name"),
		FullName:           get("full-name"),
		RegistrationNumber: get("registration-number"),
		Date:               get("date"),
		FacilityName:       get("facility-name"),
	}
}

// loadConfig loads the environment-backed configuration, falling back to
// built-in defaults when the environment is invalid.
func loadConfig(log zerolog.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Could not load configuration, using built-in defaults")
		return &config.Config{OCRBackend: "vision"}
	}
	return cfg
}

// verifyOptionsFromFlags merges environment defaults with explicit flags;
// a flag set on the command line wins over the environment.
func verifyOptionsFromFlags(cmd *cobra.Command, cfg *config.Config) verify.Options {
	opts := cfg.GetVerifyOptions()

	if cmd.Flags().Changed("threshold") {
		opts.SimilarityThreshold, _ = cmd.Flags().GetFloat64("threshold")
	}
	if cmd.Flags().Changed("scale") {
		opts.Scale, _ = cmd.Flags().GetFloat64("scale")
	}
	if cmd.Flags().Changed("max-pages") {
		opts.MaxPDFPages, _ = cmd.Flags().GetInt("max-pages")
	}
	return opts
}

// logProgress forwards pipeline progress updates to the structured log.
func logProgress(log zerolog.Logger) verify.ProgressFunc {
	return func(p verify.Progress) {
		log.Info().
			Str("stage", string(p.Stage)).
			Int("percent", p.Percent).
			Msg(p.Message)
	}
}

// readDocumentFile validates and reads the document to verify.
func readDocumentFile(path string, log zerolog.Logger) ([]byte, os.FileInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", path).Msg("Document file not found")
			return nil, nil, fmt.Errorf("document file not found: %s", path)
		}
		if os.IsPermission(err) {
			log.Error().Str("file", path).Msg("Permission denied accessing document file")
			return nil, nil, fmt.Errorf("permission denied accessing document file: %s", path)
		}
		return nil, nil, fmt.Errorf("error accessing document file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().Str("file", path).Msg("Path is not a regular file")
		return nil, nil, fmt.Errorf("path is not a regular file: %s", path)
	}
	if fileInfo.Size() == 0 {
		log.Error().Str("file", path).Msg("Document file is empty")
		return nil, nil, fmt.Errorf("document file is empty: %s", path)
	}
	if fileInfo.Size() > pdfrender.MaxFileSizeBytes {
		log.Error().
			Str("file", path).
			Int64("size", fileInfo.Size()).
			Msg("Document file exceeds maximum size limit")
		return nil, nil, fmt.Errorf("document file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), pdfrender.MaxFileSizeBytes)
	}

	document, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Failed to read document file")
		return nil, nil, fmt.Errorf("failed to read document file: %w", err)
	}
	return document, fileInfo, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling processing")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// createRecognizer creates the configured OCR backend.
func createRecognizer(ctx context.Context, backend string, log zerolog.Logger) (ocr.Recognizer, error) {
	hasCredentials := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" || os.Getenv("GOOGLE_CREDENTIALS") != ""

	if !hasCredentials {
		log.Error().Msg("Google Cloud credentials not configured")
		return nil, fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n" +
			"1. Export GOOGLE_APPLICATION_CREDENTIALS with path to service account JSON:\n" +
			"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n" +
			"2. Export GOOGLE_CREDENTIALS with inline JSON:\n" +
			"   export GOOGLE_CREDENTIALS='{\"type\":\"service_account\",...}'\n\n" +
			"3. Check that your .env file contains the credentials variables")
	}

	recognizer, err := ocr.NewRecognizerForBackend(ctx, backend)
	if err != nil {
		if errors.Is(err, ocr.ErrMissingCredentials) {
			log.Error().Err(err).Msg("Google Cloud credentials validation failed")
			return nil, fmt.Errorf("Google Cloud credentials validation failed. Please verify:\n\n"+
				"1. Credentials file exists and is readable\n"+
				"2. JSON format is valid\n"+
				"3. Service account has proper permissions\n\n"+
				"Original error: %w", err)
		}
		log.Error().Err(err).Msg("Failed to create recognizer")
		return nil, fmt.Errorf("failed to create recognizer: %w", err)
	}

	log.Debug().Msg("Recognizer created successfully")
	return recognizer, nil
}

// handleVerifyError provides user-friendly error messages for pipeline failures
func handleVerifyError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Verification failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("verification timed out. Try increasing --timeout or processing a smaller file")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("verification was canceled")
	case errors.Is(err, pdfrender.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file. Please check the file integrity and retry")
	case errors.Is(err, pdfrender.ErrPDFTooLarge):
		return fmt.Errorf("PDF file is too large (maximum 20MB). Try compressing or splitting the file")
	case errors.Is(err, ocr.ErrImageTooLarge):
		return fmt.Errorf("image is too large (maximum 20MB). Try scaling it down")
	case errors.Is(err, ocr.ErrQuotaExceeded):
		return fmt.Errorf("recognition API quota exceeded. Check your project quotas in the Google Cloud Console")
	case errors.Is(err, ocr.ErrRecognitionFailed):
		return fmt.Errorf("text recognition failed. This may be due to network issues, API quota limits, or service unavailability: %w", err)
	default:
		return fmt.Errorf("verification failed: %w", err)
	}
}

// outputVerifyResult formats and writes the verification outcome.
func outputVerifyResult(result *verify.Result, fileInfo os.FileInfo, outputPath string, jsonOutput bool, log zerolog.Logger) error {
	var outputData []byte
	var err error

	if jsonOutput {
		outputData, err = json.MarshalIndent(verifyOutput{
			Result:   result,
			FileName: filepath.Base(fileInfo.Name()),
			FileSize: fileInfo.Size(),
		}, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal JSON output")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	} else {
		outputData = []byte(formatVerifyResult(result, fileInfo))
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
			Msg("Verification result written to file")
		return nil
	}

	if _, err := os.Stdout.Write(outputData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// formatVerifyResult renders a human-readable verification summary.
func formatVerifyResult(result *verify.Result, fileInfo os.FileInfo) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== Verification of %s ===\n", filepath.Base(fileInfo.Name())))
	if result.Success {
		b.WriteString("Outcome: VERIFIED\n")
	} else if len(result.Fields) == 0 {
		b.WriteString("Outcome: NOT VERIFIED (no fields to check)\n")
	} else if result.OverallScore > 0 {
		b.WriteString("Outcome: PARTIAL MATCH (manual review required)\n")
	} else {
		b.WriteString("Outcome: NOT VERIFIED\n")
	}
	b.WriteString(fmt.Sprintf("Overall score: %.0f%%\n", result.OverallScore))
	b.WriteString(fmt.Sprintf("Processing time: %d ms\n", result.ProcessingTime.Milliseconds()))

	if len(result.Fields) > 0 {
		b.WriteString("\nFields:\n")
		names := make([]string, 0, len(result.Fields))
		for name := range result.Fields {
			names = append(names, string(name))
		}
		sort.Strings(names)
		for _, name := range names {
			fv := result.Fields[verify.FieldName(name)]
			status := "NOT FOUND"
			if fv.Found {
				status = "found"
			}
			b.WriteString(fmt.Sprintf("  %-20s %-9s similarity %.2f  expected %q", name, status, fv.Similarity, fv.ExpectedValue))
			if fv.MatchedWord != "" {
				b.WriteString(fmt.Sprintf("  matched %q", fv.MatchedWord))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n=== Extracted Text ===\n\n")
	b.WriteString(result.RawText)
	b.WriteString("\n")

	return b.String()
}
