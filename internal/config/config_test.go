package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// clearVerifyEnv blanks every variable Load reads so tests see a clean slate.
func clearVerifyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OCR_BACKEND", "GOOGLE_CLOUD_PROJECT", "GOOGLE_CLOUD_LOCATION",
		"DOCUMENT_AI_PROCESSOR_ID", "VERIFY_SIMILARITY_THRESHOLD",
		"VERIFY_MAX_PDF_PAGES", "VERIFY_RENDER_SCALE",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearVerifyEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "vision", cfg.OCRBackend)
	require.Equal(t, "us", cfg.GoogleCloudLocation)
	require.Equal(t, 0.7, cfg.SimilarityThreshold)
	require.Equal(t, 3, cfg.MaxPDFPages)
	require.Equal(t, 2.0, cfg.RenderScale)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "stderr", cfg.LogOutput)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearVerifyEnv(t)
	t.Setenv("OCR_BACKEND", "documentai")
	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "proc-123")
	t.Setenv("VERIFY_SIMILARITY_THRESHOLD", "0.85")
	t.Setenv("VERIFY_MAX_PDF_PAGES", "5")
	t.Setenv("VERIFY_RENDER_SCALE", "3.0")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "documentai", cfg.OCRBackend)
	require.Equal(t, "proc-123", cfg.DocumentAIProcessorID)
	require.Equal(t, 0.85, cfg.SimilarityThreshold)
	require.Equal(t, 5, cfg.MaxPDFPages)
	require.Equal(t, 3.0, cfg.RenderScale)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown backend", "OCR_BACKEND", "tesseract"},
		{"threshold not a number", "VERIFY_SIMILARITY_THRESHOLD", "high"},
		{"threshold above one", "VERIFY_SIMILARITY_THRESHOLD", "1.5"},
		{"threshold zero", "VERIFY_SIMILARITY_THRESHOLD", "0"},
		{"pages not an integer", "VERIFY_MAX_PDF_PAGES", "few"},
		{"pages below one", "VERIFY_MAX_PDF_PAGES", "0"},
		{"scale negative", "VERIFY_RENDER_SCALE", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearVerifyEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			require.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestDocumentAIBackendRequiresProcessor(t *testing.T) {
	clearVerifyEnv(t)
	t.Setenv("OCR_BACKEND", "documentai")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DOCUMENT_AI_PROCESSOR_ID")
}

func TestGetVerifyOptions(t *testing.T) {
	cfg := &Config{SimilarityThreshold: 0.8, MaxPDFPages: 4, RenderScale: 1.5}

	opts := cfg.GetVerifyOptions()
	require.Equal(t, 0.8, opts.SimilarityThreshold)
	require.Equal(t, 4, opts.MaxPDFPages)
	require.Equal(t, 1.5, opts.Scale)
}

func TestGetLoggerConfig(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json", LogOutput: "stdout"}

	lc := cfg.GetLoggerConfig()
	require.Equal(t, "debug", lc.Level)
	require.Equal(t, "json", lc.Format)
	require.Equal(t, "stdout", lc.Output)
}
