package config

import (
	"fmt"
	"os"
	"strconv"

	"docverify/internal/logger"
	"docverify/internal/verify"
)

// Config carries environment-backed settings for the verifier CLI.
// Google Cloud credentials themselves stay in the environment variables the
// client libraries read directly (GOOGLE_APPLICATION_CREDENTIALS or
// GOOGLE_CREDENTIALS).
type Config struct {
	// OCR Configuration
	OCRBackend            string
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// Verification defaults (overridable per command invocation)
	SimilarityThreshold float64
	MaxPDFPages         int
	RenderScale         float64

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OCRBackend:            getEnv("OCR_BACKEND", "vision"),
		GoogleCloudProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	var err error
	if config.SimilarityThreshold, err = getEnvFloat("VERIFY_SIMILARITY_THRESHOLD", 0.7); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if config.MaxPDFPages, err = getEnvInt("VERIFY_MAX_PDF_PAGES", 3); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if config.RenderScale, err = getEnvFloat("VERIFY_RENDER_SCALE", 2.0); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCRBackend {
	case "vision", "documentai":
	default:
		return fmt.Errorf("OCR_BACKEND must be \"vision\" or \"documentai\", got %q", c.OCRBackend)
	}
	if c.OCRBackend == "documentai" && c.DocumentAIProcessorID == "" {
		return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required when OCR_BACKEND=documentai")
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("VERIFY_SIMILARITY_THRESHOLD must be in (0, 1], got %g", c.SimilarityThreshold)
	}
	if c.MaxPDFPages < 1 {
		return fmt.Errorf("VERIFY_MAX_PDF_PAGES must be at least 1, got %d", c.MaxPDFPages)
	}
	if c.RenderScale <= 0 {
		return fmt.Errorf("VERIFY_RENDER_SCALE must be positive, got %g", c.RenderScale)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetVerifyOptions returns pipeline options seeded from the environment.
func (c *Config) GetVerifyOptions() verify.Options {
	return verify.Options{
		MaxPDFPages:         c.MaxPDFPages,
		SimilarityThreshold: c.SimilarityThreshold,
		Scale:               c.RenderScale,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, value)
	}
	return parsed, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return parsed, nil
}
