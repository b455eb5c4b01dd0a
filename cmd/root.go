package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docverify/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "docverify",
	Short: "docverify - OCR-based document field verification",
	Long: `docverify checks that a scanned identity or license document (PNG, JPEG,
or PDF) actually contains a set of expected field values: names, a
registration number, a date, a facility name.

The pipeline rasterizes PDF pages, extracts text with OCR (English, French,
and Arabic loaded simultaneously), normalizes it, and fuzzy-matches each
expected field, tolerating character-level recognition noise. Each field is
reported with a pass/fail and similarity score alongside an overall
percentage; verification succeeds only when every checked field is found.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("docverify executed")

		fmt.Println("docverify - document field verification")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
