package main

import (
	"github.com/spf13/cobra"

	"github.com/cargoflow/intake/internal/api"
	"github.com/cargoflow/intake/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Freight-quotation document extraction pipeline",
	Long: `Intake converts unstructured freight-quotation documents (emails, PDFs,
scanned images) into structured shipment records for the CRM.

The pipeline includes:
  - Per-document-type extraction strategies with deterministic dispatch
  - Adaptive PDF method selection (text layer, streaming, OCR, hybrid)
  - Multi-source field extraction with confidence and provenance
  - A declarative, hot-reloadable field mapping and transform engine`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.intake/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "intake home directory (default: ~/.intake)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
