package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cargoflow/intake/internal/api"
	"github.com/cargoflow/intake/internal/document"
	"github.com/cargoflow/intake/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract a structured shipment record from one document",
	Long: `Extract runs a single document through the full pipeline and prints the
mapped record with its quality report.

Examples:
  intake extract quote.eml
  intake extract shipment.pdf -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		comps, err := buildComponents(filepath.Dir(path))
		if err != nil {
			return err
		}

		doc := document.New(uuid.NewString(), filepath.Base(path), "", filepath.Base(path))
		out, err := comps.pipeline.Process(cmd.Context(), doc)
		if outputErr := api.Output(out); outputErr != nil {
			return outputErr
		}

		// Classified non-fatal outcomes already carry their diagnosis in the
		// printed outcome; only unclassified failures abort the command.
		if err != nil &&
			!errors.Is(err, pipeline.ErrUnsupportedDocumentType) &&
			!errors.Is(err, pipeline.ErrExtractionFailed) &&
			!errors.Is(err, pipeline.ErrValidationFailed) {
			return fmt.Errorf("processing %s: %w", args[0], err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
