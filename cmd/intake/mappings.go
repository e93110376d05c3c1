package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cargoflow/intake/internal/api"
	"github.com/cargoflow/intake/internal/mapping"
)

var mappingsServerURL string

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Inspect and manage the field mapping configuration",
}

var mappingsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a mapping configuration file without starting the pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		cfg, err := mapping.ParseConfig(raw)
		if err != nil {
			return fmt.Errorf("invalid mapping config: %w", err)
		}
		fmt.Printf("OK: version %s, %d field mappings, %d validation rules\n",
			cfg.Version, len(cfg.FieldMappings), len(cfg.ValidationRules))
		return nil
	},
}

var mappingsReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask a running server to reload its mapping configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := api.NewClient(mappingsServerURL)
		var resp struct {
			Status         string `json:"status"`
			MappingVersion string `json:"mapping_version"`
		}
		if err := client.Post(cmd.Context(), "/mappings/reload", nil, &resp); err != nil {
			return err
		}
		return api.Output(resp)
	},
}

func init() {
	mappingsReloadCmd.Flags().StringVar(
		&mappingsServerURL, "server", "http://127.0.0.1:8080", "server URL",
	)

	mappingsCmd.AddCommand(mappingsValidateCmd)
	mappingsCmd.AddCommand(mappingsReloadCmd)
	rootCmd.AddCommand(mappingsCmd)
}
