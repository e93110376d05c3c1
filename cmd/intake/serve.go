package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cargoflow/intake/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the intake server",
	Long: `Start the intake HTTP server.

The server provides:
  - GET  /health             - Server health and active mapping version
  - POST /documents/extract  - Multipart document upload, full pipeline run
  - POST /mappings/reload    - Reload the mapping configuration

Examples:
  intake serve                    # Start on default port 8080
  intake serve --port 3000        # Start on custom port
  intake serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		comps, err := buildComponents("")
		if err != nil {
			return err
		}
		defer comps.mappings.Close()

		// Uploads spool into the pipeline's store root.
		if err := os.MkdirAll(comps.cfg.Storage.Dir, 0o755); err != nil {
			return err
		}

		srv, err := server.New(server.Config{
			Host:      serveHost,
			Port:      servePort,
			UploadDir: comps.cfg.Storage.Dir,
			Pipeline:  comps.pipeline,
			Mappings:  comps.mappings,
			Logger:    comps.logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
