package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cargoflow/intake/internal/document"
	"github.com/cargoflow/intake/internal/export"
	"github.com/cargoflow/intake/internal/pipeline"
)

var (
	batchOut     string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Process every supported document in a directory",
	Long: `Batch runs each supported document in the directory through the pipeline
concurrently and writes an XLSX summary for the CRM team.

Per-document runs are independent: a failed document gets a review row in the
workbook instead of stopping the batch.

Examples:
  intake batch ./inbox
  intake batch ./inbox --out quotes.xlsx --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		comps, err := buildComponents(dir)
		if err != nil {
			return err
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("reading %s: %w", dir, err)
		}

		var docs []document.Document
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if document.DetectMIME(name) == "" {
				comps.logger.Warn("skipping unsupported file", "file", name)
				continue
			}
			docs = append(docs, document.New(uuid.NewString(), name, "", name))
		}
		sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
		if len(docs) == 0 {
			return fmt.Errorf("no supported documents in %s", dir)
		}

		workers := batchWorkers
		if workers <= 0 {
			workers = comps.cfg.Pipeline.MaxWorkers
		}
		if workers > len(docs) {
			workers = len(docs)
		}

		outcomes := make([]*pipeline.Outcome, len(docs))
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					out, procErr := comps.pipeline.Process(cmd.Context(), docs[i])
					if procErr != nil {
						comps.logger.Warn("document failed",
							"file", docs[i].Filename, "error", procErr)
					}
					outcomes[i] = out
				}
			}()
		}
		for i := range docs {
			jobs <- i
		}
		close(jobs)
		wg.Wait()

		data, err := export.NewWriter(comps.logger).WriteXLSX(outcomes)
		if err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
		outPath := batchOut
		if outPath == "" {
			outPath = filepath.Join(dir, "quotations.xlsx")
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}

		reviewed := 0
		for _, out := range outcomes {
			if out != nil && out.Report.NeedsReview {
				reviewed++
			}
		}
		fmt.Printf("Processed %d documents (%d flagged for review)\n", len(docs), reviewed)
		fmt.Printf("Workbook: %s\n", outPath)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchOut, "out", "", "output workbook path (default: <dir>/quotations.xlsx)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent workers (default: pipeline.max_workers)")

	rootCmd.AddCommand(batchCmd)
}
