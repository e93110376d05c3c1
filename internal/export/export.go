// Package export renders batches of mapped records as an XLSX workbook, the
// hand-off artifact for the downstream CRM team.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cargoflow/intake/internal/pipeline"
)

// Column order for the workbook. Target-field names minus the prefix noise,
// plus run metadata on the right.
var columns = []struct {
	header string
	field  string
}{
	{"Client Name", "client_name"},
	{"Client Type", "client_type"},
	{"Email", "client_email"},
	{"Phone", "client_phone"},
	{"Address", "client_address"},
	{"Origin Port", "origin_port"},
	{"Destination Port", "destination_port"},
	{"Mode", "transport_mode"},
	{"Incoterm", "incoterm"},
	{"Cargo", "cargo_description"},
	{"Category", "cargo_category"},
	{"Weight (kg)", "cargo_weight_kg"},
	{"Dimensions", "cargo_dimensions"},
	{"VIN", "vehicle_vin"},
	{"Year", "vehicle_year"},
	{"Price", "price_amount"},
	{"Currency", "price_currency"},
	{"Pickup", "pickup_date"},
	{"Delivery", "delivery_date"},
}

// Writer produces XLSX bytes from pipeline outcomes.
type Writer struct {
	logger *slog.Logger
}

func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// WriteXLSX renders one row per outcome. Failed outcomes still get a row so
// reviewers see what fell out of the batch and why.
func (w *Writer) WriteXLSX(outcomes []*pipeline.Outcome) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Quotations"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Drop the default sheet excelize creates.
	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	for i, c := range columns {
		write(i+1, 1, c.header)
	}
	metaBase := len(columns)
	for i, h := range []string{"Document", "Strategy", "Score", "Needs Review", "Warnings"} {
		write(metaBase+i+1, 1, h)
	}

	row := 2
	for _, out := range outcomes {
		if out == nil {
			continue
		}
		var fields map[string]any
		if out.Record != nil {
			fields = out.Record.Fields
		}
		for i, c := range columns {
			if v, ok := fields[c.field]; ok {
				write(i+1, row, v)
			}
		}
		write(metaBase+1, row, out.Document.Filename)
		write(metaBase+2, row, out.Strategy)
		write(metaBase+3, row, out.Report.Score)
		write(metaBase+4, row, out.Report.NeedsReview)
		write(metaBase+5, row, warningSummary(out))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "C", "C", 28)
	_ = f.SetColWidth(sheet, "E", "E", 40)
	_ = f.SetColWidth(sheet, "J", "J", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	w.logger.Info("batch exported",
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func warningSummary(out *pipeline.Outcome) string {
	var parts []string
	if out.Result != nil && out.Result.Err != "" {
		parts = append(parts, out.Result.Err)
	}
	for _, issue := range out.Report.Errors {
		parts = append(parts, issue.Message)
	}
	parts = append(parts, out.Warnings...)
	return truncate(strings.Join(parts, "; "), 200)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
