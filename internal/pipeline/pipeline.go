// Package pipeline orchestrates one document's run: dispatch a strategy,
// fetch the bytes, extract, map, and score. Runs are independent and
// individually retryable; the only cross-document state is a soft memory
// signal that biases the next PDF toward streaming.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/cargoflow/intake/internal/document"
	"github.com/cargoflow/intake/internal/mapping"
	"github.com/cargoflow/intake/internal/quality"
	"github.com/cargoflow/intake/internal/storage"
	"github.com/cargoflow/intake/internal/strategy"
)

// DefaultMemoryBudget is the soft per-extraction budget. Exceeding it only
// logs and biases the next document's method selection; the current run
// always completes.
const DefaultMemoryBudget = 64 << 20 // 64 MB

// Outcome is everything one document run produced, including partial results
// from failed runs.
type Outcome struct {
	Document document.Document `json:"document"`
	Strategy string            `json:"strategy,omitempty"`
	Result   *strategy.Result  `json:"result,omitempty"`
	Record   *mapping.Record   `json:"record,omitempty"`
	Report   quality.Report    `json:"report"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Options tune a pipeline.
type Options struct {
	// MemoryBudget is the soft per-extraction byte budget; zero means the
	// default.
	MemoryBudget int64
	// ReviewScore is passed through to quality scoring.
	ReviewScore int
}

// Pipeline wires the stages together. Safe for concurrent Process calls.
type Pipeline struct {
	store    storage.Store
	registry *strategy.Registry
	mapper   *mapping.Engine
	logger   *slog.Logger

	memoryBudget int64
	reviewScore  int

	// streamNext is set when a document blows the memory budget and consumed
	// by the next document's PDF method selection.
	streamNext atomic.Bool
}

// New creates a pipeline.
func New(store storage.Store, registry *strategy.Registry, mapper *mapping.Engine, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MemoryBudget <= 0 {
		opts.MemoryBudget = DefaultMemoryBudget
	}
	return &Pipeline{
		store:        store,
		registry:     registry,
		mapper:       mapper,
		logger:       logger.With("component", "pipeline"),
		memoryBudget: opts.MemoryBudget,
		reviewScore:  opts.ReviewScore,
	}
}

// PreferStreaming reports whether the previous document exceeded the memory
// budget. Reading it consumes the signal, so the bias applies to exactly one
// document. Strategies take this as their selection hint.
func (p *Pipeline) PreferStreaming() bool {
	return p.streamNext.Swap(false)
}

// Process runs one document through dispatch, acquisition, extraction,
// mapping, and scoring. Classified failures come back as wrapped sentinel
// errors alongside whatever partial Outcome exists.
func (p *Pipeline) Process(ctx context.Context, doc document.Document) (*Outcome, error) {
	out := &Outcome{Document: doc}

	strat, ok := p.registry.GetStrategy(doc)
	if !ok {
		p.logger.Warn("no strategy for document",
			"document_id", doc.ID, "mime_type", doc.MIMEType)
		return out, fmt.Errorf("%w: %s (%s)", ErrUnsupportedDocumentType, doc.MIMEType, doc.Filename)
	}
	out.Strategy = strat.Name()

	data, err := p.store.Get(ctx, doc.StorageLocation)
	if err != nil {
		return out, fmt.Errorf("%w: fetching %s: %v", ErrSourceUnavailable, doc.StorageLocation, err)
	}
	p.checkMemoryBudget(doc, int64(len(data)))

	res, err := strat.Extract(ctx, doc, data)
	if err != nil {
		// Only context cancellation crosses the strategy boundary as an error.
		return out, err
	}
	out.Result = res
	if !res.Success {
		p.logger.Warn("extraction failed",
			"document_id", doc.ID, "strategy", strat.Name(), "error", res.Err)
		return out, fmt.Errorf("%w: document %s, strategy %s: %s",
			ErrExtractionFailed, doc.ID, strat.Name(), res.Err)
	}

	record, warnings := p.mapper.MapFields(res.Extraction.Tree())
	out.Record = record
	out.Warnings = warnings
	for _, w := range warnings {
		p.logger.Warn("mapping warning",
			"document_id", doc.ID, "strategy", strat.Name(), "warning", w)
	}

	out.Report = quality.Assess(res.Confidence, record.Fields, warnings, quality.Thresholds{
		ReviewScore: p.reviewScore,
	})

	p.logger.Info("document processed",
		"document_id", doc.ID,
		"strategy", strat.Name(),
		"confidence", res.Confidence,
		"score", out.Report.Score,
		"needs_review", out.Report.NeedsReview,
	)

	if len(out.Report.Errors) > 0 {
		return out, fmt.Errorf("%w: document %s missing %d required field(s)",
			ErrValidationFailed, doc.ID, len(out.Report.Errors))
	}
	return out, nil
}

// checkMemoryBudget enforces the soft budget: a breach warns and flags the
// next document, never aborts this one.
func (p *Pipeline) checkMemoryBudget(doc document.Document, size int64) {
	if size <= p.memoryBudget {
		return
	}
	p.logger.Warn("document exceeds soft memory budget, next document prefers streaming",
		"document_id", doc.ID, "size", size, "budget", p.memoryBudget)
	p.streamNext.Store(true)
}
