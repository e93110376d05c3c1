// Package strategy holds the per-document-type extraction strategies and the
// registry that dispatches between them. Dispatch predicates are pure
// functions of MIME type and filename, so selection is idempotent and
// side-effect free.
package strategy

import (
	"context"

	"github.com/cargoflow/intake/internal/document"
	"github.com/cargoflow/intake/internal/extract"
)

// Strategy priorities. Enhanced variants outrank their basic counterparts so
// they win dispatch whenever registered.
const (
	PriorityEmail         = 100
	PriorityPDFEnhanced   = 80
	PriorityPDFOptimized  = 50
	PriorityPDFSimple     = 10
	PriorityImageEnhanced = 80
	PriorityImageBasic    = 10
)

// Result is one strategy's outcome for one document. Extraction failures are
// carried as data (Success false, Confidence 0) rather than errors, so a
// failed strategy never takes down the pipeline.
type Result struct {
	Success      bool             `json:"success"`
	Extraction   *extract.Result  `json:"extraction,omitempty"`
	Confidence   float64          `json:"confidence"`
	StrategyUsed string           `json:"strategy_used"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
	Err          string           `json:"error,omitempty"`
}

// Strategy is a named, prioritized extraction implementation bound to a
// document-type predicate.
type Strategy interface {
	Name() string
	Priority() int

	// Supports must be pure: a function of doc.MIMEType and doc.Filename only.
	Supports(doc document.Document) bool

	// Extract produces exactly one Result per invocation. The returned error
	// is reserved for context cancellation; everything else is folded into
	// the Result.
	Extract(ctx context.Context, doc document.Document, data []byte) (*Result, error)
}

func succeeded(name string, res *extract.Result, meta map[string]any) *Result {
	return &Result{
		Success:      true,
		Extraction:   res,
		Confidence:   res.Confidence,
		StrategyUsed: name,
		Metadata:     meta,
	}
}

func failed(name, msg string, meta map[string]any) *Result {
	return &Result{
		Success:      false,
		Confidence:   0,
		StrategyUsed: name,
		Metadata:     meta,
		Err:          msg,
	}
}
