package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cargoflow/intake/internal/ai"
	"github.com/cargoflow/intake/internal/document"
	"github.com/cargoflow/intake/internal/extract"
	"github.com/cargoflow/intake/internal/ocr"
	"github.com/cargoflow/intake/internal/pdfinfo"
)

// maxOCRPages bounds subprocess cost for OCR-backed acquisition paths.
const maxOCRPages = 5

// PDFSimple extracts the text layer of every page in one pass. The cheapest
// PDF path, registered as the low-priority fallback.
type PDFSimple struct {
	engine *extract.Engine
	logger *slog.Logger
}

func NewPDFSimple(engine *extract.Engine, logger *slog.Logger) *PDFSimple {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFSimple{engine: engine, logger: logger.With("strategy", "pdf_simple")}
}

func (s *PDFSimple) Name() string  { return "pdf_simple" }
func (s *PDFSimple) Priority() int { return PriorityPDFSimple }

func (s *PDFSimple) Supports(doc document.Document) bool {
	return doc.IsPDF()
}

func (s *PDFSimple) Extract(ctx context.Context, doc document.Document, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, pages, err := pdfinfo.ExtractText(data)
	if err != nil {
		return failed(s.Name(), fmt.Sprintf("extracting text: %v", err), nil), nil
	}
	if strings.TrimSpace(text) == "" {
		return failed(s.Name(), "document has no text layer", map[string]any{"pages": pages}), nil
	}

	res := s.engine.Extract(extract.Input{Text: text})
	return succeeded(s.Name(), res, map[string]any{"pages": pages}), nil
}

// PDFOptimized samples the document first and routes acquisition through the
// cheapest method that fits its characteristics.
type PDFOptimized struct {
	engine *extract.Engine
	ocr    *ocr.Engine
	logger *slog.Logger

	// preferStreaming is consulted per document; the pipeline points it at
	// its memory-pressure signal. Nil means no bias.
	preferStreaming func() bool
}

func NewPDFOptimized(engine *extract.Engine, ocrEngine *ocr.Engine, preferStreaming func() bool, logger *slog.Logger) *PDFOptimized {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFOptimized{
		engine:          engine,
		ocr:             ocrEngine,
		logger:          logger.With("strategy", "pdf_optimized"),
		preferStreaming: preferStreaming,
	}
}

func (s *PDFOptimized) Name() string  { return "pdf_optimized" }
func (s *PDFOptimized) Priority() int { return PriorityPDFOptimized }

func (s *PDFOptimized) Supports(doc document.Document) bool {
	return doc.IsPDF()
}

func (s *PDFOptimized) Extract(ctx context.Context, doc document.Document, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, method, ch, err := s.acquire(ctx, doc, data)
	meta := map[string]any{
		"method":          string(method),
		"characteristics": ch,
	}
	if err != nil {
		return failed(s.Name(), err.Error(), meta), nil
	}
	if strings.TrimSpace(text) == "" {
		return failed(s.Name(), "no text acquired", meta), nil
	}

	res := s.engine.Extract(extract.Input{Text: text})
	return succeeded(s.Name(), res, meta), nil
}

// acquire picks the acquisition method for data and runs it.
func (s *PDFOptimized) acquire(ctx context.Context, doc document.Document, data []byte) (string, pdfinfo.Method, pdfinfo.Characteristics, error) {
	ch := pdfinfo.Analyze(data, s.logger)

	opts := pdfinfo.SelectorOptions{}
	if s.preferStreaming != nil {
		opts.PreferStreaming = s.preferStreaming()
	}
	method := pdfinfo.SelectMethod(ch, opts)

	s.logger.Debug("selected pdf method",
		"document_id", doc.ID,
		"method", method,
		"pages", ch.PageCount,
		"size", ch.Size,
		"complexity", ch.Complexity,
	)

	var (
		text string
		err  error
	)
	switch method {
	case pdfinfo.MethodOCRDirect:
		text, err = s.ocrPages(ctx, data, ch.PageCount)
	case pdfinfo.MethodStreaming:
		text, err = streamText(data)
	case pdfinfo.MethodHybrid:
		text, err = s.hybridText(ctx, data)
	default: // MethodParser
		text, _, err = pdfinfo.ExtractText(data)
	}
	return text, method, ch, err
}

// ocrPages rasterizes and recognizes pages one at a time, bounded by
// maxOCRPages.
func (s *PDFOptimized) ocrPages(ctx context.Context, data []byte, pageCount int) (string, error) {
	pages := pageCount
	if pages > maxOCRPages {
		s.logger.Warn("capping ocr pages", "pages", pageCount, "cap", maxOCRPages)
		pages = maxOCRPages
	}
	if pages < 1 {
		pages = 1
	}

	var sb strings.Builder
	for page := 1; page <= pages; page++ {
		text, err := s.ocr.RecognizePDFPage(ctx, data, page)
		if err != nil {
			if page == 1 {
				return "", fmt.Errorf("ocr page %d: %w", page, err)
			}
			s.logger.Warn("ocr page failed, keeping earlier pages", "page", page, "error", err)
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// hybridText takes the text layer where present and OCRs pages that have
// none, bounded by maxOCRPages.
func (s *PDFOptimized) hybridText(ctx context.Context, data []byte) (string, error) {
	var sb strings.Builder
	ocrUsed := 0
	_, err := pdfinfo.WalkPages(data, func(page int, text string) error {
		if strings.TrimSpace(text) == "" && ocrUsed < maxOCRPages {
			ocrUsed++
			recognized, ocrErr := s.ocr.RecognizePDFPage(ctx, data, page)
			if ocrErr != nil {
				s.logger.Warn("hybrid ocr failed for page", "page", page, "error", ocrErr)
			} else {
				text = recognized
			}
		}
		if strings.TrimSpace(text) != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(text)
		}
		return ctx.Err()
	})
	return sb.String(), err
}

// streamText walks pages sequentially so only one page's content stream is
// resident at a time.
func streamText(data []byte) (string, error) {
	var sb strings.Builder
	_, err := pdfinfo.WalkPages(data, func(page int, text string) error {
		if text == "" {
			return nil
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
		return nil
	})
	return sb.String(), err
}

// PDFEnhanced layers an AI structured pass over optimized acquisition. The
// AI call is additive: on any failure the strategy degrades to pattern-only
// extraction instead of propagating the error.
type PDFEnhanced struct {
	base *PDFOptimized
	ai   ai.Extractor

	logger *slog.Logger
}

func NewPDFEnhanced(base *PDFOptimized, extractor ai.Extractor, logger *slog.Logger) *PDFEnhanced {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFEnhanced{base: base, ai: extractor, logger: logger.With("strategy", "pdf_enhanced")}
}

func (s *PDFEnhanced) Name() string  { return "pdf_enhanced" }
func (s *PDFEnhanced) Priority() int { return PriorityPDFEnhanced }

func (s *PDFEnhanced) Supports(doc document.Document) bool {
	return doc.IsPDF()
}

func (s *PDFEnhanced) Extract(ctx context.Context, doc document.Document, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, method, ch, err := s.base.acquire(ctx, doc, data)
	meta := map[string]any{
		"method":          string(method),
		"characteristics": ch,
		"ai_used":         false,
	}
	if err != nil {
		return failed(s.Name(), err.Error(), meta), nil
	}
	if strings.TrimSpace(text) == "" {
		return failed(s.Name(), "no text acquired", meta), nil
	}

	in := extract.Input{Text: text}
	if enhanced, aiErr := s.ai.Extract(ctx, text, ai.ShipmentSchema(), ai.Options{}); aiErr != nil {
		s.logger.Warn("ai enhancement failed, degrading to pattern extraction",
			"document_id", doc.ID, "error", aiErr)
	} else {
		in.Structured = enhanced.Data
		meta["ai_used"] = true
	}

	res := s.base.engine.Extract(in)
	return succeeded(s.Name(), res, meta), nil
}

var (
	_ Strategy = (*PDFSimple)(nil)
	_ Strategy = (*PDFOptimized)(nil)
	_ Strategy = (*PDFEnhanced)(nil)
)
