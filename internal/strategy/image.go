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
)

// ImageBasic runs OCR on the image and feeds the recognized text to pattern
// extraction.
type ImageBasic struct {
	engine *extract.Engine
	ocr    *ocr.Engine
	logger *slog.Logger
}

func NewImageBasic(engine *extract.Engine, ocrEngine *ocr.Engine, logger *slog.Logger) *ImageBasic {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageBasic{engine: engine, ocr: ocrEngine, logger: logger.With("strategy", "image_basic")}
}

func (s *ImageBasic) Name() string  { return "image_basic" }
func (s *ImageBasic) Priority() int { return PriorityImageBasic }

func (s *ImageBasic) Supports(doc document.Document) bool {
	return doc.IsImage()
}

func (s *ImageBasic) Extract(ctx context.Context, doc document.Document, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := s.ocr.RecognizeImage(ctx, data)
	if err != nil {
		return failed(s.Name(), fmt.Sprintf("ocr: %v", err), nil), nil
	}
	if strings.TrimSpace(text) == "" {
		return failed(s.Name(), "ocr produced no text", nil), nil
	}

	res := s.engine.Extract(extract.Input{Text: text})
	return succeeded(s.Name(), res, map[string]any{"ocr_chars": len(text)}), nil
}

// ImageEnhanced sends the image to a multimodal model for structured
// extraction and falls back to plain OCR when the AI call fails.
type ImageEnhanced struct {
	engine *extract.Engine
	ocr    *ocr.Engine
	ai     ai.Extractor
	logger *slog.Logger
}

func NewImageEnhanced(engine *extract.Engine, ocrEngine *ocr.Engine, extractor ai.Extractor, logger *slog.Logger) *ImageEnhanced {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageEnhanced{
		engine: engine,
		ocr:    ocrEngine,
		ai:     extractor,
		logger: logger.With("strategy", "image_enhanced"),
	}
}

func (s *ImageEnhanced) Name() string  { return "image_enhanced" }
func (s *ImageEnhanced) Priority() int { return PriorityImageEnhanced }

func (s *ImageEnhanced) Supports(doc document.Document) bool {
	return doc.IsImage()
}

func (s *ImageEnhanced) Extract(ctx context.Context, doc document.Document, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := extract.Input{}
	meta := map[string]any{"ai_used": false}

	enhanced, aiErr := s.ai.ExtractAdvanced(ctx, data, "vision", map[string]string{
		"mime_type": doc.MIMEType,
		"context":   "freight quotation request, possibly photographed or scanned",
	})
	if aiErr != nil {
		s.logger.Warn("vision extraction failed, degrading to ocr",
			"document_id", doc.ID, "error", aiErr)
	} else {
		in.Structured = enhanced.Data
		meta["ai_used"] = true
	}

	// OCR text still runs the pattern tier, so vision output gets
	// corroborated and gaps get filled at lower confidence.
	text, ocrErr := s.ocr.RecognizeImage(ctx, data)
	if ocrErr != nil {
		s.logger.Warn("ocr failed", "document_id", doc.ID, "error", ocrErr)
	} else {
		in.Text = text
	}

	if in.Structured == nil && strings.TrimSpace(in.Text) == "" {
		return failed(s.Name(), "both vision extraction and ocr failed", meta), nil
	}

	res := s.engine.Extract(in)
	return succeeded(s.Name(), res, meta), nil
}

var (
	_ Strategy = (*ImageBasic)(nil)
	_ Strategy = (*ImageEnhanced)(nil)
)
