package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/cargoflow/intake/internal/ai"
	"github.com/cargoflow/intake/internal/document"
	"github.com/cargoflow/intake/internal/ocr"
)

// fakeRunner stands in for pdftoppm and tesseract so OCR-backed paths run
// without the external tools installed.
type fakeRunner struct {
	text string
	err  error
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if r.err != nil {
		return nil, []byte("tool failed"), r.err
	}
	switch name {
	case "pdftoppm":
		return nil, nil, os.WriteFile(args[len(args)-1]+".png", []byte("png"), 0o644)
	case "tesseract":
		return nil, nil, os.WriteFile(args[1]+".txt", []byte(r.text), 0o644)
	}
	return nil, nil, nil
}

func fakeOCR(text string, err error) *ocr.Engine {
	return ocr.New(&fakeRunner{text: text, err: err}, "eng", nil)
}

func pdfDoc(id string) document.Document {
	return document.New(id, "quote.pdf", "", "quote.pdf")
}

const scannedQuoteText = `Quotation
1 x used BMW X5
Destination: Lagos, Nigeria
Contact: Jan Peeters
jan.peeters@client.be`

// Unparseable bytes make analysis fall back to "scanned", which routes the
// optimized strategy through OCR. That keeps these tests hermetic: no real
// PDF fixture is needed to exercise the OCR-direct path.
var notAPDF = []byte("binary scan output, no pdf structure")

func TestPDFOptimized_OCRDirectPath(t *testing.T) {
	s := NewPDFOptimized(testExtractEngine(t), fakeOCR(scannedQuoteText, nil), nil, nil)

	doc := pdfDoc("1")
	if !s.Supports(doc) {
		t.Fatal("expected pdf support")
	}

	res, err := s.Extract(context.Background(), doc, notAPDF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("extraction failed: %s", res.Err)
	}
	if got := res.Metadata["method"]; got != "ocr-direct" {
		t.Errorf("method = %v, want ocr-direct", got)
	}
	if got := res.Extraction.Vehicle.GetString("brand"); got != "BMW" {
		t.Errorf("brand = %q", got)
	}
	if got := res.Extraction.Contact.GetString("email"); got != "jan.peeters@client.be" {
		t.Errorf("email = %q", got)
	}
}

func TestPDFOptimized_OCRFailure(t *testing.T) {
	s := NewPDFOptimized(testExtractEngine(t), fakeOCR("", errors.New("no tesseract")), nil, nil)

	res, err := s.Extract(context.Background(), pdfDoc("2"), notAPDF)
	if err != nil {
		t.Fatalf("tool failures must be data, not errors: %v", err)
	}
	if res.Success {
		t.Fatal("expected failure result")
	}
	if res.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", res.Confidence)
	}
}

func TestPDFOptimized_EmptyOCROutput(t *testing.T) {
	s := NewPDFOptimized(testExtractEngine(t), fakeOCR("   ", nil), nil, nil)

	res, err := s.Extract(context.Background(), pdfDoc("3"), notAPDF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Fatal("whitespace-only acquisition must fail the strategy")
	}
	if res.Err != "no text acquired" {
		t.Errorf("err = %q", res.Err)
	}
}

func TestPDFOptimized_Cancelled(t *testing.T) {
	s := NewPDFOptimized(testExtractEngine(t), fakeOCR("text", nil), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Extract(ctx, pdfDoc("4"), notAPDF); err == nil {
		t.Fatal("expected context error")
	}
}

func TestPDFEnhanced_AIEnrichment(t *testing.T) {
	mock := &ai.MockExtractor{
		ExtractFunc: func(ctx context.Context, content string, schema json.RawMessage, opts ai.Options) (*ai.Extraction, error) {
			return &ai.Extraction{
				Data: map[string]any{
					"contact": map[string]any{"email": "boss@client.be"},
				},
				Confidence: 0.95,
			}, nil
		},
	}
	base := NewPDFOptimized(testExtractEngine(t), fakeOCR(scannedQuoteText, nil), nil, nil)
	s := NewPDFEnhanced(base, mock, nil)

	res, err := s.Extract(context.Background(), pdfDoc("5"), notAPDF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("extraction failed: %s", res.Err)
	}
	if got := res.Metadata["ai_used"]; got != true {
		t.Errorf("ai_used = %v, want true", got)
	}
	if mock.ExtractCalls != 1 {
		t.Errorf("ExtractCalls = %d, want 1", mock.ExtractCalls)
	}

	// Structured AI output outranks the OCR pattern tier.
	if got := res.Extraction.Contact.GetString("email"); got != "boss@client.be" {
		t.Errorf("email = %q, want the structured value", got)
	}
}

func TestPDFEnhanced_DegradesWhenAIFails(t *testing.T) {
	mock := &ai.MockExtractor{
		ExtractFunc: func(ctx context.Context, content string, schema json.RawMessage, opts ai.Options) (*ai.Extraction, error) {
			return nil, errors.New("rate limited")
		},
	}
	base := NewPDFOptimized(testExtractEngine(t), fakeOCR(scannedQuoteText, nil), nil, nil)
	s := NewPDFEnhanced(base, mock, nil)

	res, err := s.Extract(context.Background(), pdfDoc("6"), notAPDF)
	if err != nil {
		t.Fatalf("ai failure must not become an error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected pattern-only success, got: %s", res.Err)
	}
	if got := res.Metadata["ai_used"]; got != false {
		t.Errorf("ai_used = %v, want false", got)
	}
	// Pattern extraction still delivered.
	if got := res.Extraction.Contact.GetString("email"); got != "jan.peeters@client.be" {
		t.Errorf("email = %q", got)
	}
}

func TestPDFOptimized_StreamingBiasConsulted(t *testing.T) {
	consulted := false
	prefer := func() bool {
		consulted = true
		return true
	}
	s := NewPDFOptimized(testExtractEngine(t), fakeOCR(scannedQuoteText, nil), prefer, nil)

	if _, err := s.Extract(context.Background(), pdfDoc("7"), notAPDF); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !consulted {
		t.Error("expected the streaming preference to be consulted per document")
	}
}
