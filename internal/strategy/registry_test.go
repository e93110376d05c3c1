package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/cargoflow/intake/internal/document"
)

type stubStrategy struct {
	name     string
	priority int
	supports func(document.Document) bool
}

func (s stubStrategy) Name() string  { return s.name }
func (s stubStrategy) Priority() int { return s.priority }
func (s stubStrategy) Supports(doc document.Document) bool {
	if s.supports == nil {
		return true
	}
	return s.supports(doc)
}
func (s stubStrategy) Extract(ctx context.Context, doc document.Document, data []byte) (*Result, error) {
	return succeeded(s.name, nil, nil), nil
}

func pdfOnly(doc document.Document) bool   { return doc.IsPDF() }
func emailOnly(doc document.Document) bool { return doc.IsEmail() }

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry(nil)

	if err := r.Register(stubStrategy{name: "a", priority: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.Register(stubStrategy{name: "a", priority: 20})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestRegistry_GetStrategy(t *testing.T) {
	r := NewRegistry(nil)
	for _, s := range []stubStrategy{
		{name: "pdf_simple", priority: PriorityPDFSimple, supports: pdfOnly},
		{name: "pdf_enhanced", priority: PriorityPDFEnhanced, supports: pdfOnly},
		{name: "pdf_optimized", priority: PriorityPDFOptimized, supports: pdfOnly},
		{name: "email", priority: PriorityEmail, supports: emailOnly},
	} {
		if err := r.Register(s); err != nil {
			t.Fatalf("registering %s: %v", s.name, err)
		}
	}

	t.Run("highest priority wins", func(t *testing.T) {
		doc := document.New("1", "quote.pdf", "", "quote.pdf")
		s, ok := r.GetStrategy(doc)
		if !ok {
			t.Fatal("expected a strategy")
		}
		if s.Name() != "pdf_enhanced" {
			t.Errorf("selected %s, want pdf_enhanced", s.Name())
		}
	})

	t.Run("email dispatch", func(t *testing.T) {
		doc := document.New("2", "request.eml", "", "request.eml")
		s, ok := r.GetStrategy(doc)
		if !ok {
			t.Fatal("expected a strategy")
		}
		if s.Name() != "email" {
			t.Errorf("selected %s, want email", s.Name())
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		doc := document.New("3", "video.mp4", "", "video.mp4")
		if _, ok := r.GetStrategy(doc); ok {
			t.Error("expected no strategy for unknown type")
		}
	})

	t.Run("selection is deterministic", func(t *testing.T) {
		doc := document.New("4", "quote.pdf", "", "quote.pdf")
		first, _ := r.GetStrategy(doc)
		for i := 0; i < 20; i++ {
			s, _ := r.GetStrategy(doc)
			if s.Name() != first.Name() {
				t.Fatalf("dispatch flapped: %s then %s", first.Name(), s.Name())
			}
		}
	})
}

func TestRegistry_PriorityTiesBreakByName(t *testing.T) {
	r := NewRegistry(nil)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(stubStrategy{name: name, priority: 50}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	doc := document.New("1", "quote.pdf", "", "quote.pdf")
	matches := r.SupportedStrategies(doc)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, m := range matches {
		if m.Name() != want[i] {
			t.Errorf("matches[%d] = %s, want %s", i, m.Name(), want[i])
		}
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry(nil)
	for _, name := range []string{"b", "a", "c"} {
		if err := r.Register(stubStrategy{name: name}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	got := r.Names()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}
