package ai

import (
	"context"
	"encoding/json"
)

// MockExtractor is a configurable test double for Extractor.
type MockExtractor struct {
	ExtractFunc         func(ctx context.Context, content string, schema json.RawMessage, opts Options) (*Extraction, error)
	ExtractAdvancedFunc func(ctx context.Context, input []byte, mode string, hints map[string]string) (*Extraction, error)

	ExtractCalls         int
	ExtractAdvancedCalls int
}

func (m *MockExtractor) Extract(ctx context.Context, content string, schema json.RawMessage, opts Options) (*Extraction, error) {
	m.ExtractCalls++
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, content, schema, opts)
	}
	return &Extraction{Data: map[string]any{}, Confidence: 0.95}, nil
}

func (m *MockExtractor) ExtractAdvanced(ctx context.Context, input []byte, mode string, hints map[string]string) (*Extraction, error) {
	m.ExtractAdvancedCalls++
	if m.ExtractAdvancedFunc != nil {
		return m.ExtractAdvancedFunc(ctx, input, mode, hints)
	}
	return &Extraction{Data: map[string]any{}, Confidence: 0.95}, nil
}

var _ Extractor = (*MockExtractor)(nil)
