// Package ai defines the AI-extraction collaborator contract and its OpenAI
// implementation. AI enhancement is strictly additive: every call is
// best-effort with a timeout, and callers degrade to pattern-only extraction
// on any failure.
package ai

import (
	"context"
	"encoding/json"
	"time"
)

// Extraction is the structured result of an AI call.
type Extraction struct {
	// Data is keyed by semantic domain ("contact", "vehicle", ...), matching
	// the extraction engine's structured input shape.
	Data       map[string]any `json:"data"`
	Confidence float64        `json:"confidence"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Options tune a single extraction call.
type Options struct {
	// Timeout bounds the call; zero means the client default.
	Timeout time.Duration
	// Model overrides the client default model.
	Model string
}

// Extractor is the collaborator contract. Both methods are fallible and
// never load-bearing for pipeline liveness.
type Extractor interface {
	// Extract pulls structured fields from document text, constrained by the
	// given JSON schema.
	Extract(ctx context.Context, content string, schema json.RawMessage, opts Options) (*Extraction, error)

	// ExtractAdvanced handles non-text input (page images) in the given mode
	// ("vision"), with optional free-form context hints.
	ExtractAdvanced(ctx context.Context, input []byte, mode string, hints map[string]string) (*Extraction, error)
}
