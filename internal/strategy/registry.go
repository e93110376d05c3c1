package strategy

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/cargoflow/intake/internal/document"
)

// ErrAlreadyRegistered is returned when registering a duplicate strategy name.
var ErrAlreadyRegistered = errors.New("strategy already registered")

// Registry holds the registered strategies and selects the best match for a
// document. Registration happens at startup; reads are concurrent-safe.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	logger     *slog.Logger
}

// NewRegistry creates an empty strategy registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		strategies: make(map[string]Strategy),
		logger:     logger.With("component", "strategy"),
	}
}

// Register adds a strategy.
// Returns an error if a strategy with the same name is already registered.
func (r *Registry) Register(s Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}

	r.strategies[name] = s
	r.logger.Debug("registered strategy", "name", name, "priority", s.Priority())
	return nil
}

// GetStrategy returns the highest-priority strategy that supports doc, or
// false when no strategy claims it. Selection is deterministic: ties on
// priority break by name.
func (r *Registry) GetStrategy(doc document.Document) (Strategy, bool) {
	matches := r.SupportedStrategies(doc)
	if len(matches) == 0 {
		return nil, false
	}
	return matches[0], true
}

// SupportedStrategies returns every strategy that supports doc, sorted by
// priority descending then name, for diagnostics.
func (r *Registry) SupportedStrategies(doc document.Document) []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []Strategy
	for _, s := range r.strategies {
		if s.Supports(doc) {
			matches = append(matches, s)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Priority() != matches[j].Priority() {
			return matches[i].Priority() > matches[j].Priority()
		}
		return matches[i].Name() < matches[j].Name()
	})
	return matches
}

// Names returns all registered strategy names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
