// Package patterns provides the compiled catalog of named text patterns used
// by the extraction engine. The catalog is built once at startup and is
// immutable afterwards, so concurrent extractions share it freely.
package patterns

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Catalog holds compiled named patterns. Immutable after Load.
type Catalog struct {
	patterns map[string]*regexp.Regexp
}

// catalogFile is the on-disk document shape: domain -> name -> expression.
type catalogFile struct {
	Patterns map[string]map[string]string `yaml:"patterns"`
}

// Load builds the catalog from the embedded defaults, optionally overlaid
// with a user-supplied YAML file. Patterns that fail to compile are dropped
// and logged; they never surface as match-time errors.
func Load(overridePath string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := parse(defaultsYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded pattern catalog: %w", err)
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("read pattern catalog %s: %w", overridePath, err)
		}
		override, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("pattern catalog %s: %w", overridePath, err)
		}
		for name, expr := range override {
			raw[name] = expr
		}
	}

	compiled := make(map[string]*regexp.Regexp, len(raw))
	for name, expr := range raw {
		re, err := regexp.Compile(expr)
		if err != nil {
			logger.Warn("dropping invalid pattern", "name", name, "error", err)
			continue
		}
		compiled[name] = re
	}

	return &Catalog{patterns: compiled}, nil
}

func parse(data []byte) (map[string]string, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	flat := make(map[string]string)
	for domain, entries := range f.Patterns {
		for name, expr := range entries {
			flat[domain+"."+name] = expr
		}
	}
	return flat, nil
}

// Get returns the compiled pattern by qualified name ("contact.email").
func (c *Catalog) Get(name string) (*regexp.Regexp, bool) {
	re, ok := c.patterns[name]
	return re, ok
}

// Find runs the named pattern and returns the first capture group if the
// pattern has one, else the whole match. Empty string when the pattern is
// unknown or does not match.
func (c *Catalog) Find(name, text string) string {
	re, ok := c.patterns[name]
	if !ok {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

// FindSubmatch returns all capture groups of the first match, or nil.
func (c *Catalog) FindSubmatch(name, text string) []string {
	re, ok := c.patterns[name]
	if !ok {
		return nil
	}
	return re.FindStringSubmatch(text)
}

// FindAll returns the first capture group (or whole match) of every match,
// capped at limit (unlimited when limit <= 0).
func (c *Catalog) FindAll(name, text string, limit int) []string {
	re, ok := c.patterns[name]
	if !ok {
		return nil
	}
	if limit <= 0 {
		limit = -1
	}
	matches := re.FindAllStringSubmatch(text, limit)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			out = append(out, m[1])
		} else {
			out = append(out, m[0])
		}
	}
	return out
}

// Names returns the sorted pattern names, for diagnostics.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.patterns))
	for name := range c.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of compiled patterns.
func (c *Catalog) Len() int {
	return len(c.patterns)
}
