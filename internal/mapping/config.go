package mapping

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema/mapping.schema.json
var mappingSchemaJSON string

//go:embed defaults/mappings.yaml
var defaultMappingsYAML []byte

// Config is the versioned declarative mapping document. It is loaded once,
// validated against the embedded JSON schema, and read-only afterwards.
type Config struct {
	Version         string                    `yaml:"version"`
	FieldMappings   map[string]FieldMapping   `yaml:"field_mappings"`
	ValidationRules map[string]ValidationRule `yaml:"validation_rules"`
}

// FieldMapping configures one target field. Components use the same shape,
// so template parts resolve through the identical sources/transform/validate
// chain.
type FieldMapping struct {
	Sources          []SourceRef             `yaml:"sources"`
	Transform        string                  `yaml:"transform"`
	Template         string                  `yaml:"template"`
	FallbackTemplate string                  `yaml:"fallback_template"`
	Components       map[string]FieldMapping `yaml:"components"`
	Validate         string                  `yaml:"validate"`
	Default          any                     `yaml:"default"`
}

// SourceRef is one entry in a sources list: either a plain path or a nested
// fallback block with its own sources and default.
type SourceRef struct {
	Path    string
	Sources []SourceRef
	Default any
}

// UnmarshalYAML accepts both the scalar and the nested-block form.
func (s *SourceRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&s.Path)
	}
	var block struct {
		Sources []SourceRef `yaml:"sources"`
		Default any         `yaml:"default"`
	}
	if err := node.Decode(&block); err != nil {
		return err
	}
	s.Sources = block.Sources
	s.Default = block.Default
	return nil
}

// ValidationRule is a named post-transform check. Exactly one of the rule
// kinds applies; a failing value is dropped and recorded as a warning.
type ValidationRule struct {
	Regex string   `yaml:"regex"`
	Min   *float64 `yaml:"min"`
	Max   *float64 `yaml:"max"`
	Date  bool     `yaml:"date"`
}

// ParseConfig validates raw YAML against the schema and decodes it. Any
// failure here is a ConfigurationError: fatal at startup, never per-request.
func ParseConfig(raw []byte) (*Config, error) {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("mapping config is not valid YAML: %w", err)
	}

	schema, err := compileMappingSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(toJSONValue(generic)); err != nil {
		return nil, fmt.Errorf("mapping config failed schema validation: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode mapping config: %w", err)
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("mapping config has no version")
	}
	return &cfg, nil
}

func compileMappingSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("mapping.schema.json", bytes.NewReader([]byte(mappingSchemaJSON))); err != nil {
		return nil, fmt.Errorf("load mapping schema: %w", err)
	}
	schema, err := compiler.Compile("mapping.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile mapping schema: %w", err)
	}
	return schema, nil
}

// toJSONValue round-trips a YAML-decoded value through JSON so the schema
// validator sees JSON-native types.
func toJSONValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// Manager loads the mapping configuration and hot-reloads it when the file
// changes. Reads are lock-protected and cheap; a failed reload keeps the
// previous config.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	path      string
	logger    *slog.Logger
	callbacks []func(*Config)
	watcher   *fsnotify.Watcher
}

// NewManager loads the config from path, or the embedded defaults when path
// is empty. Load failures here are fatal by design.
func NewManager(path string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{path: path, logger: logger}

	raw := defaultMappingsYAML
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read mapping config %s: %w", path, err)
		}
		raw = data
	}

	cfg, err := ParseConfig(raw)
	if err != nil {
		return nil, err
	}
	m.config = cfg
	return m, nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// OnReload registers a callback invoked after each successful reload.
func (m *Manager) OnReload(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Reload re-reads the config file. On failure the previous config stays
// active and the error is returned for the caller to surface.
func (m *Manager) Reload() error {
	if m.path == "" {
		return nil
	}
	raw, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("read mapping config %s: %w", m.path, err)
	}
	cfg, err := ParseConfig(raw)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.config = cfg
	callbacks := make([]func(*Config), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	m.logger.Info("mapping config reloaded", "version", cfg.Version, "fields", len(cfg.FieldMappings))
	for _, fn := range callbacks {
		fn(cfg)
	}
	return nil
}

// Watch reloads the config whenever the file changes, until the watcher is
// closed. No-op when running on embedded defaults.
func (m *Manager) Watch() error {
	if m.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", m.path, err)
	}
	m.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != m.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := m.Reload(); err != nil {
					m.logger.Error("mapping config reload failed, keeping previous", "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.logger.Error("config watcher error", "error", err)
			}
		}
	}()
	return nil
}

// Close stops the watcher.
func (m *Manager) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}
