package mapping

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"time"
)

// Record is the flat mapped output handed to the CRM boundary.
type Record struct {
	Fields         map[string]any `json:"fields"`
	FormattedAt    time.Time      `json:"formatted_at"`
	MappingVersion string         `json:"mapping_version"`
}

// Engine applies the mapping configuration to extraction trees. MapFields is
// a pure function of (tree, config); two runs on identical input differ only
// in FormattedAt.
type Engine struct {
	manager     *Manager
	transformer *Transformer
	logger      *slog.Logger
}

// NewEngine creates a mapping engine over a config manager and transformer.
func NewEngine(manager *Manager, transformer *Transformer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{manager: manager, transformer: transformer, logger: logger}
}

// MapFields maps the extraction tree to the flat target record. Field-level
// validation failures drop the field and come back as warnings; nothing here
// fails the record.
func (e *Engine) MapFields(tree map[string]any) (*Record, []string) {
	cfg := e.manager.Get()

	// Deterministic field order keeps warning output stable.
	names := make([]string, 0, len(cfg.FieldMappings))
	for name := range cfg.FieldMappings {
		names = append(names, name)
	}
	sort.Strings(names)

	var warnings []string
	fields := make(map[string]any, len(names))
	for _, name := range names {
		v := e.resolveField(cfg.FieldMappings[name], tree, &warnings, name)
		if isBlank(v) {
			continue
		}
		fields[name] = v
	}

	return &Record{
		Fields:         fields,
		FormattedAt:    time.Now().UTC(),
		MappingVersion: cfg.Version,
	}, warnings
}

// resolveField runs the full chain for one target field: sources, transform,
// validate, template, fallback template, static default.
func (e *Engine) resolveField(fm FieldMapping, tree map[string]any, warnings *[]string, field string) any {
	v, _ := e.resolveFieldData(fm, tree, warnings, field)
	return v
}

// resolveFieldData additionally reports whether the value came from document
// data rather than a static default. Templates only count data-backed
// components as anchoring: a template whose every variable fell back to its
// default renders nothing, so the fallback template gets its turn.
func (e *Engine) resolveFieldData(fm FieldMapping, tree map[string]any, warnings *[]string, field string) (any, bool) {
	v := e.resolveSources(fm.Sources, tree)

	if !isBlank(v) {
		v = e.transformer.Apply(fm.Transform, v, tree)
		if !isBlank(v) && fm.Validate != "" {
			if ok := e.validate(fm.Validate, v); !ok {
				*warnings = append(*warnings, fmt.Sprintf("field %s: value %v failed validation %q, dropped", field, v, fm.Validate))
				v = Absent
			}
		}
	}

	if isBlank(v) && fm.Template != "" {
		v = e.renderTemplate(fm.Template, fm.Components, tree, warnings, field)
	}
	if isBlank(v) && fm.FallbackTemplate != "" {
		v = e.renderTemplate(fm.FallbackTemplate, fm.Components, tree, warnings, field)
	}
	if !isBlank(v) {
		return v, true
	}
	if fm.Default != nil && !isBlank(fm.Default) {
		return fm.Default, false
	}
	return Absent, false
}

// resolveSources walks the ordered source list; the first path yielding a
// non-blank value wins. Nested blocks recurse with their own default.
func (e *Engine) resolveSources(sources []SourceRef, tree map[string]any) any {
	for _, ref := range sources {
		if ref.Path != "" {
			if v := Resolve(tree, ref.Path); !isBlank(v) {
				return v
			}
			continue
		}
		if len(ref.Sources) > 0 {
			if v := e.resolveSources(ref.Sources, tree); !isBlank(v) {
				return v
			}
			if ref.Default != nil && !isBlank(ref.Default) {
				return ref.Default
			}
		}
	}
	return Absent
}

// validate applies the named rule. An unknown rule name passes: rules are
// part of the validated config, so this only happens on a stale reference.
func (e *Engine) validate(ruleName string, v any) bool {
	rule, ok := e.manager.Get().ValidationRules[ruleName]
	if !ok {
		e.logger.Warn("unknown validation rule", "rule", ruleName)
		return true
	}

	if rule.Regex != "" {
		re, err := regexp.Compile(rule.Regex)
		if err != nil {
			e.logger.Warn("invalid validation regex", "rule", ruleName, "error", err)
			return true
		}
		return re.MatchString(valueString(v))
	}
	if rule.Min != nil || rule.Max != nil {
		f, ok := asFloat(v)
		if !ok {
			return false
		}
		if rule.Min != nil && f < *rule.Min {
			return false
		}
		if rule.Max != nil && f > *rule.Max {
			return false
		}
		return true
	}
	if rule.Date {
		_, err := time.Parse("2006-01-02", valueString(v))
		return err == nil
	}
	return true
}

func valueString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}
