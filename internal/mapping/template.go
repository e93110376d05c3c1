package mapping

import (
	"regexp"
	"strings"
)

var templateVarRe = regexp.MustCompile(`\{(\w+)\}`)

// renderTemplate substitutes resolved component values into the template
// string. Components resolve through the same sources/transform/validate
// chain as top-level fields. Returns "" when no component yielded a value
// from document data (default-filled components fill gaps but do not anchor
// the template), so the caller can fall through to the fallback template or
// default.
func (e *Engine) renderTemplate(tpl string, components map[string]FieldMapping, tree map[string]any, warnings *[]string, field string) string {
	anchored := 0
	out := templateVarRe.ReplaceAllStringFunc(tpl, func(m string) string {
		name := m[1 : len(m)-1]
		fm, ok := components[name]
		if !ok {
			return ""
		}
		v, fromData := e.resolveFieldData(fm, tree, warnings, field+"."+name)
		if isBlank(v) {
			return ""
		}
		if fromData {
			anchored++
		}
		return valueString(v)
	})
	if anchored == 0 {
		return ""
	}
	return tidyTemplateOutput(out)
}

// separators that can be left dangling by missing components.
var danglingSepRe = regexp.MustCompile(`(?:^|\s)(?:x|×|\-|\||,|/)(?:\s|$)`)

// tidyTemplateOutput collapses the whitespace and separators that missing
// components leave behind: "1 x  BMW" -> "1 x BMW", " x used BMW" ->
// "used BMW".
func tidyTemplateOutput(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for {
		trimmed := strings.TrimSpace(s)
		// Strip separators stranded at either end.
		start := danglingSepRe.FindStringIndex(trimmed)
		if start != nil && start[0] == 0 {
			trimmed = strings.TrimSpace(trimmed[start[1]:])
			s = trimmed
			continue
		}
		if loc := danglingSepRe.FindAllStringIndex(trimmed, -1); len(loc) > 0 {
			last := loc[len(loc)-1]
			if last[1] == len(trimmed) {
				trimmed = strings.TrimSpace(trimmed[:last[0]])
				s = trimmed
				continue
			}
		}
		return trimmed
	}
}
