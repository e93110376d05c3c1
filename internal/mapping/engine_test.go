package mapping

import (
	"reflect"
	"strings"
	"testing"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	manager, err := NewManager("", nil)
	if err != nil {
		t.Fatalf("loading embedded mappings: %v", err)
	}
	return NewEngine(manager, testTransformer(t), nil)
}

func quotationTree() map[string]any {
	return map[string]any{
		"contact": map[string]any{
			"name":  "Klaus Meier",
			"email": "klaus@acme.de",
			"phone": "+491709614253",
		},
		"vehicle": map[string]any{
			"brand": "BMW", "model": "7 Series", "quantity": 2, "condition": "used", "year": 2018,
		},
		"shipment": map[string]any{
			"origin":         "Hamburg, Germany",
			"destination":    "Lagos, Nigeria",
			"transport_mode": "roro",
		},
		"pricing": map[string]any{"amount": 2500.0, "currency": "EUR"},
		"dates":   map[string]any{"pickup_date": "2025-03-10"},
		"cargo":   map[string]any{"weight_kg": 2350.0},
	}
}

func TestEngine_MapFields(t *testing.T) {
	record, warnings := testEngine(t).MapFields(quotationTree())

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if record.MappingVersion == "" {
		t.Error("expected mapping version to be carried on the record")
	}

	want := map[string]any{
		"client_name":       "Klaus Meier",
		"client_email":      "klaus@acme.de",
		"client_phone":      "+491709614253",
		"client_type":       "shipper",
		"origin_port":       "Antwerp",
		"destination_port":  "Lagos",
		"transport_mode":    "roro",
		"cargo_description": "2 x used BMW 7 Series",
		"cargo_category":    "vehicle",
		"pickup_date":       "2025-03-10",
		"price_currency":    "EUR",
	}
	for field, expected := range want {
		if got := record.Fields[field]; got != expected {
			t.Errorf("field %s = %v, want %v", field, got, expected)
		}
	}

	if got, _ := record.Fields["price_amount"].(float64); got != 2500 {
		t.Errorf("price_amount = %v, want 2500", record.Fields["price_amount"])
	}
	if got, _ := record.Fields["cargo_weight_kg"].(float64); got != 2350 {
		t.Errorf("cargo_weight_kg = %v, want 2350", record.Fields["cargo_weight_kg"])
	}
	if got, _ := record.Fields["cargo_dimensions"].(string); got != "5.39 x 1.95 x 1.54 m" {
		t.Errorf("cargo_dimensions = %v", record.Fields["cargo_dimensions"])
	}

	// Blank-defaulted fields stay out of the record entirely.
	if _, ok := record.Fields["delivery_date"]; ok {
		t.Error("expected absent delivery_date to be omitted")
	}
}

func TestEngine_MapFields_ValidationDrops(t *testing.T) {
	tree := quotationTree()
	tree["contact"].(map[string]any)["email"] = "NOT AN EMAIL"
	tree["vehicle"].(map[string]any)["year"] = 1890

	record, warnings := testEngine(t).MapFields(tree)

	if _, ok := record.Fields["client_email"]; ok {
		t.Error("expected invalid email to be dropped")
	}
	if _, ok := record.Fields["vehicle_year"]; ok {
		t.Error("expected out-of-range year to be dropped")
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
	for _, w := range warnings {
		if !strings.Contains(w, "failed validation") {
			t.Errorf("warning missing context: %q", w)
		}
	}
	// Unrelated fields still map.
	if got := record.Fields["origin_port"]; got != "Antwerp" {
		t.Errorf("origin_port = %v", got)
	}
}

func TestEngine_MapFields_FallbackTemplate(t *testing.T) {
	tree := map[string]any{
		"cargo": map[string]any{"category": "excavator"},
	}
	record, _ := testEngine(t).MapFields(tree)

	if got := record.Fields["cargo_description"]; got != "excavator" {
		t.Errorf("cargo_description = %v, want fallback to category", got)
	}
}

func TestEngine_MapFields_SourceFallbackOrder(t *testing.T) {
	tree := map[string]any{
		"contact": map[string]any{
			"company": "Acme Trading BV",
			"person":  "Jan Peeters",
		},
	}
	record, _ := testEngine(t).MapFields(tree)

	// contact.name is absent; the next source in the list wins.
	if got := record.Fields["client_name"]; got != "Acme Trading BV" {
		t.Errorf("client_name = %v, want company fallback", got)
	}
}

func TestEngine_MapFields_Deterministic(t *testing.T) {
	e := testEngine(t)
	first, firstWarnings := e.MapFields(quotationTree())
	second, secondWarnings := e.MapFields(quotationTree())

	if !reflect.DeepEqual(first.Fields, second.Fields) {
		t.Error("two runs over the same tree produced different fields")
	}
	if !reflect.DeepEqual(firstWarnings, secondWarnings) {
		t.Error("two runs over the same tree produced different warnings")
	}
}

func TestEngine_MapFields_EmptyTree(t *testing.T) {
	record, _ := testEngine(t).MapFields(map[string]any{})

	// Only fields with real defaults survive an empty tree.
	if got := record.Fields["transport_mode"]; got != "roro" {
		t.Errorf("transport_mode = %v, want default roro", got)
	}
	if got := record.Fields["price_currency"]; got != "EUR" {
		t.Errorf("price_currency = %v, want default EUR", got)
	}
	if _, ok := record.Fields["client_email"]; ok {
		t.Error("expected client_email to be absent")
	}
}

func TestResolve(t *testing.T) {
	tree := map[string]any{
		"cargo": map[string]any{
			"dimensions": map[string]any{"length_m": 5.39},
		},
		"items": []any{
			map[string]any{"name": "first"},
			map[string]any{"name": "second"},
		},
	}

	tests := []struct {
		path string
		want any
	}{
		{"cargo.dimensions.length_m", 5.39},
		{"items.1.name", "second"},
		{"cargo.missing", Absent},
		{"items.9.name", Absent},
		{"items.x.name", Absent},
		{"cargo.dimensions.length_m.deeper", Absent},
		{"", Absent},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Resolve(tree, tt.path); got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, true},
		{"absent", Absent, true},
		{"empty string", "", true},
		{"whitespace", "   ", true},
		{"zero is not blank", 0, false},
		{"false is not blank", false, false},
		{"text", "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBlank(tt.in); got != tt.want {
				t.Errorf("isBlank(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTidyTemplateOutput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1 x  BMW", "1 x BMW"},
		{"x used BMW", "used BMW"},
		{"Hamburg -", "Hamburg"},
		{"used BMW 7 Series", "used BMW 7 Series"},
		{"a | b", "a | b"},
		{"| b", "b"},
	}
	for _, tt := range tests {
		if got := tidyTemplateOutput(tt.in); got != tt.want {
			t.Errorf("tidyTemplateOutput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

var _ DimensionLookup = fakeDimLookup{}
