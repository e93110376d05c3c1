package mapping

import (
	"testing"

	"github.com/cargoflow/intake/internal/vehicleref"
)

func testTransformer(t *testing.T) *Transformer {
	t.Helper()
	tr, err := NewTransformer(vehicleref.NewStatic(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tr
}

func TestTransformer_CityToPort(t *testing.T) {
	tr := testTransformer(t)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"hub country resolves to hub", "Hamburg, Germany", "Antwerp"},
		{"hub country in german", "Köln, Deutschland", "Antwerp"},
		{"known city without country", "Rotterdam", "Antwerp"},
		{"known city outside hub countries", "Los Angeles, USA", "Long Beach"},
		{"unknown city passes through", "Springfield, USA", "Springfield"},
		{"case insensitive table", "LAGOS", "Lagos"},
		{"non-string passes through", 42, 42},
		{"blank passes through", "  ", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.Apply("city_to_port", tt.in, nil); got != tt.want {
				t.Errorf("city_to_port(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransformer_FormatCargo(t *testing.T) {
	tr := testTransformer(t)

	t.Run("full vehicle", func(t *testing.T) {
		tree := map[string]any{
			"vehicle": map[string]any{
				"quantity": 2, "condition": "used", "brand": "BMW", "model": "7 Series", "year": 2018,
			},
		}
		got := tr.Apply("format_cargo", nil, tree)
		if got != "2 x used BMW 7 Series (2018)" {
			t.Errorf("format_cargo = %q", got)
		}
	})

	t.Run("quantity defaults to one", func(t *testing.T) {
		tree := map[string]any{
			"vehicle": map[string]any{"condition": "used", "brand": "BMW", "model": "X5"},
		}
		got := tr.Apply("format_cargo", nil, tree)
		if got != "1 x used BMW X5" {
			t.Errorf("format_cargo = %q", got)
		}
	})

	t.Run("empty vehicle yields empty", func(t *testing.T) {
		if got := tr.Apply("format_cargo", nil, map[string]any{}); got != "" {
			t.Errorf("format_cargo = %q, want empty", got)
		}
	})
}

func TestTransformer_FormatDimensions(t *testing.T) {
	tr := testTransformer(t)

	t.Run("formatted string passes through", func(t *testing.T) {
		got := tr.Apply("format_dimensions", "10.06 x 2.52 x 3.12 m", nil)
		if got != "10.06 x 2.52 x 3.12 m" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("components map renders", func(t *testing.T) {
		value := map[string]any{"length_m": 10.06, "width_m": 2.52, "height_m": 3.12}
		got := tr.Apply("format_dimensions", value, nil)
		if got != "10.06 x 2.52 x 3.12 m" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("reference specs fill the gap", func(t *testing.T) {
		tree := map[string]any{
			"vehicle": map[string]any{"brand": "BMW", "model": "7 Series"},
		}
		got := tr.Apply("format_dimensions", "", tree)
		if got != "5.39 x 1.95 x 1.54 m" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("unknown vehicle yields empty", func(t *testing.T) {
		tree := map[string]any{
			"vehicle": map[string]any{"brand": "Lada", "model": "Niva"},
		}
		if got := tr.Apply("format_dimensions", "", tree); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}

type fakeDimLookup struct {
	spec vehicleref.DimensionSpec
	ok   bool
}

func (f fakeDimLookup) Lookup(brand, model string, year int) (vehicleref.DimensionSpec, bool) {
	return f.spec, f.ok
}

func TestTransformer_DimensionLookupFallback(t *testing.T) {
	tree := map[string]any{
		"vehicle": map[string]any{"brand": "Lada", "model": "Niva", "year": 1995},
	}

	t.Run("plausible lookup result is used", func(t *testing.T) {
		tr, err := NewTransformer(vehicleref.NewStatic(), fakeDimLookup{
			spec: vehicleref.DimensionSpec{LengthM: 4.2, WidthM: 1.7, HeightM: 1.6},
			ok:   true,
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := tr.Apply("format_dimensions", "", tree); got != "4.20 x 1.70 x 1.60 m" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("implausible lookup result is rejected", func(t *testing.T) {
		tr, err := NewTransformer(vehicleref.NewStatic(), fakeDimLookup{
			spec: vehicleref.DimensionSpec{LengthM: 100, WidthM: 1, HeightM: 1},
			ok:   true,
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := tr.Apply("format_dimensions", "", tree); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}

func TestTransformer_SimpleTransforms(t *testing.T) {
	tr := testTransformer(t)

	tests := []struct {
		transform string
		in        any
		want      any
	}{
		{"currency_iso", "euro", "EUR"},
		{"currency_iso", "$", "USD"},
		{"currency_iso", 42, 42},
		{"uppercase", "cif", "CIF"},
		{"lowercase", "RoRo", "roro"},
		{"trim", "  Antwerp  ", "Antwerp"},
		{"cm_to_m", 250, 2.5},
		{"cm_to_m", "not a number", "not a number"},
		{"title_case", "herr klaus meier", "Klaus Meier"},
		{"no_such_transform", "unchanged", "unchanged"},
		{"", "unchanged", "unchanged"},
	}
	for _, tt := range tests {
		t.Run(tt.transform, func(t *testing.T) {
			if got := tr.Apply(tt.transform, tt.in, nil); got != tt.want {
				t.Errorf("Apply(%q, %v) = %v, want %v", tt.transform, tt.in, got, tt.want)
			}
		})
	}
}

func TestTransformer_LbToKg(t *testing.T) {
	tr := testTransformer(t)
	got, ok := tr.Apply("lb_to_kg", 1000, nil).(float64)
	if !ok {
		t.Fatal("expected a float result")
	}
	if got < 453.5 || got > 453.7 {
		t.Errorf("lb_to_kg(1000) = %v, want ~453.6", got)
	}
}
