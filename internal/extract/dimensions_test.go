package extract

import (
	"math"
	"testing"

	"github.com/cargoflow/intake/internal/patterns"
)

func testCatalog(t *testing.T) *patterns.Catalog {
	t.Helper()
	catalog, err := patterns.Load("", nil)
	if err != nil {
		t.Fatalf("loading default catalog: %v", err)
	}
	return catalog
}

func TestExtractDimensions(t *testing.T) {
	catalog := testCatalog(t)

	tests := []struct {
		name string
		text string
		want Dimensions
		ok   bool
	}{
		{
			name: "combined with comma decimals",
			text: "Abmessungen: 10,06m x 2,52m x 3,12m",
			want: Dimensions{LengthM: 10.06, WidthM: 2.52, HeightM: 3.12},
			ok:   true,
		},
		{
			name: "trailing unit backfills earlier numbers",
			text: "crate is 800 x 204 x 232 cm",
			want: Dimensions{LengthM: 8, WidthM: 2.04, HeightM: 2.32},
			ok:   true,
		},
		{
			name: "no units but large magnitudes read as centimeters",
			text: "dims 800 x 204 x 232",
			want: Dimensions{LengthM: 8, WidthM: 2.04, HeightM: 2.32},
			ok:   true,
		},
		{
			name: "german phrasing",
			text: "Der Bagger ist 800cm lang, 204cm breit und 232cm hoch",
			want: Dimensions{LengthM: 8, WidthM: 2.04, HeightM: 2.32},
			ok:   true,
		},
		{
			name: "individually labeled fields",
			text: "Length: 5.2 m\nWidth: 2.1 m\nHeight: 2.9 m",
			want: Dimensions{LengthM: 5.2, WidthM: 2.1, HeightM: 2.9},
			ok:   true,
		},
		{
			name: "implausible triple rejected",
			text: "section 100 x 2 x 2 m",
			ok:   false,
		},
		{
			name: "small unitless numbers are not centimeters",
			text: "grid 20 x 30 x 40",
			ok:   false,
		},
		{
			name: "no dimensions at all",
			text: "please quote roro Antwerp to Lagos",
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractDimensions(catalog, tt.text)
			if ok != tt.ok {
				t.Fatalf("extractDimensions ok = %v, want %v (got %+v)", ok, tt.ok, got)
			}
			if !ok {
				return
			}
			if !closeTo(got.LengthM, tt.want.LengthM) || !closeTo(got.WidthM, tt.want.WidthM) || !closeTo(got.HeightM, tt.want.HeightM) {
				t.Errorf("extractDimensions = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDimensions_Plausible(t *testing.T) {
	tests := []struct {
		name string
		d    Dimensions
		want bool
	}{
		{"typical sedan", Dimensions{4.9, 1.9, 1.5}, true},
		{"excavator", Dimensions{9.5, 3.0, 3.1}, true},
		{"too long", Dimensions{15.1, 2.0, 2.0}, false},
		{"too short", Dimensions{1.9, 2.0, 2.0}, false},
		{"too wide", Dimensions{5.0, 4.1, 2.0}, false},
		{"too flat", Dimensions{5.0, 2.0, 0.7}, false},
		{"zero triple", Dimensions{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Plausible(); got != tt.want {
				t.Errorf("Plausible(%+v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}
