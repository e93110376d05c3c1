package extract

import (
	"github.com/cargoflow/intake/internal/patterns"
)

// Dimensions is a length/width/height triple in meters.
type Dimensions struct {
	LengthM float64 `json:"length_m"`
	WidthM  float64 `json:"width_m"`
	HeightM float64 `json:"height_m"`
}

// Plausibility envelope for transported vehicles and machinery, in meters.
// Triples outside these bounds are numeric coincidences, not dimensions.
const (
	MinLengthM = 2.0
	MaxLengthM = 15.0
	MinWidthM  = 1.0
	MaxWidthM  = 4.0
	MinHeightM = 0.8
	MaxHeightM = 4.0
)

// Plausible reports whether the triple fits the envelope.
func (d Dimensions) Plausible() bool {
	return d.LengthM >= MinLengthM && d.LengthM <= MaxLengthM &&
		d.WidthM >= MinWidthM && d.WidthM <= MaxWidthM &&
		d.HeightM >= MinHeightM && d.HeightM <= MaxHeightM
}

// Map renders the triple for the extraction tree.
func (d Dimensions) Map() map[string]any {
	return map[string]any{
		"length_m": d.LengthM,
		"width_m":  d.WidthM,
		"height_m": d.HeightM,
	}
}

// extractDimensions recovers an L×W×H triple from text. The fallback chain:
// combined expression ("10,06m x 2,52m x 3,12m"), German phrasing ("800cm
// lang, 204cm breit, 232cm hoch"), then individually labeled fields. Every
// candidate must pass the plausibility envelope; implausible triples are
// rejected rather than guessed at.
func extractDimensions(catalog *patterns.Catalog, text string) (Dimensions, bool) {
	for _, name := range []string{"cargo.dimensions_lxwxh", "cargo.dimensions_phrased_de"} {
		if d, ok := tripleFromMatch(catalog.FindSubmatch(name, text)); ok {
			return d, true
		}
	}
	return labeledDimensions(catalog, text)
}

// tripleFromMatch builds a triple from a 6-group match (value, unit repeated
// three times). Unit suffixes may be elided; the last seen unit applies to
// earlier bare numbers, matching how people write "800 x 204 x 232 cm".
func tripleFromMatch(m []string) (Dimensions, bool) {
	if len(m) != 7 {
		return Dimensions{}, false
	}
	values := [3]float64{}
	units := [3]string{m[2], m[4], m[6]}

	// Backfill elided units from the rightmost explicit one.
	carry := ""
	for i := 2; i >= 0; i-- {
		if units[i] != "" {
			carry = units[i]
		} else {
			units[i] = carry
		}
	}

	raw := [3]float64{}
	for i, idx := range []int{1, 3, 5} {
		v, ok := ParseLocaleNumber(m[idx])
		if !ok {
			return Dimensions{}, false
		}
		raw[i] = v
	}

	// No units anywhere: large magnitudes are centimeters in practice.
	if carry == "" && raw[0] >= 50 && raw[1] >= 50 && raw[2] >= 50 {
		units = [3]string{"cm", "cm", "cm"}
	}

	for i := range raw {
		values[i] = ToMeters(raw[i], units[i])
	}

	d := Dimensions{LengthM: values[0], WidthM: values[1], HeightM: values[2]}
	if !d.Plausible() {
		return Dimensions{}, false
	}
	return d, true
}

// labeledDimensions tries individually labeled length/width/height fields.
func labeledDimensions(catalog *patterns.Catalog, text string) (Dimensions, bool) {
	dims := [3]float64{}
	names := []string{"cargo.length_labeled", "cargo.width_labeled", "cargo.height_labeled"}
	for i, name := range names {
		m := catalog.FindSubmatch(name, text)
		if len(m) < 2 {
			return Dimensions{}, false
		}
		v, ok := ParseLocaleNumber(m[1])
		if !ok {
			return Dimensions{}, false
		}
		unit := ""
		if len(m) > 2 {
			unit = m[2]
		}
		dims[i] = ToMeters(v, unit)
	}
	d := Dimensions{LengthM: dims[0], WidthM: dims[1], HeightM: dims[2]}
	if !d.Plausible() {
		return Dimensions{}, false
	}
	return d, true
}
