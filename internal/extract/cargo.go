package extract

import (
	"github.com/cargoflow/intake/internal/patterns"
)

// extractCargoText pulls weight and dimensions. Category is set by the
// vehicle extractor (equipment takes precedence over generic vehicles).
func extractCargoText(d *Domain, catalog *patterns.Catalog, text string, origin Origin) {
	if m := catalog.FindSubmatch("cargo.weight", text); len(m) == 3 {
		if v, ok := ParseLocaleNumber(m[1]); ok && v > 0 {
			kg := ToKilograms(v, m[2])
			// A cargo weight under a kilogram or over a thousand tonnes is
			// noise, not freight.
			if kg >= 1 && kg <= 1_000_000 {
				d.Set("weight_kg", kg, origin)
			}
		}
	}

	if dims, ok := extractDimensions(catalog, text); ok {
		d.Set("dimensions", dims.Map(), origin)
	}
}
