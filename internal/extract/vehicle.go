package extract

import (
	"strings"

	"github.com/cargoflow/intake/internal/patterns"
	"github.com/cargoflow/intake/internal/vehicleref"
)

// extractVehicleText recognizes brand/model, VIN, year and condition.
// Equipment-type recognition runs first because it changes the downstream
// cargo category; a "CAT 320 excavator" is machinery, not a car.
func extractVehicleText(d *Domain, cargo *Domain, catalog *patterns.Catalog, vehicles vehicleref.Catalog, text string, origin Origin) {
	if equip := catalog.Find("cargo.equipment", text); equip != "" {
		cargo.Set("category", normalizeEquipment(equip), origin)
	}

	// Prioritized make/model table: first (most specific) match wins.
	for _, p := range vehicles.BrandModelPatterns() {
		if !p.Pattern.MatchString(text) {
			continue
		}
		d.Set("brand", p.Brand, origin)
		if model := p.ResolveModel(text); model != "" {
			d.Set("model", model, origin)
		}
		break
	}

	if vin := catalog.Find("vehicle.vin", text); vin != "" && ValidVIN(vin) {
		d.Set("vin", strings.ToUpper(vin), origin)
		if info, ok := vehicles.DecodeVIN(vin); ok {
			if info.Year > 0 {
				d.Set("year", info.Year, origin)
			}
			if info.Manufacturer != "" {
				d.Set("brand", info.Manufacturer, origin)
			}
		}
	}

	if year := catalog.Find("vehicle.year", text); year != "" {
		if v, ok := ParseLocaleNumber(year); ok {
			d.Set("year", int(v), origin)
		}
	}

	if cond := catalog.Find("vehicle.condition", text); cond != "" {
		d.Set("condition", normalizeCondition(cond), origin)
	}

	if qty := catalog.Find("vehicle.quantity", text); qty != "" {
		if v, ok := ParseLocaleNumber(qty); ok && v >= 1 && v < 1000 {
			d.Set("quantity", int(v), origin)
		}
	}

	if km := catalog.Find("vehicle.mileage", text); km != "" {
		if v, ok := ParseLocaleNumber(km); ok {
			d.Set("mileage_km", v, origin)
		}
	}

	// No explicit cargo category yet: a recognized vehicle implies one.
	if d.Get("brand") != nil && cargo.Get("category") == nil {
		cargo.Set("category", "vehicle", origin)
	}
}

var conditionAliases = map[string]string{
	"neu": "new", "new": "new",
	"gebraucht": "used", "used": "used", "occasion": "used",
	"damaged": "damaged", "unfall": "damaged",
}

func normalizeCondition(s string) string {
	if c, ok := conditionAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c
	}
	return strings.ToLower(strings.TrimSpace(s))
}

var equipmentAliases = map[string]string{
	"bagger":        "excavator",
	"radlader":      "wheel loader",
	"gabelstapler":  "forklift",
	"kran":          "crane",
	"traktor":       "tractor",
	"walze":         "roller",
	"teleskoplader": "telehandler",
	"dozer":         "bulldozer",
}

func normalizeEquipment(s string) string {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if canonical, ok := equipmentAliases[key]; ok {
		return canonical
	}
	return key
}
