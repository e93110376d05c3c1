package extract

import (
	"github.com/cargoflow/intake/internal/patterns"
)

// extractPricingText pulls amounts and currency. Symbol-prefixed amounts are
// preferred over suffixed ones since they are less ambiguous.
func extractPricingText(d *Domain, catalog *patterns.Catalog, text string, origin Origin) {
	if m := catalog.FindSubmatch("pricing.amount_prefixed", text); len(m) == 3 {
		if v, ok := ParseLocaleNumber(m[2]); ok && v > 0 {
			d.Set("amount", v, origin)
			if iso := CurrencyToISO(m[1]); iso != "" {
				d.Set("currency", iso, origin)
			}
		}
	}
	if m := catalog.FindSubmatch("pricing.amount_suffixed", text); len(m) == 3 {
		if v, ok := ParseLocaleNumber(m[1]); ok && v > 0 {
			d.Set("amount", v, origin)
			if iso := CurrencyToISO(m[2]); iso != "" {
				d.Set("currency", iso, origin)
			}
		}
	}
	if budget := catalog.Find("pricing.budget", text); budget != "" {
		if v, ok := ParseLocaleNumber(budget); ok && v > 0 {
			d.Set("budget", v, origin)
		}
	}
}
