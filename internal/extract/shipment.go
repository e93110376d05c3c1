package extract

import (
	"strings"

	"github.com/cargoflow/intake/internal/patterns"
)

// extractShipmentText pulls route, incoterm, container and transport mode.
func extractShipmentText(d *Domain, catalog *patterns.Catalog, text string, origin Origin) {
	if from := cleanLocation(catalog.Find("shipment.origin", text)); from != "" {
		d.Set("origin", from, origin)
	}
	if to := cleanLocation(catalog.Find("shipment.destination", text)); to != "" {
		d.Set("destination", to, origin)
	}

	// Arrow routes ("Antwerp -> Lagos") fill whatever the labels missed.
	if m := catalog.FindSubmatch("shipment.route_arrow", text); len(m) == 3 {
		d.Set("origin", cleanLocation(m[1]), origin)
		d.Set("destination", cleanLocation(m[2]), origin)
	}

	if inc := catalog.Find("shipment.incoterm", text); inc != "" {
		d.Set("incoterm", strings.ToUpper(inc), origin)
	}
	if mode := catalog.Find("shipment.transport_mode", text); mode != "" {
		d.Set("transport_mode", normalizeMode(mode), origin)
	}
	if m := catalog.FindSubmatch("shipment.container", text); len(m) >= 2 {
		size := m[1]
		kind := "DV"
		if len(m) >= 3 && m[2] != "" {
			kind = strings.ToUpper(m[2])
		}
		d.Set("container_type", size+kind, origin)
	}
}

// cleanLocation trims label spill-over from a captured location.
func cleanLocation(s string) string {
	s = strings.TrimSpace(s)
	// Captures run to a line break or sentence end in practice; cut there.
	for _, stop := range []string{"\n", "  ", " - ", ";"} {
		if i := strings.Index(s, stop); i > 0 {
			s = s[:i]
		}
	}
	s = strings.Trim(s, " ,.-")
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}

var modeAliases = map[string]string{
	"roro": "roro", "ro-ro": "roro",
	"container":  "container",
	"flatrack":   "flatrack",
	"flat rack":  "flatrack",
	"breakbulk":  "breakbulk",
	"break bulk": "breakbulk",
	"airfreight": "air", "air freight": "air",
	"seafreight": "sea", "sea freight": "sea",
	"truck": "road", "trucking": "road",
	"rail": "rail",
}

func normalizeMode(s string) string {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if mode, ok := modeAliases[key]; ok {
		return mode
	}
	return key
}
