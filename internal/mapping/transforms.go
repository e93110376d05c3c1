package mapping

import (
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cargoflow/intake/internal/extract"
	"github.com/cargoflow/intake/internal/vehicleref"
)

//go:embed data/ports.yaml
var portsYAML []byte

// Transform is a pure, named value transformation. tree is the full
// extraction tree, available to composing transforms like format_cargo.
type Transform func(value any, tree map[string]any) any

// DimensionLookup is the optional external collaborator consulted when
// neither the document nor the reference specs yield cargo dimensions.
type DimensionLookup interface {
	Lookup(brand, model string, year int) (vehicleref.DimensionSpec, bool)
}

// Transformer holds the named transform registry plus the data tables the
// transforms close over. Unknown transform names are a no-op passthrough.
type Transformer struct {
	transforms map[string]Transform
	ports      portTable
	vehicles   vehicleref.Catalog
	dimLookup  DimensionLookup
	logger     *slog.Logger

	mu       sync.RWMutex
	dimCache map[string]vehicleref.DimensionSpec
}

type portTable struct {
	HubPort      string            `yaml:"hub_port"`
	HubCountries []string          `yaml:"hub_countries"`
	Cities       map[string]string `yaml:"cities"`
}

// NewTransformer builds the registry. vehicles may not be nil; dimLookup may.
func NewTransformer(vehicles vehicleref.Catalog, dimLookup DimensionLookup, logger *slog.Logger) (*Transformer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var ports portTable
	if err := yaml.Unmarshal(portsYAML, &ports); err != nil {
		return nil, fmt.Errorf("embedded port table: %w", err)
	}

	t := &Transformer{
		ports:    ports,
		vehicles: vehicles,
		dimLookup: dimLookup,
		logger:   logger,
		dimCache: make(map[string]vehicleref.DimensionSpec),
	}
	t.transforms = map[string]Transform{
		"city_to_port":      t.cityToPort,
		"currency_iso":      currencyISO,
		"title_case":        titleCase,
		"uppercase":         upper,
		"lowercase":         lower,
		"trim":              trim,
		"cm_to_m":           cmToM,
		"lb_to_kg":          lbToKg,
		"format_cargo":      t.formatCargo,
		"format_cargo_core": t.formatCargoCore,
		"format_dimensions": t.formatDimensions,
		"format_contact":    formatContact,
	}
	return t, nil
}

// Apply runs the named transform; unknown names pass the value through.
func (t *Transformer) Apply(name string, value any, tree map[string]any) any {
	if name == "" {
		return value
	}
	fn, ok := t.transforms[name]
	if !ok {
		t.logger.Debug("unknown transform, passing through", "transform", name)
		return value
	}
	return fn(value, tree)
}

// cityToPort resolves a free-text location to a canonical port. Hub-country
// locations always resolve to the regional hub; known cities map through the
// table; everything else passes through.
func (t *Transformer) cityToPort(value any, _ map[string]any) any {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return value
	}

	city, country := splitLocation(s)
	for _, hub := range t.ports.HubCountries {
		if strings.EqualFold(country, hub) {
			return t.ports.HubPort
		}
	}
	if port, ok := t.ports.Cities[strings.ToLower(city)]; ok {
		return port
	}
	return city
}

// splitLocation separates "Rotterdam, Netherlands" into city and country.
func splitLocation(s string) (city, country string) {
	parts := strings.Split(s, ",")
	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		country = strings.TrimSpace(parts[len(parts)-1])
	}
	return city, country
}

// formatCargo renders "1 x used BMW 7 Series" from the vehicle domain.
func (t *Transformer) formatCargo(_ any, tree map[string]any) any {
	qty := stringAt(tree, "vehicle.quantity")
	if qty == "" {
		qty = "1"
	}
	core := t.cargoCore(tree)
	if core == "" {
		return ""
	}
	return collapseSpaces(qty + " x " + core)
}

// formatCargoCore is the quantity-less variant reusable inside templates.
func (t *Transformer) formatCargoCore(_ any, tree map[string]any) any {
	return t.cargoCore(tree)
}

func (t *Transformer) cargoCore(tree map[string]any) string {
	parts := []string{
		stringAt(tree, "vehicle.condition"),
		stringAt(tree, "vehicle.brand"),
		stringAt(tree, "vehicle.model"),
	}
	if year := stringAt(tree, "vehicle.year"); year != "" {
		parts = append(parts, "("+year+")")
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return collapseSpaces(strings.Join(nonEmpty, " "))
}

// formatDimensions renders "10.06 x 2.52 x 3.12 m". It accepts an already
// formatted string or a components map; when the document carried nothing it
// falls back to reference vehicle specs, then the external lookup. Recovered
// triples must pass the plausibility envelope and are cached per
// make/model/year.
func (t *Transformer) formatDimensions(value any, tree map[string]any) any {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) != "" && strings.ContainsAny(v, "x×") {
			return v
		}
	case map[string]any:
		if s, ok := renderDims(numAt(v, "length_m"), numAt(v, "width_m"), numAt(v, "height_m")); ok {
			return s
		}
	}

	brand := stringAt(tree, "vehicle.brand")
	model := stringAt(tree, "vehicle.model")
	if brand == "" || model == "" {
		return ""
	}
	year := intAt(tree, "vehicle.year")

	if spec, ok := t.lookupDims(brand, model, year); ok {
		if s, ok := renderDims(spec.LengthM, spec.WidthM, spec.HeightM); ok {
			return s
		}
	}
	return ""
}

func (t *Transformer) lookupDims(brand, model string, year int) (vehicleref.DimensionSpec, bool) {
	key := strings.ToLower(brand) + "|" + strings.ToLower(model) + "|" + fmt.Sprint(year)

	t.mu.RLock()
	if spec, ok := t.dimCache[key]; ok {
		t.mu.RUnlock()
		return spec, true
	}
	t.mu.RUnlock()

	spec, ok := t.vehicles.Specs(brand, model, year)
	if !ok && t.dimLookup != nil {
		spec, ok = t.dimLookup.Lookup(brand, model, year)
	}
	if !ok || !plausibleSpec(spec) {
		return vehicleref.DimensionSpec{}, false
	}

	t.mu.Lock()
	t.dimCache[key] = spec
	t.mu.Unlock()
	return spec, true
}

func plausibleSpec(s vehicleref.DimensionSpec) bool {
	d := extract.Dimensions{LengthM: s.LengthM, WidthM: s.WidthM, HeightM: s.HeightM}
	return d.Plausible()
}

// renderDims formats a triple; zero components mean an incomplete triple.
func renderDims(l, w, h float64) (string, bool) {
	if l <= 0 || w <= 0 || h <= 0 {
		return "", false
	}
	return fmt.Sprintf("%.2f x %.2f x %.2f m", l, w, h), true
}

// formatContact renders a one-line contact block.
func formatContact(_ any, tree map[string]any) any {
	parts := []string{
		stringAt(tree, "contact.name"),
		stringAt(tree, "contact.email"),
		stringAt(tree, "contact.phone"),
		stringAt(tree, "contact.address"),
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " | ")
}

func currencyISO(value any, _ map[string]any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if iso := extract.CurrencyToISO(s); iso != "" {
		return iso
	}
	return value
}

func titleCase(value any, _ map[string]any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	return extract.NormalizeName(s)
}

func upper(value any, _ map[string]any) any {
	if s, ok := value.(string); ok {
		return strings.ToUpper(s)
	}
	return value
}

func lower(value any, _ map[string]any) any {
	if s, ok := value.(string); ok {
		return strings.ToLower(s)
	}
	return value
}

func trim(value any, _ map[string]any) any {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return value
}

func cmToM(value any, _ map[string]any) any {
	if f, ok := asFloat(value); ok {
		return f / 100
	}
	return value
}

func lbToKg(value any, _ map[string]any) any {
	if f, ok := asFloat(value); ok {
		return f * 0.453592
	}
	return value
}

// Tree accessors shared by transforms.

func stringAt(tree map[string]any, path string) string {
	v := Resolve(tree, path)
	if isBlank(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case int:
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

func intAt(tree map[string]any, path string) int {
	if f, ok := asFloat(Resolve(tree, path)); ok {
		return int(f)
	}
	return 0
}

func numAt(m map[string]any, key string) float64 {
	f, _ := asFloat(m[key])
	return f
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
