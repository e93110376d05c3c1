package extract

import (
	"log/slog"

	"github.com/cargoflow/intake/internal/patterns"
	"github.com/cargoflow/intake/internal/vehicleref"
)

// Engine runs the per-domain extractors over every available source and
// merges the results. Safe for concurrent use; all state is read-only.
type Engine struct {
	catalog  *patterns.Catalog
	vehicles vehicleref.Catalog
	logger   *slog.Logger
}

// NewEngine creates an extraction engine.
func NewEngine(catalog *patterns.Catalog, vehicles vehicleref.Catalog, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{catalog: catalog, vehicles: vehicles, logger: logger}
}

// Extract produces the semantic result for one document's inputs. Sources
// are processed in trust order (structured > metadata > patterns > messages);
// the monotonic merge in Domain.Set means weaker sources only fill gaps.
func (e *Engine) Extract(in Input) *Result {
	r := &Result{
		Contact:  NewDomain("contact"),
		Vehicle:  NewDomain("vehicle"),
		Shipment: NewDomain("shipment"),
		Pricing:  NewDomain("pricing"),
		Dates:    NewDomain("dates"),
		Cargo:    NewDomain("cargo"),
	}

	for _, origin := range trustOrder {
		switch origin {
		case OriginStructured:
			e.applyStructured(r, in.Structured)
		case OriginMetadata:
			if len(in.Metadata) > 0 {
				extractContactMetadata(&r.Contact, in.Metadata)
				e.applyText(r, in.Metadata["Subject"], OriginMetadata)
			}
		case OriginPatterns:
			e.applyText(r, in.Text, OriginPatterns)
		case OriginMessages:
			for _, msg := range in.Messages {
				e.applyText(r, msg, OriginMessages)
			}
		}
	}

	r.Confidence = e.overallConfidence(r)
	return r
}

// applyText runs every domain extractor against one text source.
func (e *Engine) applyText(r *Result, text string, origin Origin) {
	if text == "" {
		return
	}
	extractContactText(&r.Contact, e.catalog, text, origin)
	extractVehicleText(&r.Vehicle, &r.Cargo, e.catalog, e.vehicles, text, origin)
	extractShipmentText(&r.Shipment, e.catalog, text, origin)
	extractPricingText(&r.Pricing, e.catalog, text, origin)
	extractDatesText(&r.Dates, e.catalog, text, origin)
	extractCargoText(&r.Cargo, e.catalog, text, origin)
}

// applyStructured fills domains from already-keyed side-channel data shaped
// as {"contact": {"email": ...}, "vehicle": {...}, ...}.
func (e *Engine) applyStructured(r *Result, data map[string]any) {
	if len(data) == 0 {
		return
	}
	targets := map[string]*Domain{
		"contact":  &r.Contact,
		"vehicle":  &r.Vehicle,
		"shipment": &r.Shipment,
		"pricing":  &r.Pricing,
		"dates":    &r.Dates,
		"cargo":    &r.Cargo,
	}
	for domainName, raw := range data {
		target, ok := targets[domainName]
		if !ok {
			continue
		}
		fields, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		for name, value := range fields {
			target.Set(name, normalizeStructured(domainName, name, value), OriginStructured)
		}
	}
}

// normalizeStructured applies the same normalization to side-channel values
// as the text extractors apply to pattern matches.
func normalizeStructured(domain, field string, value any) any {
	s, isString := value.(string)
	if !isString {
		return value
	}
	switch domain + "." + field {
	case "contact.email":
		return NormalizeEmail(s)
	case "contact.phone":
		return NormalizePhone(s)
	case "contact.name":
		return NormalizeName(s)
	case "pricing.currency":
		return CurrencyToISO(s)
	case "vehicle.vin":
		if !ValidVIN(s) {
			return nil
		}
		return s
	default:
		return s
	}
}

// Per-domain weights reflect how much each domain matters for a usable
// quotation record.
var domainWeights = map[string]float64{
	"contact":  0.25,
	"vehicle":  0.2,
	"shipment": 0.25,
	"pricing":  0.1,
	"dates":    0.1,
	"cargo":    0.1,
}

// overallConfidence blends achieved completeness with the average confidence
// of contributing sources.
func (e *Engine) overallConfidence(r *Result) float64 {
	var total, weightSum float64
	for _, d := range r.domains() {
		weight := domainWeights[d.Name]
		completeness := d.Completeness(expectedAttrs[d.Name])
		avg := d.AvgConfidence()
		total += weight * (0.6*completeness + 0.4*avg)
		weightSum += weight
	}
	if weightSum == 0 {
		return 0
	}
	conf := total / weightSum
	if conf > 1 {
		conf = 1
	}
	return conf
}
