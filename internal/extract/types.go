// Package extract implements the pattern and field extraction engine. It
// turns free text plus optional structured side-channel data into semantic
// fields with confidence and provenance.
package extract

import "sort"

// Origin identifies which source class produced a value. Sources are merged
// in descending trust order.
type Origin string

const (
	OriginStructured Origin = "structured_data"
	OriginMetadata   Origin = "metadata"
	OriginPatterns   Origin = "content_patterns"
	OriginMessages   Origin = "messages"
)

// Confidence returns the base trust assigned to the origin.
func (o Origin) Confidence() float64 {
	switch o {
	case OriginStructured:
		return 0.95
	case OriginMetadata:
		return 0.9
	case OriginPatterns:
		return 0.7
	case OriginMessages:
		return 0.6
	default:
		return 0.5
	}
}

// trustOrder lists origins from most to least trusted.
var trustOrder = []Origin{OriginStructured, OriginMetadata, OriginPatterns, OriginMessages}

// Provenance records one source that contributed to a field.
type Provenance struct {
	Origin     Origin  `json:"origin"`
	Confidence float64 `json:"confidence"`
}

// Field is a single extracted attribute.
type Field struct {
	Value      any          `json:"value"`
	Confidence float64      `json:"confidence"`
	Sources    []Provenance `json:"sources,omitempty"`
}

// Domain is a named group of semantic fields (contact, vehicle, ...).
type Domain struct {
	Name   string           `json:"name"`
	Fields map[string]Field `json:"fields"`
}

// NewDomain creates an empty domain.
func NewDomain(name string) Domain {
	return Domain{Name: name, Fields: make(map[string]Field)}
}

// Set fills the attribute if it is still empty. Existing non-blank values are
// never overwritten, which is what makes the merge monotonic: callers run
// sources in confidence-descending order and later (weaker) sources cannot
// displace earlier ones. The provenance list still records the extra source.
func (d *Domain) Set(name string, value any, origin Origin) bool {
	return d.SetWithConfidence(name, value, origin, origin.Confidence())
}

// SetWithConfidence is Set with an explicit confidence, used when a source
// is demoted (e.g. generic mailbox addresses).
func (d *Domain) SetWithConfidence(name string, value any, origin Origin, confidence float64) bool {
	if isBlank(value) {
		return false
	}
	existing, ok := d.Fields[name]
	if ok && !isBlank(existing.Value) {
		existing.Sources = append(existing.Sources, Provenance{Origin: origin, Confidence: confidence})
		d.Fields[name] = existing
		return false
	}
	d.Fields[name] = Field{
		Value:      value,
		Confidence: confidence,
		Sources:    append(existing.Sources, Provenance{Origin: origin, Confidence: confidence}),
	}
	return true
}

// Get returns the field value, or nil when absent.
func (d Domain) Get(name string) any {
	f, ok := d.Fields[name]
	if !ok {
		return nil
	}
	return f.Value
}

// GetString returns the field as a string, empty when absent or non-string.
func (d Domain) GetString(name string) string {
	s, _ := d.Get(name).(string)
	return s
}

// Completeness is the fraction of expected attributes that are filled.
func (d Domain) Completeness(expected []string) float64 {
	if len(expected) == 0 {
		return 1
	}
	filled := 0
	for _, name := range expected {
		if f, ok := d.Fields[name]; ok && !isBlank(f.Value) {
			filled++
		}
	}
	return float64(filled) / float64(len(expected))
}

// AvgConfidence averages the confidence of filled fields; 0 when empty.
func (d Domain) AvgConfidence() float64 {
	var sum float64
	n := 0
	for _, f := range d.Fields {
		if !isBlank(f.Value) {
			sum += f.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Tree renders the domain as a plain map for path resolution.
func (d Domain) Tree() map[string]any {
	out := make(map[string]any, len(d.Fields))
	for name, f := range d.Fields {
		out[name] = f.Value
	}
	return out
}

// Names returns the sorted filled field names.
func (d Domain) Names() []string {
	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Input is everything the engine may draw from for one document.
type Input struct {
	// Text is the acquired document text.
	Text string
	// Metadata holds protocol-level key/values (email headers, PDF info).
	Metadata map[string]string
	// Structured is side-channel data that arrived already keyed, e.g. a web
	// form payload or an AI extraction result.
	Structured map[string]any
	// Messages is conversational history (quoted reply chains).
	Messages []string
}

// Result is the semantic extraction output for one document.
type Result struct {
	Contact  Domain `json:"contact"`
	Vehicle  Domain `json:"vehicle"`
	Shipment Domain `json:"shipment"`
	Pricing  Domain `json:"pricing"`
	Dates    Domain `json:"dates"`
	Cargo    Domain `json:"cargo"`

	// Confidence blends completeness with source trust, in [0,1].
	Confidence float64 `json:"confidence"`
}

// Expected attributes per domain, used for completeness scoring.
var expectedAttrs = map[string][]string{
	"contact":  {"name", "email", "phone", "company", "address", "client_type"},
	"vehicle":  {"brand", "model", "year", "condition"},
	"shipment": {"origin", "destination", "transport_mode"},
	"pricing":  {"amount", "currency"},
	"dates":    {"pickup_date", "delivery_date"},
	"cargo":    {"category", "weight_kg", "dimensions"},
}

// Tree renders the full result as a nested map, the shape the mapping engine
// resolves paths against.
func (r *Result) Tree() map[string]any {
	return map[string]any{
		"contact":  r.Contact.Tree(),
		"vehicle":  r.Vehicle.Tree(),
		"shipment": r.Shipment.Tree(),
		"pricing":  r.Pricing.Tree(),
		"dates":    r.Dates.Tree(),
		"cargo":    r.Cargo.Tree(),
	}
}

// domains iterates the result's domains in a fixed order.
func (r *Result) domains() []*Domain {
	return []*Domain{&r.Contact, &r.Vehicle, &r.Shipment, &r.Pricing, &r.Dates, &r.Cargo}
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	default:
		return false
	}
}
