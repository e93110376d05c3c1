// Package vehicleref is the read-only vehicle reference-data collaborator:
// brand/model recognition patterns, VIN decoding, and reference dimension
// specs for common machines and vehicles.
package vehicleref

import (
	"regexp"
	"strings"
	"sync"
)

// Record identifies a recognized vehicle or machine.
type Record struct {
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Category string `json:"category"` // "vehicle" or an equipment type
}

// VINInfo is what a VIN decode yields.
type VINInfo struct {
	Year         int    `json:"year"`
	Manufacturer string `json:"manufacturer"`
	Region       string `json:"region"`
}

// BrandModelPattern recognizes one make/model in free text.
type BrandModelPattern struct {
	Pattern *regexp.Regexp
	Brand   string
	Model   string
}

// DimensionSpec is a reference L/W/H in meters.
type DimensionSpec struct {
	LengthM float64 `json:"length_m"`
	WidthM  float64 `json:"width_m"`
	HeightM float64 `json:"height_m"`
}

// Catalog is the collaborator contract the extraction and mapping engines
// depend on. Implementations must be safe for concurrent reads.
type Catalog interface {
	// FindVehicle resolves a free-text candidate to a record, most specific
	// pattern first.
	FindVehicle(candidate string) (Record, bool)
	// DecodeVIN decodes year and manufacturer from a VIN.
	DecodeVIN(vin string) (VINInfo, bool)
	// BrandModelPatterns returns the prioritized recognition patterns.
	BrandModelPatterns() []BrandModelPattern
	// Specs returns reference dimensions for a make/model/year when known.
	Specs(brand, model string, year int) (DimensionSpec, bool)
}

// Static is the built-in Catalog backed by compiled-in tables.
type Static struct {
	patterns []BrandModelPattern

	mu        sync.RWMutex
	specCache map[string]DimensionSpec
}

// NewStatic builds the static catalog. Patterns are ordered longest/most
// specific first so the first match wins deterministically.
func NewStatic() *Static {
	return &Static{
		patterns:  compiledPatterns,
		specCache: make(map[string]DimensionSpec),
	}
}

// FindVehicle resolves candidate against the pattern table.
func (s *Static) FindVehicle(candidate string) (Record, bool) {
	for _, p := range s.patterns {
		if p.Pattern.MatchString(candidate) {
			return Record{Brand: p.Brand, Model: p.ResolveModel(candidate), Category: "vehicle"}, true
		}
	}
	return Record{}, false
}

// BrandModelPatterns returns the prioritized pattern table.
func (s *Static) BrandModelPatterns() []BrandModelPattern {
	return s.patterns
}

// vinYearCodes maps VIN position-10 codes to model years. Letters I, O, Q, U,
// Z and digit 0 are never used.
var vinYearCodes = map[byte]int{
	'A': 2010, 'B': 2011, 'C': 2012, 'D': 2013, 'E': 2014, 'F': 2015,
	'G': 2016, 'H': 2017, 'J': 2018, 'K': 2019, 'L': 2020, 'M': 2021,
	'N': 2022, 'P': 2023, 'R': 2024, 'S': 2025, 'T': 2026,
	'1': 2001, '2': 2002, '3': 2003, '4': 2004, '5': 2005,
	'6': 2006, '7': 2007, '8': 2008, '9': 2009,
}

// wmiManufacturers maps world-manufacturer-identifier prefixes to makers.
var wmiManufacturers = map[string]string{
	"WBA": "BMW", "WBS": "BMW", "WBY": "BMW",
	"WDB": "Mercedes-Benz", "WDD": "Mercedes-Benz", "W1K": "Mercedes-Benz",
	"WVW": "Volkswagen", "WV1": "Volkswagen", "WV2": "Volkswagen",
	"WAU": "Audi", "TRU": "Audi",
	"WP0": "Porsche", "WP1": "Porsche",
	"VF1": "Renault", "VF3": "Peugeot", "VF7": "Citroën",
	"ZFA": "Fiat", "ZAR": "Alfa Romeo",
	"JHM": "Honda", "JTD": "Toyota", "JT1": "Toyota",
	"1FT": "Ford", "1FA": "Ford", "1GC": "Chevrolet",
	"SAL": "Land Rover", "SAJ": "Jaguar",
	"YV1": "Volvo", "YS3": "Saab",
}

// DecodeVIN decodes the model year (position 10) and manufacturer (WMI).
func (s *Static) DecodeVIN(vin string) (VINInfo, bool) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if len(vin) != 17 {
		return VINInfo{}, false
	}
	info := VINInfo{}
	if year, ok := vinYearCodes[vin[9]]; ok {
		info.Year = year
	}
	if maker, ok := wmiManufacturers[vin[:3]]; ok {
		info.Manufacturer = maker
	}
	switch vin[0] {
	case '1', '2', '3', '4', '5':
		info.Region = "North America"
	case 'J', 'K', 'L', 'M', 'N', 'P', 'R':
		info.Region = "Asia"
	case 'S', 'T', 'V', 'W', 'X', 'Y', 'Z':
		info.Region = "Europe"
	}
	if info.Year == 0 && info.Manufacturer == "" {
		return VINInfo{}, false
	}
	return info, true
}

// Specs returns reference dimensions, consulting the static table first and
// caching by make/model/year so repeat lookups are O(1).
func (s *Static) Specs(brand, model string, year int) (DimensionSpec, bool) {
	key := specKey(brand, model, year)

	s.mu.RLock()
	if spec, ok := s.specCache[key]; ok {
		s.mu.RUnlock()
		return spec, true
	}
	s.mu.RUnlock()

	spec, ok := lookupSpec(brand, model)
	if !ok {
		return DimensionSpec{}, false
	}

	s.mu.Lock()
	s.specCache[key] = spec
	s.mu.Unlock()
	return spec, true
}

func specKey(brand, model string, year int) string {
	return strings.ToLower(brand) + "|" + strings.ToLower(model) + "|" + itoa(year)
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	digits := [8]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}
