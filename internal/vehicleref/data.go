package vehicleref

import (
	"regexp"
	"strings"
)

// patternDef is a make/model recognition rule. Order in the table is the
// match priority: longer, more specific expressions come first so "BMW 7
// Series" wins over a bare "BMW".
type patternDef struct {
	expr  string
	brand string
	model string
}

var patternDefs = []patternDef{
	// Specific models first.
	{`(?i)\bBMW\s*7\s*(?:series|er|reihe)\b`, "BMW", "7 Series"},
	{`(?i)\bBMW\s*5\s*(?:series|er|reihe)\b`, "BMW", "5 Series"},
	{`(?i)\bBMW\s*3\s*(?:series|er|reihe)\b`, "BMW", "3 Series"},
	{`(?i)\bBMW\s*X([1-7])\b`, "BMW", "X$1"},
	{`(?i)\bMercedes(?:\-Benz)?\s*(?:S[\- ]?(?:Class|Klasse))\b`, "Mercedes-Benz", "S-Class"},
	{`(?i)\bMercedes(?:\-Benz)?\s*(?:E[\- ]?(?:Class|Klasse))\b`, "Mercedes-Benz", "E-Class"},
	{`(?i)\bMercedes(?:\-Benz)?\s*(?:C[\- ]?(?:Class|Klasse))\b`, "Mercedes-Benz", "C-Class"},
	{`(?i)\bMercedes(?:\-Benz)?\s*Sprinter\b`, "Mercedes-Benz", "Sprinter"},
	{`(?i)\bMercedes(?:\-Benz)?\s*Actros\b`, "Mercedes-Benz", "Actros"},
	{`(?i)\bVW\s*Golf\b|\bVolkswagen\s*Golf\b`, "Volkswagen", "Golf"},
	{`(?i)\bVW\s*Transporter\b|\bVolkswagen\s*T[456]\b`, "Volkswagen", "Transporter"},
	{`(?i)\bAudi\s*A([1-8])\b`, "Audi", "A$1"},
	{`(?i)\bAudi\s*Q([2-8])\b`, "Audi", "Q$1"},
	{`(?i)\bPorsche\s*911\b`, "Porsche", "911"},
	{`(?i)\bPorsche\s*Cayenne\b`, "Porsche", "Cayenne"},
	{`(?i)\bToyota\s*Land\s*Cruiser\b`, "Toyota", "Land Cruiser"},
	{`(?i)\bToyota\s*Hilux\b`, "Toyota", "Hilux"},
	{`(?i)\bFord\s*Transit\b`, "Ford", "Transit"},
	{`(?i)\bFord\s*Ranger\b`, "Ford", "Ranger"},
	{`(?i)\bLand\s*Rover\s*Defender\b`, "Land Rover", "Defender"},
	{`(?i)\bRange\s*Rover\b`, "Land Rover", "Range Rover"},
	// Machinery makes with model codes.
	{`(?i)\bCaterpillar\s*([0-9]{3}[A-Z]?[0-9]?)\b|\bCAT\s*([0-9]{3}[A-Z]?)\b`, "Caterpillar", "$1$2"},
	{`(?i)\bKomatsu\s*(PC[0-9]+(?:\-[0-9]+)?|WA[0-9]+|D[0-9]+[A-Z]*)\b`, "Komatsu", "$1"},
	{`(?i)\bVolvo\s*(EC[0-9]+[A-Z]*|L[0-9]+[A-Z]*|A[0-9]+[A-Z]*)\b`, "Volvo", "$1"},
	{`(?i)\bLiebherr\s*([A-Z]+\s?[0-9]+(?:\.[0-9]+)?)\b`, "Liebherr", "$1"},
	{`(?i)\bJCB\s*([0-9]+[A-Z]*(?:CX)?)\b`, "JCB", "$1"},
	{`(?i)\bHitachi\s*(ZX[0-9]+(?:\-[0-9]+)?)\b`, "Hitachi", "$1"},
	{`(?i)\bJohn\s*Deere\s*([0-9]+[A-Z]*)\b`, "John Deere", "$1"},
	{`(?i)\bFendt\s*([0-9]+)\b`, "Fendt", "$1"},
	// Bare makes last so specific models take priority.
	{`(?i)\bBMW\b`, "BMW", ""},
	{`(?i)\bMercedes(?:\-Benz)?\b`, "Mercedes-Benz", ""},
	{`(?i)\bVolkswagen\b|\bVW\b`, "Volkswagen", ""},
	{`(?i)\bAudi\b`, "Audi", ""},
	{`(?i)\bPorsche\b`, "Porsche", ""},
	{`(?i)\bToyota\b`, "Toyota", ""},
	{`(?i)\bFord\b`, "Ford", ""},
	{`(?i)\bCaterpillar\b|\bCAT\b`, "Caterpillar", ""},
	{`(?i)\bKomatsu\b`, "Komatsu", ""},
	{`(?i)\bLiebherr\b`, "Liebherr", ""},
	{`(?i)\bJCB\b`, "JCB", ""},
	{`(?i)\bHitachi\b`, "Hitachi", ""},
	{`(?i)\bJohn\s*Deere\b`, "John Deere", ""},
}

// compiledPatterns is built once at package init. Model may reference capture
// groups ($1); ResolveModel expands them against the match.
var compiledPatterns = compile()

func compile() []BrandModelPattern {
	out := make([]BrandModelPattern, 0, len(patternDefs))
	for _, def := range patternDefs {
		re, err := regexp.Compile(def.expr)
		if err != nil {
			continue
		}
		out = append(out, BrandModelPattern{Pattern: re, Brand: def.brand, Model: def.model})
	}
	return out
}

// ResolveModel expands capture-group references in the pattern's model
// template against text, returning the concrete model string.
func (p BrandModelPattern) ResolveModel(text string) string {
	if !strings.Contains(p.Model, "$") {
		return p.Model
	}
	m := p.Pattern.FindStringSubmatchIndex(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(string(p.Pattern.ExpandString(nil, p.Model, text, m)))
}

// referenceSpecs holds approximate transport dimensions (meters) for frequent
// cargo. Keyed by lower-case "brand|model".
var referenceSpecs = map[string]DimensionSpec{
	"bmw|7 series":            {LengthM: 5.39, WidthM: 1.95, HeightM: 1.54},
	"bmw|5 series":            {LengthM: 5.06, WidthM: 1.90, HeightM: 1.52},
	"bmw|3 series":            {LengthM: 4.71, WidthM: 1.83, HeightM: 1.44},
	"bmw|x5":                  {LengthM: 4.94, WidthM: 2.00, HeightM: 1.75},
	"mercedes-benz|s-class":   {LengthM: 5.29, WidthM: 1.95, HeightM: 1.50},
	"mercedes-benz|e-class":   {LengthM: 4.95, WidthM: 1.88, HeightM: 1.46},
	"mercedes-benz|sprinter":  {LengthM: 5.93, WidthM: 2.02, HeightM: 2.35},
	"mercedes-benz|actros":    {LengthM: 7.15, WidthM: 2.50, HeightM: 3.85},
	"volkswagen|golf":         {LengthM: 4.28, WidthM: 1.79, HeightM: 1.46},
	"volkswagen|transporter":  {LengthM: 4.90, WidthM: 1.90, HeightM: 1.99},
	"toyota|land cruiser":     {LengthM: 4.95, WidthM: 1.98, HeightM: 1.95},
	"toyota|hilux":            {LengthM: 5.33, WidthM: 1.86, HeightM: 1.82},
	"ford|transit":            {LengthM: 5.53, WidthM: 2.06, HeightM: 2.53},
	"land rover|defender":     {LengthM: 5.02, WidthM: 2.01, HeightM: 1.97},
	"porsche|911":             {LengthM: 4.52, WidthM: 1.85, HeightM: 1.30},
	"caterpillar|320":         {LengthM: 9.53, WidthM: 2.98, HeightM: 3.14},
	"caterpillar|950":         {LengthM: 8.58, WidthM: 2.99, HeightM: 3.43},
	"komatsu|pc210":           {LengthM: 9.43, WidthM: 2.80, HeightM: 3.04},
	"volvo|ec220":             {LengthM: 9.59, WidthM: 2.99, HeightM: 3.03},
	"jcb|3cx":                 {LengthM: 5.62, WidthM: 2.35, HeightM: 3.61},
	"liebherr|r 920":          {LengthM: 9.40, WidthM: 2.98, HeightM: 3.02},
	"john deere|6120":         {LengthM: 4.49, WidthM: 2.49, HeightM: 2.93},
}

func lookupSpec(brand, model string) (DimensionSpec, bool) {
	key := strings.ToLower(strings.TrimSpace(brand)) + "|" + strings.ToLower(strings.TrimSpace(model))
	spec, ok := referenceSpecs[key]
	return spec, ok
}
