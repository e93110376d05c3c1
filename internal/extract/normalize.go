package extract

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
)

// ParseLocaleNumber parses a number that may use either comma or dot as the
// decimal separator and the other as a thousands separator ("18.750" ->
// 18750, "10,06" -> 10.06, "1.234,56" -> 1234.56).
func ParseLocaleNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present: the later one is the decimal separator.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = normalizeSingleSeparator(s, ",", lastComma)
	case lastDot >= 0:
		s = normalizeSingleSeparator(s, ".", lastDot)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// normalizeSingleSeparator decides whether a lone separator is a thousands
// or a decimal mark. Exactly three trailing digits after the only separator
// means thousands ("18.750"); anything else is a decimal ("10,06", "3.5").
func normalizeSingleSeparator(s, sep string, last int) string {
	digitsAfter := len(s) - last - 1
	seps := strings.Count(s, sep)
	if digitsAfter == 3 && seps >= 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	if seps > 1 {
		// Multiple separators can only be grouping marks.
		return strings.ReplaceAll(s, sep, "")
	}
	return strings.Replace(s, sep, ".", 1)
}

// lengthToMeters maps length units to meters.
var lengthToMeters = map[string]float64{
	"mm": 0.001,
	"cm": 0.01,
	"m":  1,
	"ft": 0.3048,
	"in": 0.0254,
	"'":  0.3048,
	`"`:  0.0254,
}

// ToMeters converts a value in the given unit to meters. An empty unit is
// taken as meters already.
func ToMeters(value float64, unit string) float64 {
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		return value
	}
	if mult, ok := lengthToMeters[unit]; ok {
		return value * mult
	}
	return value
}

// weightToKg maps weight units to kilograms.
var weightToKg = map[string]float64{
	"kg":     1,
	"kgs":    1,
	"kilo":   1,
	"t":      1000,
	"to":     1000,
	"ton":    1000,
	"tons":   1000,
	"tonne":  1000,
	"tonnen": 1000,
	"lb":     0.453592,
	"lbs":    0.453592,
	"pound":  0.453592,
	"pounds": 0.453592,
}

// ToKilograms converts a value in the given unit to kilograms. An empty unit
// is taken as kilograms already.
func ToKilograms(value float64, unit string) float64 {
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		return value
	}
	if mult, ok := weightToKg[strings.TrimSuffix(unit, ".")]; ok {
		return value * mult
	}
	return value
}

// currencyISO maps symbols and spellings to ISO 4217 codes.
var currencyISO = map[string]string{
	"€":      "EUR",
	"eur":    "EUR",
	"euro":   "EUR",
	"euros":  "EUR",
	"$":      "USD",
	"usd":    "USD",
	"dollar": "USD",
	"£":      "GBP",
	"gbp":    "GBP",
	"chf":    "CHF",
	"¥":      "JPY",
	"jpy":    "JPY",
}

// CurrencyToISO maps a currency symbol or spelling to its ISO code. Unknown
// inputs pass through upper-cased when they already look like a code.
func CurrencyToISO(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if iso, ok := currencyISO[key]; ok {
		return iso
	}
	up := strings.ToUpper(strings.TrimSpace(s))
	if len(up) == 3 {
		return up
	}
	return ""
}

// NormalizeEmail lower-cases and RFC-validates an email address. Returns
// empty on anything that does not parse.
func NormalizeEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return ""
	}
	return addr.Address
}

// genericMailboxPrefixes are shared role addresses that should never be
// treated as a personal contact on their own.
var genericMailboxPrefixes = []string{
	"noreply", "no-reply", "donotreply", "info", "admin", "office",
	"sales", "support", "contact", "mail", "post", "service",
}

// IsGenericMailbox reports whether the address is a shared role mailbox.
func IsGenericMailbox(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	local := strings.ToLower(email[:at])
	for _, prefix := range genericMailboxPrefixes {
		if local == prefix || strings.HasPrefix(local, prefix+".") || strings.HasPrefix(local, prefix+"-") {
			return true
		}
	}
	return false
}

var nonPhoneRe = regexp.MustCompile(`[^0-9+]`)

// NormalizePhone strips a phone candidate to digits and a leading plus, then
// applies plausibility checks that reject booking references and other digit
// runs: length bounds, no long repeated-digit runs, no long ascending runs.
func NormalizePhone(s string) string {
	p := nonPhoneRe.ReplaceAllString(strings.TrimSpace(s), "")
	if strings.HasPrefix(p, "00") {
		p = "+" + p[2:]
	}
	digits := strings.TrimPrefix(p, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return ""
	}
	if repeatedRun(digits) >= 6 || sequentialRun(digits) >= 6 {
		return ""
	}
	return p
}

func repeatedRun(s string) int {
	best, run := 0, 0
	var prev byte
	for i := 0; i < len(s); i++ {
		if i > 0 && s[i] == prev {
			run++
		} else {
			run = 1
		}
		prev = s[i]
		if run > best {
			best = run
		}
	}
	return best
}

func sequentialRun(s string) int {
	best, run := 0, 0
	for i := 0; i < len(s); i++ {
		if i > 0 && s[i] == s[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// honorifics and signature artifacts stripped from person names.
var honorifics = map[string]bool{
	"mr": true, "mr.": true, "mrs": true, "mrs.": true, "ms": true, "ms.": true,
	"dr": true, "dr.": true, "prof": true, "prof.": true,
	"herr": true, "frau": true, "dhr": true, "dhr.": true, "mevr": true, "mevr.": true,
	"m.": true, "mme": true, "mme.": true,
}

var signatureArtifactRe = regexp.MustCompile(`(?i)\b(sent from my \w+|mit freundlichen gr[uü]ßen|best regards|kind regards|regards|mfg)\b.*`)

// NormalizeName title-cases a person name, dropping honorifics and trailing
// signature artifacts.
func NormalizeName(s string) string {
	s = signatureArtifactRe.ReplaceAllString(s, "")
	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if honorifics[strings.ToLower(w)] {
			continue
		}
		out = append(out, titleWord(w))
	}
	return strings.Join(out, " ")
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	// Preserve all-caps legal forms and initialisms.
	if len(w) <= 3 && w == strings.ToUpper(w) {
		return w
	}
	runes := []rune(strings.ToLower(w))
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}

// vinRe matches the 17-character VIN alphabet, which excludes I, O and Q.
var vinRe = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// ValidVIN reports whether s is a structurally valid VIN.
func ValidVIN(s string) bool {
	return vinRe.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}
