package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/cargoflow/intake/internal/patterns"
)

// dateWindow bounds how far after a role keyword a date may appear. A date
// with no keyword in range is dropped rather than assigned to the wrong role.
const dateWindow = 80

var dateRoleKeywords = map[string]*regexp.Regexp{
	"pickup_date":   regexp.MustCompile(`(?i)\b(pickup|pick\-up|collection|abholung|abholtermin|etd|departure|loading date|verladung)\b`),
	"delivery_date": regexp.MustCompile(`(?i)\b(delivery|lieferung|liefertermin|eta|arrival|discharge date|ankunft)\b`),
}

// extractDatesText finds pickup/delivery dates inside keyword windows.
func extractDatesText(d *Domain, catalog *patterns.Catalog, text string, origin Origin) {
	for role, keyword := range dateRoleKeywords {
		loc := keyword.FindStringIndex(text)
		if loc == nil {
			continue
		}
		end := loc[1] + dateWindow
		if end > len(text) {
			end = len(text)
		}
		window := text[loc[1]:end]

		if t, ok := findDate(catalog, window); ok {
			d.Set(role, t.Format("2006-01-02"), origin)
		}
	}
}

// findDate tries the three supported shapes in the window: ISO, numeric
// D/M/Y, textual month.
func findDate(catalog *patterns.Catalog, window string) (time.Time, bool) {
	if iso := catalog.Find("dates.iso", window); iso != "" {
		if t, err := time.Parse("2006-01-02", iso); err == nil {
			return t, true
		}
	}
	if num := catalog.Find("dates.numeric", window); num != "" {
		if t, ok := parseNumericDate(num); ok {
			return t, true
		}
	}
	if txt := catalog.Find("dates.textual", window); txt != "" {
		if t, ok := parseTextualDate(txt); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumericDate handles D/M/Y with ., / or - separators. European
// quotations write day first; a first component over 31 means Y/M/D.
func parseNumericDate(s string) (time.Time, bool) {
	sep := "."
	for _, c := range []string{"/", "-"} {
		if strings.Contains(s, c) {
			sep = c
		}
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return time.Time{}, false
	}

	layouts := []string{"2.1.2006", "2.1.06", "2006.1.2"}
	normalized := strings.Join(parts, ".")
	for _, layout := range layouts {
		if t, err := time.Parse(layout, normalized); err == nil && plausibleDate(t) {
			return t, true
		}
	}
	return time.Time{}, false
}

var monthAliases = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "mär": time.March,
	"apr": time.April, "may": time.May, "mai": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"okt": time.October, "oct": time.October, "nov": time.November,
	"dec": time.December, "dez": time.December,
}

var textualDateRe = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)?\.?\s*([a-zä]+)\.?,?\s*(\d{2,4})$`)

// parseTextualDate handles "15 March 2025", "3. Okt 24" and similar.
func parseTextualDate(s string) (time.Time, bool) {
	m := textualDateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	day, _ := ParseLocaleNumber(m[1])
	year, _ := ParseLocaleNumber(m[3])
	if year < 100 {
		year += 2000
	}
	monthKey := strings.ToLower(m[2])
	if r := []rune(monthKey); len(r) > 3 {
		monthKey = string(r[:3])
	}
	month, ok := monthAliases[monthKey]
	if !ok {
		return time.Time{}, false
	}
	t := time.Date(int(year), month, int(day), 0, 0, 0, 0, time.UTC)
	if t.Day() != int(day) || !plausibleDate(t) {
		return time.Time{}, false
	}
	return t, true
}

// plausibleDate rejects dates far outside a shipping-relevant range.
func plausibleDate(t time.Time) bool {
	return t.Year() >= 2000 && t.Year() <= 2099
}
