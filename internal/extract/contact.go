package extract

import (
	"regexp"
	"strings"

	"github.com/cargoflow/intake/internal/patterns"
)

// genericMailboxPenalty demotes shared role addresses without discarding
// them; they never satisfy contact completeness alone.
const genericMailboxPenalty = 0.3

// knownCountries recognizes the countries freight quotations mention, with a
// leading city token captured when present.
var countryRe = regexp.MustCompile(`(?i)\b(?:([A-Z][\p{L}\-]{2,25})[,\s]+)?(Belgium|Belgien|België|Netherlands|Niederlande|Nederland|Germany|Deutschland|France|Frankreich|Spain|Espa[ñn]a|Italy|Italia|Poland|Polen|Austria|[ÖO]sterreich|Switzerland|Schweiz|United Kingdom|UK|England|USA|United States|Canada|Japan|China|Turkey|T[üu]rkei|UAE|Dubai|Nigeria|Ghana|Kenya|Tanzania|South Africa|Morocco|Senegal|Togo|Benin|Cameroon|Australia|New Zealand)\b`)

// extractContactText pulls contact fields out of free text.
func extractContactText(d *Domain, catalog *patterns.Catalog, text string, origin Origin) {
	// Emails: non-generic addresses first, generic ones demoted.
	emails := catalog.FindAll("contact.email", text, 10)
	var generic string
	for _, raw := range emails {
		email := NormalizeEmail(raw)
		if email == "" {
			continue
		}
		if IsGenericMailbox(email) {
			if generic == "" {
				generic = email
			}
			continue
		}
		d.Set("email", email, origin)
		break
	}
	if generic != "" {
		d.SetWithConfidence("email", generic, origin, origin.Confidence()*genericMailboxPenalty)
	}

	if phone := NormalizePhone(catalog.Find("contact.phone_intl", text)); phone != "" {
		d.Set("phone", phone, origin)
	}

	// Party names: the label tells us the client type as well.
	if name := strings.TrimSpace(catalog.Find("contact.shipper_name", text)); name != "" {
		d.Set("name", name, origin)
		d.Set("company", name, origin)
		d.Set("client_type", "shipper", origin)
	}
	if name := strings.TrimSpace(catalog.Find("contact.consignee_name", text)); name != "" {
		if d.Get("name") == nil {
			d.Set("name", name, origin)
			d.Set("client_type", "consignee", origin)
		}
		d.Set("company", name, origin)
	}
	if company := strings.TrimSpace(catalog.Find("contact.company", text)); company != "" {
		d.Set("company", company, origin)
		d.Set("name", company, origin)
	}
	if person := catalog.Find("contact.person_after_label", text); person != "" {
		d.Set("person", NormalizeName(person), origin)
	}

	extractAddress(d, catalog, text, origin)
}

// extractAddress assembles street, city and country into one address line.
func extractAddress(d *Domain, catalog *patterns.Catalog, text string, origin Origin) {
	street := catalog.Find("contact.street_eu", text)
	if street == "" {
		street = catalog.Find("contact.street_us", text)
	}

	var city, country string
	if m := countryRe.FindStringSubmatch(text); m != nil {
		city = m[1]
		country = m[2]
	}
	if pc := catalog.Find("contact.postal_city", text); pc != "" && city == "" {
		city = pc
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{strings.TrimSpace(street), strings.TrimSpace(city), strings.TrimSpace(country)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		d.Set("address", strings.Join(parts, ", "), origin)
	}
	if city != "" {
		d.Set("city", strings.TrimSpace(city), origin)
	}
	if country != "" {
		d.Set("country", strings.TrimSpace(country), origin)
	}
}

// extractContactMetadata maps protocol headers onto contact fields.
func extractContactMetadata(d *Domain, meta map[string]string) {
	from := meta["From"]
	if from == "" {
		from = meta["from"]
	}
	if from != "" {
		name, email := splitAddressHeader(from)
		if email != "" {
			conf := OriginMetadata.Confidence()
			if IsGenericMailbox(email) {
				conf *= genericMailboxPenalty
			}
			d.SetWithConfidence("email", email, OriginMetadata, conf)
		}
		if name != "" {
			d.Set("name", NormalizeName(name), OriginMetadata)
		}
	}
	if replyTo := meta["Reply-To"]; replyTo != "" {
		if _, email := splitAddressHeader(replyTo); email != "" && !IsGenericMailbox(email) {
			d.Set("email", email, OriginMetadata)
		}
	}
}

// splitAddressHeader parses `Display Name <addr@host>` loosely.
func splitAddressHeader(s string) (name, email string) {
	s = strings.TrimSpace(s)
	if lt := strings.Index(s, "<"); lt >= 0 {
		if gt := strings.Index(s[lt:], ">"); gt > 0 {
			email = NormalizeEmail(s[lt+1 : lt+gt])
			name = strings.Trim(strings.TrimSpace(s[:lt]), `"'`)
			return name, email
		}
	}
	return "", NormalizeEmail(s)
}

// ContactComplete reports whether the contact domain identifies somebody we
// could actually reach. A demoted generic mailbox alone does not qualify.
func ContactComplete(d Domain) bool {
	email := d.GetString("email")
	hasRealEmail := email != "" && !IsGenericMailbox(email)
	hasPhone := d.GetString("phone") != ""
	hasName := d.GetString("name") != "" || d.GetString("company") != ""
	return hasName && (hasRealEmail || hasPhone)
}
