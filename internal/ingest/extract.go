package ingest

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/joelkehle/sanctionguard/internal/sanctions"
)

// fieldText returns the trimmed text of parent's first child named tag, or def
// when the parent, the child or its text is missing.
func fieldText(parent *etree.Element, tag, def string) string {
	if parent == nil {
		return def
	}
	el := parent.SelectElement(tag)
	if el == nil {
		return def
	}
	text := strings.TrimSpace(el.Text())
	if text == "" {
		return def
	}
	return text
}

// extractEntity converts one sdnEntry element. Addresses whose country falls
// in a high-risk jurisdiction get a risk warning appended to the entity
// remarks, once per matching address.
func extractEntity(entry *etree.Element, risk map[string]sanctions.RiskCountry) sanctions.Entity {
	e := sanctions.Entity{
		Source:    sanctions.SourceOFAC,
		ID:        fieldText(entry, "uid", sanctions.DefaultID),
		Name:      entityName(entry),
		Type:      fieldText(entry, "sdnType", sanctions.DefaultType),
		Programs:  []string{},
		Addresses: []string{},
		Remarks:   fieldText(entry, "remarks", ""),
	}

	if list := entry.SelectElement("programList"); list != nil {
		for _, p := range list.SelectElements("program") {
			if text := strings.TrimSpace(p.Text()); text != "" {
				e.Programs = append(e.Programs, text)
			}
		}
	}

	if list := entry.SelectElement("addressList"); list != nil {
		for _, addr := range list.SelectElements("address") {
			city := fieldText(addr, "city", "")
			country := fieldText(addr, "country", sanctions.DefaultCountry)
			e.Addresses = append(e.Addresses, formatAddress(city, country))
			for _, def := range sanctions.MatchRiskCountries(country, risk) {
				e.Remarks += sanctions.RiskWarning(def)
			}
		}
	}
	return e
}

// entityName is "last, first" when both parts exist, else whichever exists.
func entityName(entry *etree.Element) string {
	last := fieldText(entry, "lastName", "")
	first := fieldText(entry, "firstName", "")
	switch {
	case last != "" && first != "":
		return strings.Trim(last+", "+first, ", ")
	case last != "":
		return last
	case first != "":
		return first
	default:
		return sanctions.DefaultName
	}
}

func formatAddress(city, country string) string {
	return strings.Trim(city+", "+country, ", ")
}
