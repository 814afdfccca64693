package sanctions

import (
	"fmt"
	"sort"
	"strings"
)

var highRiskCountries = map[string]RiskCountry{
	"IR": {Name: "Iran", RiskLevel: RiskCritical, Reason: "FATF Blacklist / Broad US Sanctions"},
	"KP": {Name: "North Korea", RiskLevel: RiskCritical, Reason: "FATF Blacklist / Proliferation"},
	"RU": {Name: "Russia", RiskLevel: RiskHigh, Reason: "EU/US Sectoral Sanctions"},
	"VE": {Name: "Venezuela", RiskLevel: RiskHigh, Reason: "Political / Human Rights Sanctions"},
	"MM": {Name: "Myanmar", RiskLevel: RiskHigh, Reason: "FATF Blacklist"},
	"SY": {Name: "Syria", RiskLevel: RiskCritical, Reason: "State Sponsor of Terrorism"},
	"CU": {Name: "Cuba", RiskLevel: RiskHigh, Reason: "US Embargo"},
	"BY": {Name: "Belarus", RiskLevel: RiskHigh, Reason: "Aggression against Ukraine"},
}

// riskOrder is the table order; warnings accumulate in this order.
var riskOrder = []string{"IR", "KP", "RU", "VE", "MM", "SY", "CU", "BY"}

// HighRiskCountries returns a copy of the static country risk table keyed by
// ISO code.
func HighRiskCountries() map[string]RiskCountry {
	out := make(map[string]RiskCountry, len(highRiskCountries))
	for code, def := range highRiskCountries {
		out[code] = def
	}
	return out
}

// MatchRiskCountries returns the definitions whose display name occurs inside
// country, case-insensitively. Known codes are visited in table order; any
// other codes in defs follow in sorted order.
//
// This is a plain substring test: a risk name contained in an unrelated longer
// country string also matches. Known precision limitation, kept as-is.
func MatchRiskCountries(country string, defs map[string]RiskCountry) []RiskCountry {
	lowered := strings.ToLower(country)
	var hits []RiskCountry
	for _, code := range riskCodes(defs) {
		def := defs[code]
		if strings.Contains(lowered, strings.ToLower(def.Name)) {
			hits = append(hits, def)
		}
	}
	return hits
}

func riskCodes(defs map[string]RiskCountry) []string {
	codes := make([]string, 0, len(defs))
	for _, code := range riskOrder {
		if _, ok := defs[code]; ok {
			codes = append(codes, code)
		}
	}
	var extra []string
	for code := range defs {
		if _, ok := highRiskCountries[code]; !ok {
			extra = append(extra, code)
		}
	}
	sort.Strings(extra)
	return append(codes, extra...)
}

func RiskWarning(def RiskCountry) string {
	return fmt.Sprintf(" [RISK WARNING: Location match %s]", def.Name)
}
