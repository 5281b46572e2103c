// Package flags holds the static lookup tables that decorate race pages:
// Grand Prix names and host countries mapped to flag codes, plus flag CDN
// URL construction.
package flags

import (
	"fmt"
	"strings"
)

// countryToCode maps a race's host country name to its ISO 3166-1 alpha-2
// code. Extend as the calendar grows.
var countryToCode = map[string]string{
	"Belgium":              "BE",
	"Italy":                "IT",
	"United Kingdom":       "GB",
	"UK":                   "GB",
	"Great Britain":        "GB",
	"France":               "FR",
	"Germany":              "DE",
	"Spain":                "ES",
	"Monaco":               "MC",
	"Australia":            "AU",
	"Canada":               "CA",
	"Austria":              "AT",
	"Hungary":              "HU",
	"Netherlands":          "NL",
	"Singapore":            "SG",
	"Japan":                "JP",
	"USA":                  "US",
	"United States":        "US",
	"Mexico":               "MX",
	"Brazil":               "BR",
	"Qatar":                "QA",
	"Saudi Arabia":         "SA",
	"Bahrain":              "BH",
	"Azerbaijan":           "AZ",
	"China":                "CN",
	"Russia":               "RU",
	"Turkey":               "TR",
	"Portugal":             "PT",
	"United Arab Emirates": "AE",
	"UAE":                  "AE",
	"South Africa":         "ZA",
	"Argentina":            "AR",
}

// raceToCode maps a Grand Prix name (lowercased) to a flag code. Both the
// full "grand prix" form and the short "gp" form appear in backend data.
var raceToCode = map[string]string{
	"spanish grand prix":        "es",
	"british grand prix":        "gb",
	"monaco grand prix":         "mc",
	"belgian grand prix":        "be",
	"italian grand prix":        "it",
	"french grand prix":         "fr",
	"german grand prix":         "de",
	"austrian grand prix":       "at",
	"hungarian grand prix":      "hu",
	"singapore grand prix":      "sg",
	"japanese grand prix":       "jp",
	"united states grand prix":  "us",
	"canadian grand prix":       "ca",
	"brazilian grand prix":      "br",
	"qatar grand prix":          "qa",
	"saudi arabian grand prix":  "sa",
	"bahrain grand prix":        "bh",
	"abu dhabi grand prix":      "ae",
	"mexican grand prix":        "mx",
	"turkish grand prix":        "tr",
	"dutch grand prix":          "nl",
	"russian grand prix":        "ru",
	"chinese grand prix":        "cn",
	"australian grand prix":     "au",
	"portuguese grand prix":     "pt",
	"emilia romagna grand prix": "it",
	"miami grand prix":          "us",
	"las vegas grand prix":      "us",
	"azerbaijan grand prix":     "az",
}

func init() {
	// The short "gp" form mirrors every long-form entry.
	short := make(map[string]string, len(raceToCode))
	for name, code := range raceToCode {
		if prefix, ok := strings.CutSuffix(name, " grand prix"); ok {
			short[prefix+" gp"] = code
		}
	}
	for name, code := range short {
		raceToCode[name] = code
	}
}

// CountryCode resolves a host country name to its ISO code.
func CountryCode(country string) (string, bool) {
	code, ok := countryToCode[strings.TrimSpace(country)]
	return code, ok
}

// RaceFlagCode resolves a Grand Prix name to a flag code, case-insensitively.
func RaceFlagCode(raceName string) (string, bool) {
	code, ok := raceToCode[strings.ToLower(strings.TrimSpace(raceName))]
	return code, ok
}

// URL builds a flag image URL for the given code at the given pixel width.
func URL(code string, width int) string {
	return fmt.Sprintf("https://flagcdn.com/w%d/%s.png", width, strings.ToLower(code))
}
