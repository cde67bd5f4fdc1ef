package address

import (
	"regexp"
	"strings"
)

var (
	usZipPattern        = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	ukPostcodePattern   = regexp.MustCompile(`\b[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}\b`)
	caPostcodePattern   = regexp.MustCompile(`\b[A-Z]\d[A-Z]\s?\d[A-Z]\d\b`)
	stateZipPattern     = regexp.MustCompile(`\b([A-Z]{2})\.?\s+(\d{5}(?:-\d{4})?)\b`)
	cityStatePattern    = regexp.MustCompile(`([A-Z][A-Za-z.'\- ]{1,40}?),?\s+([A-Z]{2})\b`)
	streetInlinePattern = regexp.MustCompile(`(?i)\b\d+[a-z]?(?:-\d+)?\s+(?:[a-z0-9.'\-]+\s+){0,5}?` + streetTypes + `\b\.?`)

	segmentCityStateZip = regexp.MustCompile(`^(.+?)\s+([A-Z]{2})\.?\s+(\d{5}(?:-\d{4})?)$`)
	segmentStateZip     = regexp.MustCompile(`^([A-Z]{2})\.?\s+(\d{5}(?:-\d{4})?)$`)
	segmentZip          = regexp.MustCompile(`^\d{5}(?:-\d{4})?$`)
	segmentState        = regexp.MustCompile(`^[A-Z]{2}$`)
	segmentCAProvince   = regexp.MustCompile(`^(?:(.+?)\s+)?([A-Z]{2})\s+([A-Z]\d[A-Z]\s?\d[A-Z]\d)$`)
	segmentUKPostcode   = regexp.MustCompile(`^(?:(.+?)\s+)?([A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2})$`)

	streetKeywordPattern = regexp.MustCompile(`(?i)\b` + streetTypes + `\b`)
	streetNumberPattern  = regexp.MustCompile(`^\d+[A-Za-z]?(?:-\d+)?\s+[A-Za-z]`)
	unitPattern          = regexp.MustCompile(`(?i)^(?:suite|ste|unit|apt|apartment|floor|fl|building|bldg|room|rm|level)\b\.?\s*[a-z0-9\-]+$|^#\s*[a-z0-9\-]+$|^\d+(?:st|nd|rd|th)\s+floor$`)
	poBoxPattern         = regexp.MustCompile(`(?i)^p\.?\s?o\.?\s+box\s+\d+`)
	segmentSplitter      = regexp.MustCompile(`\s*[,;|\n\r]+\s*`)
)

const streetTypes = `(?:street|st|avenue|ave|road|rd|boulevard|blvd|drive|dr|lane|ln|way|court|ct|place|pl|parkway|pkwy|highway|hwy|square|sq|terrace|ter|circle|cir|plaza|plz|trail|trl|broadway|route|rte|pike|row|alley|crescent|close)`

var usStates = map[string]string{
	"AL": "alabama", "AK": "alaska", "AZ": "arizona", "AR": "arkansas",
	"CA": "california", "CO": "colorado", "CT": "connecticut", "DE": "delaware",
	"FL": "florida", "GA": "georgia", "HI": "hawaii", "ID": "idaho",
	"IL": "illinois", "IN": "indiana", "IA": "iowa", "KS": "kansas",
	"KY": "kentucky", "LA": "louisiana", "ME": "maine", "MD": "maryland",
	"MA": "massachusetts", "MI": "michigan", "MN": "minnesota", "MS": "mississippi",
	"MO": "missouri", "MT": "montana", "NE": "nebraska", "NV": "nevada",
	"NH": "new hampshire", "NJ": "new jersey", "NM": "new mexico", "NY": "new york",
	"NC": "north carolina", "ND": "north dakota", "OH": "ohio", "OK": "oklahoma",
	"OR": "oregon", "PA": "pennsylvania", "RI": "rhode island", "SC": "south carolina",
	"SD": "south dakota", "TN": "tennessee", "TX": "texas", "UT": "utah",
	"VT": "vermont", "VA": "virginia", "WA": "washington", "WV": "west virginia",
	"WI": "wisconsin", "WY": "wyoming", "DC": "district of columbia", "PR": "puerto rico",
}

var caProvinces = map[string]struct{}{
	"AB": {}, "BC": {}, "MB": {}, "NB": {}, "NL": {}, "NS": {}, "NT": {},
	"NU": {}, "ON": {}, "PE": {}, "QC": {}, "SK": {}, "YT": {},
}

// countryNames maps lowercase spellings to the display name kept on the address.
var countryNames = map[string]string{
	"united states":            "United States",
	"united states of america": "United States",
	"usa":                      "United States",
	"u.s.a.":                   "United States",
	"united kingdom":           "United Kingdom",
	"uk":                       "United Kingdom",
	"great britain":            "United Kingdom",
	"england":                  "United Kingdom",
	"scotland":                 "United Kingdom",
	"canada":                   "Canada",
	"australia":                "Australia",
	"new zealand":              "New Zealand",
	"ireland":                  "Ireland",
	"germany":                  "Germany",
	"france":                   "France",
	"spain":                    "Spain",
	"italy":                    "Italy",
	"netherlands":              "Netherlands",
	"belgium":                  "Belgium",
	"switzerland":              "Switzerland",
	"sweden":                   "Sweden",
	"india":                    "India",
	"singapore":                "Singapore",
	"mexico":                   "Mexico",
	"indonesia":                "Indonesia",
}

// IsRegionCode reports whether code is a US state or Canadian province abbreviation.
func IsRegionCode(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok := usStates[code]; ok {
		return true
	}
	_, ok := caProvinces[code]
	return ok
}

// HasPostalCode reports whether text carries a US ZIP, UK postcode or Canadian postcode.
func HasPostalCode(text string) bool {
	upper := strings.ToUpper(text)
	return usZipPattern.MatchString(text) || ukPostcodePattern.MatchString(upper) || caPostcodePattern.MatchString(upper)
}

// HasStreetKeyword reports whether text mentions a street type such as "Street" or "Ave".
func HasStreetKeyword(text string) bool {
	return streetKeywordPattern.MatchString(text)
}

// HasStreetNumber reports whether text contains a "number + street" run like "123 Main St".
func HasStreetNumber(text string) bool {
	return streetInlinePattern.MatchString(text)
}

// HasCityStateZip reports whether text contains "City, ST 12345" with a known region code.
func HasCityStateZip(text string) bool {
	for _, m := range stateZipPattern.FindAllStringSubmatch(text, -1) {
		if IsRegionCode(m[1]) {
			return true
		}
	}
	return false
}

// FindCountry returns the display name of the first country mentioned in text.
func FindCountry(text string) string {
	lower := " " + strings.ToLower(text) + " "
	best, bestIdx := "", -1
	for name, display := range countryNames {
		idx := indexWord(lower, name)
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx || (idx == bestIdx && len(display) > len(best)) {
			best, bestIdx = display, idx
		}
	}
	return best
}

// indexWord finds needle in text bounded by non-alphanumeric characters.
func indexWord(text, needle string) int {
	start := 0
	for {
		idx := strings.Index(text[start:], needle)
		if idx < 0 {
			return -1
		}
		abs := start + idx
		end := abs + len(needle)
		leftOK := abs == 0 || !isAlphaNum(text[abs-1])
		rightOK := end == len(text) || !isAlphaNum(text[end])
		if leftOK && rightOK {
			return abs
		}
		start = abs + 1
	}
}

func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
