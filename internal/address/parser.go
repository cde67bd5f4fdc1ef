package address

import (
	"strings"
)

const (
	minOpaqueLength = 10
	maxOpaqueLength = 200
)

// Fields is the structured breakdown of one postal address.
type Fields struct {
	Full       string
	Line1      string
	Line2      string
	City       string
	Region     string
	PostalCode string
	Country    string
}

// Usable reports whether the breakdown carries a street line, a city or a postal code.
func (f Fields) Usable() bool {
	return f.Line1 != "" || f.City != "" || f.PostalCode != ""
}

// Strategy turns free text into address fields. ok is false when the strategy found nothing usable.
type Strategy interface {
	Parse(text string) (Fields, bool)
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(text string) (Fields, bool)

func (f StrategyFunc) Parse(text string) (Fields, bool) {
	return f(text)
}

// Parser runs its strategies in order and falls back to an opaque full address.
type Parser struct {
	strategies []Strategy
}

// NewParser builds a parser over the given strategies. With none it uses the segment
// parser followed by the regex fallback.
func NewParser(strategies ...Strategy) *Parser {
	if len(strategies) == 0 {
		strategies = []Strategy{StrategyFunc(segmentParse), StrategyFunc(manualParse)}
	}
	return &Parser{strategies: strategies}
}

var defaultParser = NewParser()

// Parse breaks text into address fields using the default strategy chain.
func Parse(text string) (Fields, bool) {
	return defaultParser.Parse(text)
}

func (p *Parser) Parse(text string) (Fields, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Fields{}, false
	}

	for _, strategy := range p.strategies {
		fields, ok := strategy.Parse(text)
		if ok && fields.Usable() {
			return fields, true
		}
	}

	flat := collapseSpaces(text)
	if n := len([]rune(flat)); n >= minOpaqueLength && n <= maxOpaqueLength {
		return Fields{Full: flat}, true
	}
	return Fields{}, false
}

// segmentParse reads comma-separated segments, anchoring on the segment that carries
// the region and postal code and walking backwards for the city and street lines.
func segmentParse(text string) (Fields, bool) {
	segments := splitSegments(text)
	if len(segments) == 0 {
		return Fields{}, false
	}

	var fields Fields
	cityIdx, localityEnd := -1, -1

	for i, seg := range segments {
		if m := segmentCityStateZip.FindStringSubmatch(seg); m != nil && IsRegionCode(m[2]) {
			fields.City, fields.Region, fields.PostalCode = strings.TrimSpace(m[1]), m[2], m[3]
			cityIdx, localityEnd = i, i
			break
		}
		if m := segmentStateZip.FindStringSubmatch(seg); m != nil && IsRegionCode(m[1]) {
			fields.Region, fields.PostalCode = m[1], m[2]
			cityIdx, localityEnd = i-1, i
			break
		}
		if segmentState.MatchString(seg) && IsRegionCode(seg) && i+1 < len(segments) && segmentZip.MatchString(segments[i+1]) {
			fields.Region, fields.PostalCode = seg, segments[i+1]
			cityIdx, localityEnd = i-1, i+1
			break
		}
		upper := strings.ToUpper(seg)
		if m := segmentCAProvince.FindStringSubmatch(upper); m != nil {
			if _, ok := caProvinces[m[2]]; ok {
				fields.Region, fields.PostalCode = m[2], m[3]
				cityIdx, localityEnd = i-1, i
				if m[1] != "" {
					fields.City = seg[:len(m[1])]
					cityIdx = i
				}
				break
			}
		}
		if m := segmentUKPostcode.FindStringSubmatch(upper); m != nil {
			fields.PostalCode = m[2]
			cityIdx, localityEnd = i-1, i
			if m[1] != "" {
				fields.City = seg[:len(m[1])]
				cityIdx = i
			}
			break
		}
	}

	if localityEnd < 0 {
		return Fields{}, false
	}

	streetFrom := cityIdx
	if fields.City == "" && cityIdx >= 0 {
		fields.City = segments[cityIdx]
	}
	if cityIdx < 0 {
		streetFrom = 0
	}

	// A city segment that starts with the street ("123 Main St Springfield IL 62704").
	if loc := streetInlinePattern.FindStringIndex(fields.City); loc != nil && loc[0] == 0 {
		fields.Line1 = strings.TrimSpace(fields.City[:loc[1]])
		fields.City = strings.TrimSpace(strings.TrimLeft(fields.City[loc[1]:], ", "))
	}

	if fields.Line1 == "" {
		for j := streetFrom - 1; j >= 0 && j >= streetFrom-3; j-- {
			seg := segments[j]
			if unitPattern.MatchString(seg) {
				if fields.Line2 == "" {
					fields.Line2 = seg
				}
				continue
			}
			if streetNumberPattern.MatchString(seg) || poBoxPattern.MatchString(seg) || streetKeywordPattern.MatchString(seg) {
				fields.Line1 = seg
				break
			}
			if loc := streetInlinePattern.FindStringIndex(seg); loc != nil {
				fields.Line1 = strings.TrimSpace(seg[loc[0]:])
				break
			}
		}
	}

	if localityEnd+1 < len(segments) {
		fields.Country = FindCountry(segments[localityEnd+1])
	}

	fields.Full = joinFields(fields)
	return fields, fields.Usable()
}

// manualParse runs independent regexes for the postal code, the city and region, and a
// leading street number over the whole text.
func manualParse(text string) (Fields, bool) {
	flat := collapseSpaces(segmentSplitter.ReplaceAllString(text, ", "))
	var fields Fields

	for _, m := range stateZipPattern.FindAllStringSubmatch(flat, -1) {
		if IsRegionCode(m[1]) {
			fields.Region, fields.PostalCode = m[1], m[2]
			break
		}
	}
	if fields.PostalCode == "" {
		if zips := usZipPattern.FindAllString(flat, -1); len(zips) > 0 {
			fields.PostalCode = zips[len(zips)-1]
		} else if pc := ukPostcodePattern.FindString(strings.ToUpper(flat)); pc != "" {
			fields.PostalCode = pc
		} else if pc := caPostcodePattern.FindString(strings.ToUpper(flat)); pc != "" {
			fields.PostalCode = pc
		}
	}

	for _, m := range cityStatePattern.FindAllStringSubmatch(flat, -1) {
		if !IsRegionCode(m[2]) {
			continue
		}
		if fields.Region != "" && m[2] != fields.Region {
			continue
		}
		city := strings.TrimSpace(m[1])
		if locs := streetKeywordPattern.FindAllStringIndex(city, -1); len(locs) > 0 {
			// "Oak Avenue Springfield" keeps the words after the street type; "St Louis" stays whole.
			if last := locs[len(locs)-1]; last[0] > 0 {
				city = strings.Trim(city[last[1]:], " .")
			}
		}
		if city == "" {
			continue
		}
		fields.City, fields.Region = city, m[2]
		break
	}

	if street := streetInlinePattern.FindString(flat); street != "" {
		fields.Line1 = strings.TrimSpace(street)
	} else if street := poBoxPattern.FindString(flat); street != "" {
		fields.Line1 = strings.TrimSpace(street)
	}

	fields.Country = FindCountry(flat)
	if !fields.Usable() {
		return Fields{}, false
	}
	fields.Full = flat
	return fields, true
}

func splitSegments(text string) []string {
	parts := segmentSplitter.Split(text, -1)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		part = collapseSpaces(part)
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

func joinFields(f Fields) string {
	locality := strings.TrimSpace(f.Region + " " + f.PostalCode)
	parts := make([]string, 0, 5)
	for _, part := range []string{f.Line1, f.Line2, f.City, locality, f.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
