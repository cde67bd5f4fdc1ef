package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyaruka/phonenumbers"
)

const (
	minPhoneDigits     = 7
	maxPhoneDigits     = 15
	defaultPhoneRegion = "US"
)

var (
	// Over-matches; the digit-count and year filters below narrow the matches.
	phonePattern     = regexp.MustCompile(`(?:\+\d{1,3}[ .\-]?)?(?:\(\d{1,4}\)[ .\-]?)?\d{2,4}(?:[ .\-]?\d{2,4}){1,4}`)
	yearPattern      = regexp.MustCompile(`^(?:19|20)\d{2}$`)
	datePattern      = regexp.MustCompile(`^(?:\d{4}[-./]\d{1,2}[-./]\d{1,2}|\d{1,2}[-./]\d{1,2}[-./](?:19|20)\d{2})$`)
	zipOnlyPattern   = regexp.MustCompile(`^\d{5}(?:-\d{4})?$`)
	leadingYear      = regexp.MustCompile(`^(?:19|20)\d{2}[ .\-]+`)
	leadingZip       = regexp.MustCompile(`^\d{5}(?:-\d{4})?[ .\-]+`)
	digitGroup       = regexp.MustCompile(`\d+`)
	nonDigitPattern  = regexp.MustCompile(`\D`)
	phoneHrefSchemes = []string{"tel:", "callto:"}
)

// extractPhones collects tel: links first and then free-text matches.
func extractPhones(doc *Document, region string) []ScrapedContact {
	seen := make(map[string]struct{})
	var found []ScrapedContact

	add := func(raw, context string) {
		value, ok := cleanPhone(raw)
		if !ok {
			return
		}
		if _, dup := seen[value]; dup {
			return
		}
		seen[value] = struct{}{}
		found = append(found, ScrapedContact{
			Kind:       KindPhone,
			Value:      value,
			E164:       AnnotateE164(value, region),
			SourcePage: doc.PageURL,
			Context:    truncateRunes(context, maxContextLen),
		})
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		target, ok := phoneHrefTarget(href)
		if !ok {
			return
		}
		add(target, strings.Join(strings.Fields(VisibleText(s.Parent())), " "))
	})

	text := doc.Text()
	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		add(text[loc[0]:loc[1]], surroundingText(text, loc[0], loc[1]))
	}
	return found
}

func phoneHrefTarget(href string) (string, bool) {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	for _, scheme := range phoneHrefSchemes {
		if !strings.HasPrefix(lower, scheme) {
			continue
		}
		target := href[len(scheme):]
		if idx := strings.IndexAny(target, "?;"); idx >= 0 {
			target = target[:idx]
		}
		if unescaped, err := url.PathUnescape(target); err == nil {
			target = unescaped
		}
		return target, strings.TrimSpace(target) != ""
	}
	return "", false
}

// cleanPhone whitespace-normalizes a candidate and applies the digit-count, date and year filters.
func cleanPhone(raw string) (string, bool) {
	value := strings.Join(strings.Fields(raw), " ")
	if value == "" || datePattern.MatchString(value) || zipOnlyPattern.MatchString(value) {
		return "", false
	}

	// "2023 555-123-4567" from a copyright line followed by a number.
	if _, rest, ok := splitLeading(leadingYear, value); ok {
		value = rest
	}
	// "62704 217-555-1234" from a postal code followed by a number.
	if _, rest, ok := splitLeading(leadingZip, value); ok {
		value = rest
	}

	digits := nonDigitPattern.ReplaceAllString(value, "")
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", false
	}
	if yearPattern.MatchString(digits) || allYears(value) {
		return "", false
	}
	return value, true
}

// splitLeading cuts a prefix matched by pattern when enough digits for a phone number follow it.
func splitLeading(pattern *regexp.Regexp, value string) (prefix, rest string, ok bool) {
	loc := pattern.FindStringIndex(value)
	if loc == nil {
		return "", value, false
	}
	rest = value[loc[1]:]
	if len(nonDigitPattern.ReplaceAllString(rest, "")) < minPhoneDigits {
		return "", value, false
	}
	return strings.TrimRight(value[:loc[1]], " .-"), rest, true
}

func allYears(value string) bool {
	groups := digitGroup.FindAllString(value, -1)
	if len(groups) < 2 {
		return false
	}
	for _, group := range groups {
		if !yearPattern.MatchString(group) {
			return false
		}
	}
	return true
}

// AnnotateE164 returns the E.164 form of value when it is a valid number for region,
// or an empty string.
func AnnotateE164(value, region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(value, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
