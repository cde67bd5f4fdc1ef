package extract

import (
	"regexp"
	"strings"
)

var (
	copyrightPattern = regexp.MustCompile(`(?i)(?:©|\(c\)|\bcopyright\b)[^\n]*`)
	urlPattern       = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	contactLabel     = regexp.MustCompile(`(?i)\b(?:phone|telephone|tel|fax|mobile|e-mail|email)\s*[:.]`)
	noisePhrases     = regexp.MustCompile(`(?i)\b(?:call us|email us|contact us|all rights reserved|follow us|get directions|privacy policy|terms of use|terms of service|visit us|our address|our office|office address|mailing address|head office|headquarters|find us|located at|address)\b\s*:?`)
	separatorPattern = regexp.MustCompile(`\s*(?:[|•·;\n\r]|\s-\s)\s*`)
	repeatedCommas   = regexp.MustCompile(`\s*,(?:\s*,)*\s*`)
	spaceRunPattern  = regexp.MustCompile(`[ \t]+`)
)

// cleanAddressText strips contact details and boilerplate from a candidate block and
// turns its separators into commas.
func cleanAddressText(text string) string {
	text = copyrightPattern.ReplaceAllString(text, "")
	text = urlPattern.ReplaceAllString(text, " ")
	text = emailPattern.ReplaceAllString(text, " ")
	text = contactLabel.ReplaceAllString(text, " ")
	text = phonePattern.ReplaceAllStringFunc(text, func(match string) string {
		if _, ok := cleanPhone(match); !ok {
			return match
		}
		// A postal code run together with the number stays in the address.
		if zip, _, ok := splitLeading(leadingZip, strings.Join(strings.Fields(match), " ")); ok {
			return " " + zip + " "
		}
		return " "
	})
	text = noisePhrases.ReplaceAllString(text, " ")
	text = spaceRunPattern.ReplaceAllString(text, " ")
	text = separatorPattern.ReplaceAllString(text, ", ")
	text = repeatedCommas.ReplaceAllString(text, ", ")
	return strings.Trim(text, " ,.")
}
