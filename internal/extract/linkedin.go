package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var linkedInCompanyPattern = regexp.MustCompile(`(?i)(?:https?://)?((?:[a-z0-9-]+\.)?linkedin\.com)/company/([^\s"'<>?#/\\&]+)`)

// extractLinkedIn returns the first LinkedIn company page linked from the document,
// preferring anchors over any other mention in the raw markup.
func extractLinkedIn(doc *Document) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		found = canonicalLinkedIn(href)
		return found == ""
	})
	if found != "" {
		return found
	}
	return canonicalLinkedIn(doc.Raw)
}

func canonicalLinkedIn(text string) string {
	m := linkedInCompanyPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	slug := strings.TrimRight(m[2], "/.")
	if slug == "" {
		return ""
	}
	return "https://" + strings.ToLower(m[1]) + "/company/" + slug
}
