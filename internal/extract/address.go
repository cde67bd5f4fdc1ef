package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/octobees/leads-generator/sitescan/internal/address"
)

const (
	minCandidateLength = 10
	maxCandidateLength = 1000
	maxJSONLDDepth     = 8
)

// ldNestedKeys are followed when looking for a PostalAddress inside a JSON-LD node.
var ldNestedKeys = []string{"address", "location", "@graph", "mainEntity", "department", "subOrganization", "parentOrganization"}

var addressKeywords = []string{
	"headquarters", "office address", "visit us", "our address", "our office",
	"mailing address", "head office", "find us", "located at", "address:",
}

type candidateSource struct {
	selector string
	tagged   bool
}

var candidateSources = []candidateSource{
	{selector: "footer", tagged: true},
	{selector: "address", tagged: true},
	{selector: `[class*="address"], [id*="address"], [class*="Address"], [id*="Address"]`, tagged: true},
	{selector: `[itemtype*="PostalAddress"]`, tagged: true},
	{selector: `[class*="contact"], [id*="contact"], [class*="Contact"], [id*="Contact"]`},
	{selector: `[class*="location"], [id*="location"], [class*="office"], [id*="office"]`},
}

// extractAddress tries structured data first and falls back to scoring text regions.
func extractAddress(doc *Document) *ScrapedAddress {
	if addr := structuredAddress(doc); addr != nil {
		return addr
	}
	return heuristicAddress(doc)
}

func structuredAddress(doc *Document) *ScrapedAddress {
	for _, block := range doc.JSONLD {
		var payload any
		if err := json.Unmarshal([]byte(block), &payload); err != nil {
			continue
		}
		if addr := findPostalAddress(payload, 0); addr != nil {
			addr.SourcePage = doc.PageURL
			return addr
		}
	}
	return microdataAddress(doc)
}

func findPostalAddress(node any, depth int) *ScrapedAddress {
	if depth > maxJSONLDDepth {
		return nil
	}
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			if addr := findPostalAddress(item, depth+1); addr != nil {
				return addr
			}
		}
	case map[string]any:
		if hasLDType(v, "PostalAddress") {
			return addressFromLD(v)
		}
		for _, key := range ldNestedKeys {
			child, ok := v[key]
			if !ok {
				continue
			}
			if text, isText := child.(string); isText && key == "address" {
				if addr := addressFromText(text); addr != nil {
					return addr
				}
				continue
			}
			if addr := findPostalAddress(child, depth+1); addr != nil {
				return addr
			}
		}
	}
	return nil
}

func hasLDType(node map[string]any, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.EqualFold(t, want)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}

func addressFromLD(node map[string]any) *ScrapedAddress {
	addr := &ScrapedAddress{
		AddressLine1: ldString(node["streetAddress"]),
		City:         ldString(node["addressLocality"]),
		Region:       ldString(node["addressRegion"]),
		PostalCode:   ldString(node["postalCode"]),
		Country:      ldString(node["addressCountry"]),
	}
	if po := ldString(node["postOfficeBoxNumber"]); po != "" && addr.AddressLine1 == "" {
		addr.AddressLine1 = "PO Box " + po
	}
	addr.FullAddress = joinAddress(addr)
	if addr.FullAddress == "" {
		return nil
	}
	return addr
}

func ldString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.Join(strings.Fields(t), " ")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		return ldString(t["name"])
	case []any:
		if len(t) > 0 {
			return ldString(t[0])
		}
	}
	return ""
}

var microdataProps = []string{"streetAddress", "addressLocality", "addressRegion", "postalCode", "addressCountry"}

func microdataAddress(doc *Document) *ScrapedAddress {
	scope := doc.Find(`[itemtype*="PostalAddress"]`).First()
	if scope.Length() == 0 {
		scope = doc.Find("html")
	}

	values := make(map[string]string, len(microdataProps))
	for _, prop := range microdataProps {
		el := scope.Find(`[itemprop="` + prop + `"]`).First()
		if el.Length() == 0 {
			continue
		}
		value, ok := el.Attr("content")
		if !ok {
			value = VisibleText(el)
		}
		values[prop] = strings.Join(strings.Fields(value), " ")
	}
	if values["streetAddress"] == "" && values["addressLocality"] == "" && values["postalCode"] == "" {
		return nil
	}

	addr := &ScrapedAddress{
		AddressLine1: values["streetAddress"],
		City:         values["addressLocality"],
		Region:       values["addressRegion"],
		PostalCode:   values["postalCode"],
		Country:      values["addressCountry"],
		SourcePage:   doc.PageURL,
	}
	addr.FullAddress = joinAddress(addr)
	return addr
}

func heuristicAddress(doc *Document) *ScrapedAddress {
	best, _, ok := bestCandidate(collectCandidates(doc))
	if !ok {
		return nil
	}
	addr := addressFromText(best.Text)
	if addr != nil {
		addr.SourcePage = doc.PageURL
	}
	return addr
}

// collectCandidates gathers text blocks in source order, dropping repeats and
// blocks outside the plausible length range.
func collectCandidates(doc *Document) []addressCandidate {
	seen := make(map[string]struct{})
	var candidates []addressCandidate

	add := func(sel *goquery.Selection, tagged bool) {
		text := VisibleText(sel)
		if n := len([]rune(text)); n < minCandidateLength || n > maxCandidateLength {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		candidates = append(candidates, addressCandidate{Text: text, Tagged: tagged})
	}

	for _, source := range candidateSources {
		doc.Find(source.selector).Each(func(_ int, s *goquery.Selection) {
			add(s, source.tagged)
		})
	}

	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		own := strings.ToLower(ownText(s))
		if own == "" {
			return
		}
		for _, keyword := range addressKeywords {
			if strings.Contains(own, keyword) {
				add(s.Parent(), false)
				return
			}
		}
	})
	return candidates
}

func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
				b.WriteByte(' ')
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// addressFromText cleans a free-text block and breaks it into fields.
func addressFromText(text string) *ScrapedAddress {
	cleaned := cleanAddressText(text)
	fields, ok := address.Parse(cleaned)
	if !ok {
		return nil
	}
	return &ScrapedAddress{
		FullAddress:  fields.Full,
		AddressLine1: fields.Line1,
		AddressLine2: fields.Line2,
		City:         fields.City,
		Region:       fields.Region,
		PostalCode:   fields.PostalCode,
		Country:      fields.Country,
	}
}

func joinAddress(a *ScrapedAddress) string {
	locality := strings.TrimSpace(a.Region + " " + a.PostalCode)
	parts := make([]string, 0, 5)
	for _, part := range []string{a.AddressLine1, a.AddressLine2, a.City, locality, a.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}
