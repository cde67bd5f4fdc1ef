package extract

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/idna"
)

const (
	maxEmailLength = 100
	contextRadius  = 50
	maxContextLen  = 100
)

var (
	// Domain labels may carry Unicode letters; the TLD stays ASCII or punycode.
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[\p{L}\p{M}0-9.\-]+\.(?:[a-zA-Z]{2,}|xn--[a-zA-Z0-9\-]+)`)
	idnaProfile  = idna.Lookup
)

var blockedEmailSuffixes = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".bmp", ".ico", ".tif", ".tiff",
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".zip", ".css", ".js",
}

var nonHumanLocalParts = []string{
	"noreply", "no-reply", "no_reply", "donotreply", "do-not-reply", "do_not_reply",
	"postmaster", "webmaster", "mailer-daemon", "mailerdaemon", "bounce",
}

// extractEmails collects mailto links first and then free-text matches, dropping
// duplicates within the page.
func extractEmails(doc *Document) []ScrapedContact {
	seen := make(map[string]struct{})
	var found []ScrapedContact

	add := func(value, context string) {
		email := strings.ToLower(strings.TrimSpace(value))
		if !isValidEmail(email) {
			return
		}
		if _, dup := seen[email]; dup {
			return
		}
		seen[email] = struct{}{}
		found = append(found, ScrapedContact{
			Kind:       KindEmail,
			Value:      email,
			SourcePage: doc.PageURL,
			Context:    truncateRunes(context, maxContextLen),
		})
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if len(href) < len("mailto:") || !strings.EqualFold(href[:len("mailto:")], "mailto:") {
			return
		}
		context := strings.Join(strings.Fields(VisibleText(s.Parent())), " ")
		for _, addr := range mailtoAddresses(href[len("mailto:"):]) {
			add(addr, context)
		}
	})

	text := doc.Text()
	for _, loc := range emailPattern.FindAllStringIndex(text, -1) {
		add(text[loc[0]:loc[1]], surroundingText(text, loc[0], loc[1]))
	}
	return found
}

func mailtoAddresses(target string) []string {
	if idx := strings.IndexByte(target, '?'); idx >= 0 {
		target = target[:idx]
	}
	if unescaped, err := url.PathUnescape(target); err == nil {
		target = unescaped
	}
	var out []string
	for _, part := range strings.Split(target, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isValidEmail(email string) bool {
	if email == "" || len(email) > maxEmailLength {
		return false
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return false
	}
	if !emailPattern.MatchString(email) || emailPattern.FindString(email) != email {
		return false
	}
	for _, suffix := range blockedEmailSuffixes {
		if strings.HasSuffix(email, suffix) {
			return false
		}
	}
	local, domain, _ := strings.Cut(email, "@")
	for _, marker := range nonHumanLocalParts {
		if strings.Contains(local, marker) {
			return false
		}
	}
	if !isDomainValid(domain) {
		return false
	}
	ascii, err := idnaProfile.ToASCII(domain)
	return err == nil && ascii != ""
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

// RankEmails moves emails on rootDomain (or any of its subdomains) ahead of the rest,
// keeping first-seen order within each group.
func RankEmails(emails []ScrapedContact, rootDomain string) {
	rootDomain = strings.ToLower(strings.TrimSpace(rootDomain))
	if rootDomain == "" {
		return
	}
	sort.SliceStable(emails, func(i, j int) bool {
		return onDomain(emails[i].Value, rootDomain) && !onDomain(emails[j].Value, rootDomain)
	})
}

func onDomain(email, rootDomain string) bool {
	_, domain, ok := strings.Cut(strings.ToLower(email), "@")
	if !ok {
		return false
	}
	return domain == rootDomain || strings.HasSuffix(domain, "."+rootDomain)
}

// surroundingText returns up to maxContextLen runes of text centred on [start, end).
func surroundingText(text string, start, end int) string {
	runes := []rune(text)
	runeStart := len([]rune(text[:start]))
	runeEnd := runeStart + len([]rune(text[start:end]))

	from := max(runeStart-contextRadius, 0)
	to := min(runeEnd+contextRadius, len(runes))
	if to-from > maxContextLen {
		to = from + maxContextLen
	}
	return strings.Join(strings.Fields(string(runes[from:to])), " ")
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit]))
}
