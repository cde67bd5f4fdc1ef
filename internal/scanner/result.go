package scanner

import (
	"strings"

	"github.com/octobees/leads-generator/sitescan/internal/extract"
)

// ExistingFlags say which contact fields the organization record already holds.
// They only annotate the result.
type ExistingFlags struct {
	HasEmail    bool
	HasPhone    bool
	HasLinkedIn bool
	HasAddress  bool
}

// PageFailure records a page that could not be fetched.
type PageFailure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// ScanResult is the ranked, deduplicated outcome of one scan.
type ScanResult struct {
	Website        string                   `json:"website"`
	RootDomain     string                   `json:"root_domain"`
	Emails         []extract.ScrapedContact `json:"emails"`
	Phones         []extract.ScrapedContact `json:"phones"`
	LinkedInURL    string                   `json:"linkedin_url,omitempty"`
	Address        *extract.ScrapedAddress  `json:"address,omitempty"`
	PagesScanned   []string                 `json:"pages_scanned"`
	PagesFailed    []PageFailure            `json:"pages_failed"`
	OrgHasEmail    bool                     `json:"org_has_email"`
	OrgHasPhone    bool                     `json:"org_has_phone"`
	OrgHasLinkedIn bool                     `json:"org_has_linkedin"`
	OrgHasAddress  bool                     `json:"org_has_address"`
}

// accumulator collects findings across the pages of one scan. It is owned by a
// single Scan call.
type accumulator struct {
	emailKeys map[string]struct{}
	phoneKeys map[string]struct{}
	emails    []extract.ScrapedContact
	phones    []extract.ScrapedContact
	linkedIn  string
	address   *extract.ScrapedAddress
	scanned   []string
	failed    []PageFailure
}

func newAccumulator() *accumulator {
	return &accumulator{
		emailKeys: make(map[string]struct{}),
		phoneKeys: make(map[string]struct{}),
		emails:    []extract.ScrapedContact{},
		phones:    []extract.ScrapedContact{},
		scanned:   []string{},
		failed:    []PageFailure{},
	}
}

func (a *accumulator) fail(url, reason string) {
	a.failed = append(a.failed, PageFailure{URL: url, Reason: reason})
}

func (a *accumulator) scan(url string) {
	a.scanned = append(a.scanned, url)
}

// merge folds one page into the run. First occurrence wins for contacts and the
// LinkedIn URL; an address only replaces the held one when it is strictly more complete.
func (a *accumulator) merge(f extract.PageFindings) {
	for _, c := range f.Emails {
		key := strings.ToLower(strings.TrimSpace(c.Value))
		if _, dup := a.emailKeys[key]; dup {
			continue
		}
		a.emailKeys[key] = struct{}{}
		a.emails = append(a.emails, c)
	}
	for _, c := range f.Phones {
		key := strings.Join(strings.Fields(c.Value), " ")
		if _, dup := a.phoneKeys[key]; dup {
			continue
		}
		a.phoneKeys[key] = struct{}{}
		a.phones = append(a.phones, c)
	}
	if a.linkedIn == "" && f.LinkedInURL != "" {
		a.linkedIn = f.LinkedInURL
	}
	if f.Address != nil && f.Address.Completeness() > a.address.Completeness() {
		a.address = f.Address
	}
}

func (a *accumulator) result(origin, rootDomain string, flags ExistingFlags) *ScanResult {
	extract.RankEmails(a.emails, rootDomain)
	return &ScanResult{
		Website:        origin,
		RootDomain:     rootDomain,
		Emails:         a.emails,
		Phones:         a.phones,
		LinkedInURL:    a.linkedIn,
		Address:        a.address,
		PagesScanned:   a.scanned,
		PagesFailed:    a.failed,
		OrgHasEmail:    flags.HasEmail,
		OrgHasPhone:    flags.HasPhone,
		OrgHasLinkedIn: flags.HasLinkedIn,
		OrgHasAddress:  flags.HasAddress,
	}
}
